// Package ast models the opaque, already-parsed input tree the compiler's
// front end consumes: a Python-3-like grammar subset with source positions.
// The upstream parser that produces this tree is an external collaborator;
// this package exists only so the front end has a concrete type to elaborate
// and so tests can build fixtures without a real parser.
package ast

import "text/scanner"

// Node is implemented by every AST node.
type Node interface {
	Pos() scanner.Position
	String() string
}

// Source bundles the filename and raw source lines of a parsed unit, needed
// to render diagnostics.
type Source struct {
	Filename string
	Lines    []string
}

// ---- Expressions ----

// Name is a bare identifier reference.
type Name struct {
	Position scanner.Position
	Id       string
}

func (n *Name) Pos() scanner.Position { return n.Position }
func (n *Name) String() string        { return n.Id }

// NumberLit is an integer literal, kept as text so the elaborator can apply
// its own range check rather than relying on the host language's int type.
type NumberLit struct {
	Position scanner.Position
	Text     string
}

func (n *NumberLit) Pos() scanner.Position { return n.Position }
func (n *NumberLit) String() string        { return n.Text }

// BoolLit is `True` or `False`.
type BoolLit struct {
	Position scanner.Position
	Value    bool
}

func (n *BoolLit) Pos() scanner.Position { return n.Position }
func (n *BoolLit) String() string {
	if n.Value {
		return "True"
	}
	return "False"
}

// StrLit is a string literal, used for atomic C++ type names and assert
// messages.
type StrLit struct {
	Position scanner.Position
	Value    string
}

func (n *StrLit) Pos() scanner.Position { return n.Position }
func (n *StrLit) String() string        { return "\"" + n.Value + "\"" }

// Attribute is `Value.Attr`.
type Attribute struct {
	Position scanner.Position
	Value    Node
	Attr     string
}

func (n *Attribute) Pos() scanner.Position { return n.Position }
func (n *Attribute) String() string        { return n.Value.String() + "." + n.Attr }

// Keyword is a `name=value` call argument.
type Keyword struct {
	Name  string
	Value Node
}

// Call is `Func(args..., kwargs...)`. Builtins (Type, match, sum, all, any,
// empty_list, empty_set) are recognised by the shape of Func, never by
// resolving a symbol.
type Call struct {
	Position scanner.Position
	Func     Node
	Args     []Node
	Keywords []Keyword
}

func (n *Call) Pos() scanner.Position { return n.Position }
func (n *Call) String() string        { return n.Func.String() + "(...)" }

// BinOp is `Left Op Right` for `+ - * // %`.
type BinOp struct {
	Position    scanner.Position
	Left, Right Node
	Op          string
}

func (n *BinOp) Pos() scanner.Position { return n.Position }
func (n *BinOp) String() string        { return n.Left.String() + " " + n.Op + " " + n.Right.String() }

// Compare is `Left Op Right` for `== != < > <= >=`.
type Compare struct {
	Position    scanner.Position
	Left, Right Node
	Op          string
}

func (n *Compare) Pos() scanner.Position { return n.Position }
func (n *Compare) String() string        { return n.Left.String() + " " + n.Op + " " + n.Right.String() }

// BoolOp is a variadic `and`/`or` chain; the elaborator right-folds it into
// binary nodes.
type BoolOp struct {
	Position scanner.Position
	Op       string // "and" | "or"
	Values   []Node
}

func (n *BoolOp) Pos() scanner.Position { return n.Position }
func (n *BoolOp) String() string        { return "(" + n.Op + "-chain)" }

// UnaryOp is `not X` or unary `-X`.
type UnaryOp struct {
	Position scanner.Position
	Op       string // "not" | "-"
	Operand  Node
}

func (n *UnaryOp) Pos() scanner.Position { return n.Position }
func (n *UnaryOp) String() string        { return n.Op + " " + n.Operand.String() }

// List is a `[elem, ...]` literal.
type List struct {
	Position scanner.Position
	Elts     []Node
}

func (n *List) Pos() scanner.Position { return n.Position }
func (n *List) String() string        { return "[...]" }

// Set is a `{elem, ...}` literal.
type Set struct {
	Position scanner.Position
	Elts     []Node
}

func (n *Set) Pos() scanner.Position { return n.Position }
func (n *Set) String() string        { return "{...}" }

// ListComp is `[Elt for Var in Iter if Cond]`; Cond may be nil.
type ListComp struct {
	Position scanner.Position
	Elt      Node
	Var      string
	Iter     Node
	Cond     Node
}

func (n *ListComp) Pos() scanner.Position { return n.Position }
func (n *ListComp) String() string        { return "[... for ...]" }

// SetComp is the set-literal analogue of ListComp.
type SetComp struct {
	Position scanner.Position
	Elt      Node
	Var      string
	Iter     Node
	Cond     Node
}

func (n *SetComp) Pos() scanner.Position { return n.Position }
func (n *SetComp) String() string        { return "{... for ...}" }

// Tuple is a pattern key `(p1, ..., pn)` inside a match dict literal.
type Tuple struct {
	Position scanner.Position
	Elts     []Node
}

func (n *Tuple) Pos() scanner.Position { return n.Position }
func (n *Tuple) String() string        { return "(...)" }

// DictEntry is one `key: value` pair of a match's lambda-body dict literal.
type DictEntry struct {
	Key   Node // Tuple if arity>1, else a bare pattern expression.
	Value Node
}

// DictLit is the `{pattern: result, ...}` body of a match's lambda.
type DictLit struct {
	Position scanner.Position
	Entries  []DictEntry
}

func (n *DictLit) Pos() scanner.Position { return n.Position }
func (n *DictLit) String() string        { return "{...: ...}" }

// Lambda is `lambda v1, ..., vk: Body`, used only as the second call in a
// `match(...)(lambda ...: {...})` expression.
type Lambda struct {
	Position scanner.Position
	Params   []string
	Body     Node
}

func (n *Lambda) Pos() scanner.Position { return n.Position }
func (n *Lambda) String() string        { return "lambda ...: ..." }

// ---- Statements ----

// Target is an assignment target: a bare Name, a List/Tuple of Names for
// unpacking assignment, or a single-level attribute target (`self.field`,
// the only attribute assignment the front end accepts, inside __init__).
type Target struct {
	Position scanner.Position
	Name     string   // set when this is a single-name target.
	Elts     []string // set (len>1 meaning) when this is an unpacking target.
	Object   string   // set together with Attr for a `self.field = ...` target.
	Attr     string
}

func (t Target) Pos() scanner.Position { return t.Position }

// Assign is `target = expr`; Target.Elts non-nil means unpacking assignment.
type Assign struct {
	Position scanner.Position
	LHS      Target
	RHS      Node
}

func (n *Assign) Pos() scanner.Position { return n.Position }
func (n *Assign) String() string        { return "<assign>" }

// Return is `return expr` or a bare `return`.
type Return struct {
	Position scanner.Position
	Value    Node // nil for bare return
}

func (n *Return) Pos() scanner.Position { return n.Position }
func (n *Return) String() string        { return "<return>" }

// If is `if Cond: Body else: Orelse`; Orelse may be empty.
type If struct {
	Position scanner.Position
	Cond     Node
	Body     []Node
	Orelse   []Node
}

func (n *If) Pos() scanner.Position { return n.Position }
func (n *If) String() string        { return "<if>" }

// Raise is `raise Exc` or `raise Exc from Cause` (the latter is rejected
// downstream).
type Raise struct {
	Position scanner.Position
	Exc      Node
	Cause    Node // non-nil means `raise ... from ...`
}

func (n *Raise) Pos() scanner.Position { return n.Position }
func (n *Raise) String() string        { return "<raise>" }

// Try is `try: Body except ExcType as Name: Handler`.
type Try struct {
	Position    scanner.Position
	Body        []Node
	ExcType     Node
	HandlerName string
	Handler     []Node
}

func (n *Try) Pos() scanner.Position { return n.Position }
func (n *Try) String() string        { return "<try>" }

// Assert is `assert Test, Msg`; Msg may be nil.
type Assert struct {
	Position scanner.Position
	Test     Node
	Msg      Node
}

func (n *Assert) Pos() scanner.Position { return n.Position }
func (n *Assert) String() string        { return "<assert>" }

// TypeAnnotation is a type expression used in parameter, field and return
// annotations: a bare name (`bool`, `int`, `Type`, or a custom class name)
// or a generic form (`List[X]`, `Set[X]`, `Callable[[X, ...], Y]`), where
// for Callable the first Arg is itself a synthetic TypeAnnotation list
// standing in for the bracketed argument-type list.
type TypeAnnotation struct {
	Position scanner.Position
	Name     string
	Args     []*TypeAnnotation
}

func (n *TypeAnnotation) Pos() scanner.Position { return n.Position }
func (n *TypeAnnotation) String() string        { return n.Name }

// Arg is a function parameter: Name with an optional type Annotation.
type Arg struct {
	Position   scanner.Position
	Name       string
	Annotation Node // nil if unannotated (only legal for `self`).
}

// FunctionDef is `def Name(args...) -> Returns: Body`; Returns may be nil
// (return type to be inferred).
type FunctionDef struct {
	Position scanner.Position
	Name     string
	Args     []Arg
	Returns  Node
	Body     []Node
}

func (n *FunctionDef) Pos() scanner.Position { return n.Position }
func (n *FunctionDef) String() string        { return "def " + n.Name }

// ClassDef is `class Name(Base?): Body`; Base is "Exception" or empty.
type ClassDef struct {
	Position scanner.Position
	Name     string
	Base     string
	Body     []Node
}

func (n *ClassDef) Pos() scanner.Position { return n.Position }
func (n *ClassDef) String() string        { return "class " + n.Name }

// Import is `import Module` or `from Module import Names...`.
type Import struct {
	Position scanner.Position
	Module   string
	Names    []string // empty for a bare `import Module`.
}

func (n *Import) Pos() scanner.Position { return n.Position }
func (n *Import) String() string        { return "import " + n.Module }

// Module is the top-level unit: a flat sequence of statements (imports,
// class defs, function defs, assignments, bare asserts).
type Module struct {
	Body []Node
}

func (n *Module) Pos() scanner.Position { return scanner.Position{} }
func (n *Module) String() string        { return "<module>" }
