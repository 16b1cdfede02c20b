package hir

import (
	"text/scanner"

	"github.com/grailbio/tmppyc/symbol"
)

// Expr is the IR-high expression interface. Every expression carries its
// Type.
type Expr interface {
	ExprType() Type
	Pos() scanner.Position
}

type exprBase struct {
	Position scanner.Position
	Type_    Type
}

func (e exprBase) ExprType() Type        { return e.Type_ }
func (e exprBase) Pos() scanner.Position { return e.Position }

// BoolLit is a boolean literal.
type BoolLit struct {
	exprBase
	Value bool
}

// IntLit is an integer literal, range-checked to fit signed 64 bits
// strictly inside [-(2^63-1), 2^63-1].
type IntLit struct {
	exprBase
	Value int64
}

// AtomicTypeLit is a literal atomic C++ type, e.g. Type("int").
type AtomicTypeLit struct {
	exprBase
	CppName string
}

// VarRef is a reference to a variable, function, or custom-class
// constructor.
type VarRef struct {
	exprBase
	Name         symbol.ID
	IsGlobalFunc bool
	MayThrow     bool
}

// ListExpr constructs a list literal.
type ListExpr struct {
	exprBase
	Elems []Expr
}

// SetExpr constructs a set literal.
type SetExpr struct {
	exprBase
	Elems []Expr
}

// ListComprehension is `[Elt for Var in Iter if Cond]` with a single loop
// variable.
type ListComprehension struct {
	exprBase
	Elt  Expr
	Var  symbol.ID
	Iter Expr
	Cond Expr // nil if absent
}

// SetComprehension is the set-literal analogue.
type SetComprehension struct {
	exprBase
	Elt  Expr
	Var  symbol.ID
	Iter Expr
	Cond Expr
}

// AttributeExpr is attribute access on a TypeRef (child TypeRef, unchecked)
// or a Custom value (checked field access).
type AttributeExpr struct {
	exprBase
	Value Expr
	Attr  symbol.ID
}

// IntBinOp is integer arithmetic: + - * // %. `+` additionally accepts two
// List operands of the same type (concatenation); that case is represented
// as ListConcat, not IntBinOp.
type IntBinOp struct {
	exprBase
	Op          string
	Left, Right Expr
}

// ListConcat is List `+` List of the same element type.
type ListConcat struct {
	exprBase
	Left, Right Expr
}

// IntCompare is an integer ordering comparison: < > <= >=. `==`/`!=` are
// represented as EqualsExpr.
type IntCompare struct {
	exprBase
	Op          string
	Left, Right Expr
}

// EqualsExpr is `==`/`!=` for any structural-equality-supported type.
type EqualsExpr struct {
	exprBase
	Negate      bool
	Left, Right Expr
}

// AndExpr / OrExpr are short-circuit boolean operators, right-folded from
// the surface BoolOp chain, legal only inside a function body.
type AndExpr struct {
	exprBase
	Left, Right Expr
}

type OrExpr struct {
	exprBase
	Left, Right Expr
}

// NotExpr is boolean negation.
type NotExpr struct {
	exprBase
	Operand Expr
}

// UnaryMinus is integer negation.
type UnaryMinus struct {
	exprBase
	Operand Expr
}

// FunctionCall invokes a named function (or custom-class constructor).
type FunctionCall struct {
	exprBase
	Func     Expr
	Args     []Expr
	MayThrow bool
}

// MatchBranch is one `(p1, ..., pn): result` arm of a match expression. Used
// holds the subset of lambda parameter indices this branch's patterns
// reference. IsMainDefn is true iff every pattern is a bare lambda
// parameter (the default/catch-all case).
type MatchBranch struct {
	Patterns   []Expr
	Result     Expr
	Used       []int
	IsMainDefn bool
}

// MatchExpr is `match(e1, ..., en)(lambda v1,...,vk: {...})`.
type MatchExpr struct {
	exprBase
	Matched  []Expr
	Params   []symbol.ID
	Branches []MatchBranch
}

// Type-constructor expressions: each yields a TypeRef.

type PointerTypeExpr struct {
	exprBase
	Elem Expr
}

type ReferenceTypeExpr struct {
	exprBase
	Elem Expr
}

type RvalueReferenceTypeExpr struct {
	exprBase
	Elem Expr
}

type ConstTypeExpr struct {
	exprBase
	Elem Expr
}

type ArrayTypeExpr struct {
	exprBase
	Elem Expr
}

type FunctionTypeExpr struct {
	exprBase
	Ret  Expr
	Args []Expr
}

type TemplateInstantiationExpr struct {
	exprBase
	Name string
	Args []Expr
}

type TemplateMemberAccessExpr struct {
	exprBase
	Class Expr
	Name  string
	Args  []Expr
}

// Iterable reductions: sum, all, any.
type SumExpr struct {
	exprBase
	Iterable Expr
}

type AllExpr struct {
	exprBase
	Iterable Expr
}

type AnyExpr struct {
	exprBase
	Iterable Expr
}
