package lir

// Expr is an IR-low expression: a fragment of C++ metaprogram evaluated at
// template-instantiation time.
type Expr interface {
	ExprType() Type
	// ReferencesAnyOf reports whether this expression (or any subexpression)
	// textually references one of the given template-parameter names. The
	// deferred-evaluation logic in cppemit uses it to decide whether an
	// expression already depends on an enclosing template's parameters.
	ReferencesAnyOf(names map[string]bool) bool
}

type exprBase struct{ Type_ Type }

func (e exprBase) ExprType() Type { return e.Type_ }

// BoolLiteral and Int64Literal are the two literal kinds; a
// one-field-per-kind split keeps the type of each literal static.
type BoolLiteral struct {
	exprBase
	Value bool
}

func NewBoolLiteral(v bool) BoolLiteral                  { return BoolLiteral{exprBase{Bool{}}, v} }
func (BoolLiteral) ReferencesAnyOf(map[string]bool) bool { return false }

type Int64Literal struct {
	exprBase
	Value int64
}

func NewInt64Literal(v int64) Int64Literal                { return Int64Literal{exprBase{Int64{}}, v} }
func (Int64Literal) ReferencesAnyOf(map[string]bool) bool { return false }

// AtomicTypeLiteral is a reference to a C++ identifier: a local (bound by an
// enclosing template's parameter list) or a nonlocal (another top-level
// declaration) name.
type AtomicTypeLiteral struct {
	exprBase
	CppName        string
	IsLocal        bool
	MayReturnError bool // only meaningful when Type_ is Template
}

func NewLocalAtomicTypeLiteral(cppName string, t Type) AtomicTypeLiteral {
	_, isTemplate := t.(Template)
	return AtomicTypeLiteral{exprBase{t}, cppName, true, isTemplate}
}

func NewNonlocalAtomicTypeLiteral(cppName string, t Type, mayReturnError bool) AtomicTypeLiteral {
	if mayReturnError {
		if _, ok := t.(Template); !ok {
			panic("lir: a metafunction that may error must be template-kinded")
		}
	}
	return AtomicTypeLiteral{exprBase{t}, cppName, false, mayReturnError}
}

func (e AtomicTypeLiteral) ReferencesAnyOf(names map[string]bool) bool {
	return e.IsLocal && names[e.CppName]
}

// PointerTypeExpr, ReferenceTypeExpr, RvalueReferenceTypeExpr, ConstTypeExpr
// and ArrayTypeExpr are the five single-argument type modifiers; all are
// TypeType-kinded and delegate ReferencesAnyOf to Elem.
type PointerTypeExpr struct {
	exprBase
	Elem Expr
}

func NewPointerTypeExpr(elem Expr) PointerTypeExpr {
	return PointerTypeExpr{exprBase{TypeType{}}, elem}
}
func (e PointerTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	return e.Elem.ReferencesAnyOf(names)
}

type ReferenceTypeExpr struct {
	exprBase
	Elem Expr
}

func NewReferenceTypeExpr(elem Expr) ReferenceTypeExpr {
	return ReferenceTypeExpr{exprBase{TypeType{}}, elem}
}
func (e ReferenceTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	return e.Elem.ReferencesAnyOf(names)
}

type RvalueReferenceTypeExpr struct {
	exprBase
	Elem Expr
}

func NewRvalueReferenceTypeExpr(elem Expr) RvalueReferenceTypeExpr {
	return RvalueReferenceTypeExpr{exprBase{TypeType{}}, elem}
}
func (e RvalueReferenceTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	return e.Elem.ReferencesAnyOf(names)
}

type ConstTypeExpr struct {
	exprBase
	Elem Expr
}

func NewConstTypeExpr(elem Expr) ConstTypeExpr { return ConstTypeExpr{exprBase{TypeType{}}, elem} }
func (e ConstTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	return e.Elem.ReferencesAnyOf(names)
}

type ArrayTypeExpr struct {
	exprBase
	Elem Expr
}

func NewArrayTypeExpr(elem Expr) ArrayTypeExpr { return ArrayTypeExpr{exprBase{TypeType{}}, elem} }
func (e ArrayTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	return e.Elem.ReferencesAnyOf(names)
}

// FunctionTypeExpr is a C++ function type `Ret (Args...)`; a pointer to it is
// a PointerTypeExpr wrapping it.
type FunctionTypeExpr struct {
	exprBase
	Ret  Expr
	Args []Expr
}

func NewFunctionTypeExpr(ret Expr, args []Expr) FunctionTypeExpr {
	return FunctionTypeExpr{exprBase{TypeType{}}, ret, args}
}

func (e FunctionTypeExpr) ReferencesAnyOf(names map[string]bool) bool {
	if e.Ret.ReferencesAnyOf(names) {
		return true
	}
	for _, a := range e.Args {
		if a.ReferencesAnyOf(names) {
			return true
		}
	}
	return false
}

// Comparison is `lhs op rhs` for `==`, `!=`, `<`, `>`, `<=`, `>=` (bool
// result).
type Comparison struct {
	exprBase
	Op          string
	Left, Right Expr
}

// NewComparison checks the operand-compatibility invariant: boolean operands
// admit only `==`, integer operands admit the full comparison set.
func NewComparison(op string, left, right Expr) Comparison {
	if !TypesEqual(left.ExprType(), right.ExprType()) {
		panic("lir: Comparison operands have different types")
	}
	switch left.ExprType().(type) {
	case Bool:
		if op != "==" {
			panic("lir: bool comparison only admits ==, got " + op)
		}
	case Int64:
		switch op {
		case "==", "!=", "<", ">", "<=", ">=":
		default:
			panic("lir: invalid int64 comparison operator " + op)
		}
	default:
		panic("lir: Comparison operands must be bool or int64")
	}
	return Comparison{exprBase{Bool{}}, op, left, right}
}

func (e Comparison) ReferencesAnyOf(names map[string]bool) bool {
	return e.Left.ReferencesAnyOf(names) || e.Right.ReferencesAnyOf(names)
}

// Int64BinOp is `lhs op rhs` for `+ - * / %` (int64 result).
type Int64BinOp struct {
	exprBase
	Op          string
	Left, Right Expr
}

func NewInt64BinOp(op string, left, right Expr) Int64BinOp {
	return Int64BinOp{exprBase{Int64{}}, op, left, right}
}

func (e Int64BinOp) ReferencesAnyOf(names map[string]bool) bool {
	return e.Left.ReferencesAnyOf(names) || e.Right.ReferencesAnyOf(names)
}

// TemplateInstantiation is `Template<Args...>`. MayTriggerStaticAsserts
// marks an instantiation whose body may fire a static_assert, the trigger
// for deferred-evaluation wrapping.
type TemplateInstantiation struct {
	exprBase
	Template                Expr
	Args                    []Expr
	MayTriggerStaticAsserts bool
}

// NewTemplateInstantiation checks the argument count against the template's
// declared arg kinds, unless variadics are involved on either side.
func NewTemplateInstantiation(template Expr, args []Expr, mayTriggerStaticAsserts bool) TemplateInstantiation {
	if tt, ok := template.ExprType().(Template); ok {
		variadic := false
		for _, at := range tt.ArgTypes {
			if _, ok := at.(Variadic); ok {
				variadic = true
			}
		}
		for _, a := range args {
			if _, ok := a.(VariadicTypeExpansion); ok {
				variadic = true
			}
		}
		if !variadic && len(args) != len(tt.ArgTypes) {
			panic("lir: template instantiation argument count does not match the template's declared arg kinds")
		}
	}
	return TemplateInstantiation{exprBase{TypeType{}}, template, args, mayTriggerStaticAsserts}
}

func (e TemplateInstantiation) ReferencesAnyOf(names map[string]bool) bool {
	if e.Template.ReferencesAnyOf(names) {
		return true
	}
	for _, a := range e.Args {
		if a.ReferencesAnyOf(names) {
			return true
		}
	}
	return false
}

// ClassMemberAccess is `Class::member` (or `Class::template member` /
// `typename Class::member` depending on MemberType, decided in cppemit).
type ClassMemberAccess struct {
	exprBase
	Class  Expr
	Member string
}

func NewClassMemberAccess(class Expr, member string, memberType Type) ClassMemberAccess {
	return ClassMemberAccess{exprBase{memberType}, class, member}
}

func (e ClassMemberAccess) ReferencesAnyOf(names map[string]bool) bool {
	return e.Class.ReferencesAnyOf(names)
}

// Not is `!expr`.
type Not struct {
	exprBase
	Operand Expr
}

func NewNot(operand Expr) Not                            { return Not{exprBase{Bool{}}, operand} }
func (e Not) ReferencesAnyOf(names map[string]bool) bool { return e.Operand.ReferencesAnyOf(names) }

// UnaryMinus is `-expr`.
type UnaryMinus struct {
	exprBase
	Operand Expr
}

func NewUnaryMinus(operand Expr) UnaryMinus { return UnaryMinus{exprBase{Int64{}}, operand} }
func (e UnaryMinus) ReferencesAnyOf(names map[string]bool) bool {
	return e.Operand.ReferencesAnyOf(names)
}

// VariadicTypeExpansion is `expr...`.
type VariadicTypeExpansion struct {
	exprBase
	Operand Expr
}

func NewVariadicTypeExpansion(operand Expr) VariadicTypeExpansion {
	return VariadicTypeExpansion{exprBase{TypeType{}}, operand}
}
func (e VariadicTypeExpansion) ReferencesAnyOf(names map[string]bool) bool {
	return e.Operand.ReferencesAnyOf(names)
}
