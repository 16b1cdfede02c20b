package hir

import (
	"math"
	"regexp"
	"strconv"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// maxInt64Abs bounds integer literals to [-(2^63-1), 2^63-1]:
// math.MinInt64 itself is out of range, so negation never overflows.
const maxInt64Abs = int64(math.MaxInt64)

var atomicTypeNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)

// CheckVarRef is called by the elaborator whenever it resolves a bare
// variable reference, letting callers (e.g. the match-pattern param-usage
// tracker) observe which names were used.
type CheckVarRef func(name *ast.Name)

func noopCheckVarRef(*ast.Name) {}

// ElaborateExpr is the expression elaborator's single entry point.
// inMatchPattern disables comparison, boolean operators, function calls,
// attribute access, comprehensions and Type.template_member, which have no
// meaning inside a match pattern.
func ElaborateExpr(node ast.Node, ctx *Context, inMatchPattern bool, checkVarRef CheckVarRef) Expr {
	if checkVarRef == nil {
		checkVarRef = noopCheckVarRef
	}
	switch n := node.(type) {
	case *ast.BoolLit:
		return BoolLit{exprBase{n.Position, Bool{}}, n.Value}
	case *ast.NumberLit:
		return elaborateIntLit(n, ctx)
	case *ast.Name:
		checkVarRef(n)
		return elaborateVarRef(n, ctx)
	case *ast.List:
		return elaborateListLit(n, ctx, inMatchPattern, checkVarRef)
	case *ast.Set:
		return elaborateSetLit(n, ctx, inMatchPattern, checkVarRef)
	case *ast.ListComp:
		return elaborateListComp(n, ctx, inMatchPattern, checkVarRef)
	case *ast.SetComp:
		return elaborateSetComp(n, ctx, inMatchPattern, checkVarRef)
	case *ast.Attribute:
		return elaborateAttribute(n, ctx, inMatchPattern, checkVarRef)
	case *ast.BinOp:
		return elaborateBinOp(n, ctx, inMatchPattern, checkVarRef)
	case *ast.Compare:
		return elaborateCompare(n, ctx, inMatchPattern, checkVarRef)
	case *ast.BoolOp:
		return elaborateBoolOp(n, ctx, inMatchPattern, checkVarRef)
	case *ast.UnaryOp:
		return elaborateUnaryOp(n, ctx, inMatchPattern, checkVarRef)
	case *ast.Call:
		return elaborateCall(n, ctx, inMatchPattern, checkVarRef)
	default:
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, node.Pos(), "unsupported expression: %s", node.String())
		panic("unreachable")
	}
}

func elaborateIntLit(n *ast.NumberLit, ctx *Context) Expr {
	v, err := strconv.ParseInt(n.Text, 10, 64)
	if err != nil || v > maxInt64Abs || v < -maxInt64Abs {
		diag.Raise(diag.IntegerOutOfRange, ctx.Source, n.Position,
			"integer literal %s is out of the supported range [-(2^63-1), 2^63-1]", n.Text)
	}
	return IntLit{exprBase{n.Position, Int{}}, v}
}

func elaborateVarRef(n *ast.Name, ctx *Context) Expr {
	name := symbol.Intern(n.Id)
	entry, _ := ctx.Lookup(name)
	if entry == nil {
		if p, ok := ctx.LookupPartial(name); ok {
			if ctx.Scope().FunctionName == n.Id {
				panic(diag.New(diag.UndefinedName, ctx.Source, n.Position,
					"Recursive function references are only allowed if the return type is declared explicitly").
					WithNote(p.DefPos, "%s was defined here", n.Id))
			}
			panic(diag.New(diag.UndefinedName, ctx.Source, n.Position,
				"reference to %s: return type not yet determined; either declare it explicitly or move this reference after the function definition", n.Id).
				WithNote(p.DefPos, "%s is defined here", n.Id))
		}
		diag.Raise(diag.UndefinedName, ctx.Source, n.Position, "reference to undefined name: %s", n.Id)
	}
	if entry.PartiallyDefined {
		panic(diag.New(diag.PartiallyDefined, ctx.Source, n.Position,
			"reference to a variable that may or may not have been initialized: %s", n.Id).
			WithNote(entry.DefNode, "%s was conditionally defined here", n.Id))
	}
	_, isFunc := entry.Type.(Function)
	return VarRef{exprBase{n.Position, entry.Type}, name, isFunc, entry.MayThrow}
}

func elaborateListLit(n *ast.List, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	elems := make([]Expr, len(n.Elts))
	var elemType Type
	for i, e := range n.Elts {
		elems[i] = ElaborateExpr(e, ctx, inPattern, cvr)
		if i == 0 {
			elemType = elems[i].ExprType()
		} else if !TypesEqual(elemType, elems[i].ExprType()) {
			diag.Raise(diag.TypeMismatch, ctx.Source, e.Pos(),
				"all elements of a list literal must have the same type; expected %s, got %s", elemType.String(), elems[i].ExprType().String())
		}
	}
	if elemType == nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "empty list literals are not supported; use empty_list(T) instead")
	}
	return ListExpr{exprBase{n.Position, List{elemType}}, elems}
}

func elaborateSetLit(n *ast.Set, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	elems := make([]Expr, len(n.Elts))
	var elemType Type
	for i, e := range n.Elts {
		elems[i] = ElaborateExpr(e, ctx, inPattern, cvr)
		if i == 0 {
			elemType = elems[i].ExprType()
		} else if !TypesEqual(elemType, elems[i].ExprType()) {
			diag.Raise(diag.TypeMismatch, ctx.Source, e.Pos(),
				"all elements of a set literal must have the same type; expected %s, got %s", elemType.String(), elems[i].ExprType().String())
		}
	}
	if elemType == nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "empty set literals are not supported; use empty_set(T) instead")
	}
	return SetExpr{exprBase{n.Position, Set{elemType}}, elems}
}

func elaborateListComp(n *ast.ListComp, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "comprehensions are not allowed in match patterns")
	}
	iter := ElaborateExpr(n.Iter, ctx, inPattern, cvr)
	lt, ok := iter.ExprType().(List)
	if !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Iter.Pos(), "the iterable of a list comprehension must be a List, got %s", iter.ExprType().String())
	}
	ctx.ChildScope("")
	defer ctx.PopScope()
	varName := symbol.Intern(n.Var)
	ctx.Add(n.Position, varName, lt.Elem, false, false)
	elt := ElaborateExpr(n.Elt, ctx, inPattern, cvr)
	var cond Expr
	if n.Cond != nil {
		cond = ElaborateExpr(n.Cond, ctx, inPattern, cvr)
		if _, ok := cond.ExprType().(Bool); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Cond.Pos(), "the condition of a comprehension must be a bool")
		}
	}
	return ListComprehension{exprBase{n.Position, List{elt.ExprType()}}, elt, varName, iter, cond}
}

func elaborateSetComp(n *ast.SetComp, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "comprehensions are not allowed in match patterns")
	}
	iter := ElaborateExpr(n.Iter, ctx, inPattern, cvr)
	var elemType Type
	switch it := iter.ExprType().(type) {
	case List:
		elemType = it.Elem
	case Set:
		elemType = it.Elem
	default:
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Iter.Pos(), "the iterable of a set comprehension must be a List or Set, got %s", iter.ExprType().String())
	}
	ctx.ChildScope("")
	defer ctx.PopScope()
	varName := symbol.Intern(n.Var)
	ctx.Add(n.Position, varName, elemType, false, false)
	elt := ElaborateExpr(n.Elt, ctx, inPattern, cvr)
	var cond Expr
	if n.Cond != nil {
		cond = ElaborateExpr(n.Cond, ctx, inPattern, cvr)
		if _, ok := cond.ExprType().(Bool); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Cond.Pos(), "the condition of a comprehension must be a bool")
		}
	}
	return SetComprehension{exprBase{n.Position, Set{elt.ExprType()}}, elt, varName, iter, cond}
}

func elaborateAttribute(n *ast.Attribute, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "attribute access is not allowed in match patterns")
	}
	value := ElaborateExpr(n.Value, ctx, inPattern, cvr)
	attr := symbol.Intern(n.Attr)
	switch vt := value.ExprType().(type) {
	case TypeRef:
		return AttributeExpr{exprBase{n.Position, TypeRef{}}, value, attr}
	case Custom:
		ft, ok := vt.FieldType(attr)
		if !ok {
			diag.Raise(diag.UndefinedName, ctx.Source, n.Position, "%s has no field %s; available fields: %s", vt.Name.Str(), n.Attr, fieldNames(vt))
		}
		return AttributeExpr{exprBase{n.Position, ft}, value, attr}
	default:
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "attribute access is only supported on Type and custom-class values, got %s", value.ExprType().String())
		panic("unreachable")
	}
}

func fieldNames(c Custom) string {
	s := ""
	for i, f := range c.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name.Str()
	}
	return s
}

func elaborateBinOp(n *ast.BinOp, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "arithmetic is not allowed in match patterns")
	}
	left := ElaborateExpr(n.Left, ctx, inPattern, cvr)
	right := ElaborateExpr(n.Right, ctx, inPattern, cvr)
	if n.Op == "+" {
		_, lList := left.ExprType().(List)
		_, rList := right.ExprType().(List)
		if lList || rList {
			if !lList || !rList || !TypesEqual(left.ExprType(), right.ExprType()) {
				diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "+ on lists requires both operands to be List of the same type")
			}
			return ListConcat{exprBase{n.Position, left.ExprType()}, left, right}
		}
	}
	if _, ok := left.ExprType().(Int); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Left.Pos(), "operand of %s must be int, got %s", n.Op, left.ExprType().String())
	}
	if _, ok := right.ExprType().(Int); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Right.Pos(), "operand of %s must be int, got %s", n.Op, right.ExprType().String())
	}
	return IntBinOp{exprBase{n.Position, Int{}}, n.Op, left, right}
}

func elaborateCompare(n *ast.Compare, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "comparisons are not allowed in match patterns")
	}
	left := ElaborateExpr(n.Left, ctx, inPattern, cvr)
	right := ElaborateExpr(n.Right, ctx, inPattern, cvr)
	if n.Op == "==" || n.Op == "!=" {
		if !structuralEqualitySupported(left.ExprType()) || !TypesEqual(left.ExprType(), right.ExprType()) {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "%s is not supported between %s and %s", n.Op, left.ExprType().String(), right.ExprType().String())
		}
		return EqualsExpr{exprBase{n.Position, Bool{}}, n.Op == "!=", left, right}
	}
	if _, ok := left.ExprType().(Int); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Left.Pos(), "operand of %s must be int, got %s", n.Op, left.ExprType().String())
	}
	if _, ok := right.ExprType().(Int); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Right.Pos(), "operand of %s must be int, got %s", n.Op, right.ExprType().String())
	}
	return IntCompare{exprBase{n.Position, Bool{}}, n.Op, left, right}
}

// elaborateBoolOp right-folds a variadic and/or chain into binary AndExpr/
// OrExpr nodes, and rejects use at module top level (no enclosing function)
// to match the short-circuit evaluation model the downstream lowering
// provides.
func elaborateBoolOp(n *ast.BoolOp, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "boolean operators are not allowed in match patterns")
	}
	if ctx.Scope().FunctionName == "" {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "'%s' is only allowed inside a function body", n.Op)
	}
	values := make([]Expr, len(n.Values))
	for i, v := range n.Values {
		values[i] = ElaborateExpr(v, ctx, inPattern, cvr)
		if _, ok := values[i].ExprType().(Bool); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, v.Pos(), "operand of '%s' must be bool, got %s", n.Op, values[i].ExprType().String())
		}
	}
	acc := values[len(values)-1]
	for i := len(values) - 2; i >= 0; i-- {
		if n.Op == "and" {
			acc = AndExpr{exprBase{n.Position, Bool{}}, values[i], acc}
		} else {
			acc = OrExpr{exprBase{n.Position, Bool{}}, values[i], acc}
		}
	}
	return acc
}

func elaborateUnaryOp(n *ast.UnaryOp, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "unary operators are not allowed in match patterns")
	}
	operand := ElaborateExpr(n.Operand, ctx, inPattern, cvr)
	if n.Op == "not" {
		if _, ok := operand.ExprType().(Bool); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "operand of 'not' must be bool, got %s", operand.ExprType().String())
		}
		return NotExpr{exprBase{n.Position, Bool{}}, operand}
	}
	if _, ok := operand.ExprType().(Int); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "operand of unary '-' must be int, got %s", operand.ExprType().String())
	}
	return UnaryMinus{exprBase{n.Position, Int{}}, operand}
}

func checkNoKeywords(ctx *Context, n *ast.Call, builtin string) {
	if len(n.Keywords) > 0 {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Keywords[0].Value.Pos(), "keyword arguments are not supported for %s()", builtin)
	}
}

func checkAtomicType(ctx *Context, n ast.Node, name string) {
	if !atomicTypeNameRE.MatchString(name) {
		diag.Raise(diag.InvalidAtomicType, ctx.Source, n.Pos(), "invalid atomic C++ type name: %q", name)
	}
}
