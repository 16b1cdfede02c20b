package cppemit

import (
	"fmt"

	"github.com/grailbio/tmppyc/lir"
)

// TypeExprToCpp writes expr's full C++ declarator (prefix and suffix) into
// w.
func TypeExprToCpp(expr lir.Expr, enclosing []lir.TemplateArgDecl, w *ExprWriter) {
	prefix, suffix := typeExprPrefixSuffix(expr, enclosing, w, false)
	prefix()
	suffix()
}

// simplifyToplevelReferences collapses `T & &&`-shaped chains the way C++
// reference collapsing would, since we can't emit the invalid "int & &&"
// syntax directly. A bare `&` anywhere in the chain wins over `&&`. The C++
// compiler has similar collapsing logic, but it only applies when one of
// the references is hidden inside a typedef.
func simplifyToplevelReferences(expr lir.Expr) lir.Expr {
	hasRef := false
	for {
		switch e := expr.(type) {
		case lir.RvalueReferenceTypeExpr:
			expr = e.Elem
		case lir.ReferenceTypeExpr:
			hasRef = true
			expr = e.Elem
		default:
			if hasRef {
				return lir.NewReferenceTypeExpr(expr)
			}
			return lir.NewRvalueReferenceTypeExpr(expr)
		}
	}
}

// typeExprPrefixSuffix is the declarator-composition core: most C++ types
// print left-to-right, but
// function types wrap their return type around the parameter list
// (`Ret(*)(Args...)`), so composing two nested function/pointer modifiers
// requires building the declarator from the inside out. Each call returns
// a write-prefix and a write-suffix closure; callers invoke prefix() then,
// after everything nested inside has been written, suffix().
func typeExprPrefixSuffix(expr lir.Expr, enclosing []lir.TemplateArgDecl, w *ExprWriter, hasModifiers bool) (func(), func()) {
	switch e := expr.(type) {
	case lir.RvalueReferenceTypeExpr, lir.ReferenceTypeExpr:
		switch s := simplifyToplevelReferences(e).(type) {
		case lir.ReferenceTypeExpr:
			return unaryModifierPrefixSuffix(" &", s.Elem, enclosing, w)
		case lir.RvalueReferenceTypeExpr:
			return unaryModifierPrefixSuffix(" &&", s.Elem, enclosing, w)
		default:
			panic(fmt.Sprintf("cppemit: simplifyToplevelReferences returned unexpected type: %T", s))
		}
	case lir.FunctionTypeExpr:
		return functionTypeExprPrefixSuffix(e, enclosing, w, hasModifiers)
	case lir.PointerTypeExpr:
		return unaryModifierPrefixSuffix("*", e.Elem, enclosing, w)
	case lir.ConstTypeExpr:
		return unaryModifierPrefixSuffix(" const ", e.Elem, enclosing, w)
	case lir.ArrayTypeExpr:
		return unaryModifierPrefixSuffix("[]", e.Elem, enclosing, w)
	}

	var code string
	switch e := expr.(type) {
	case lir.AtomicTypeLiteral:
		code = atomicTypeLiteralToCpp(e)
	case lir.TemplateInstantiation:
		code = TemplateInstantiationToCpp(e, enclosing, w, false)
	case lir.ClassMemberAccess:
		code = ClassMemberAccessToCpp(e, enclosing, w, false, false)
	case lir.VariadicTypeExpansion:
		code = ExprToCpp(e.Operand, enclosing, w) + "..."
	default:
		panic(fmt.Sprintf("cppemit: unexpected type expr: %T", expr))
	}
	return func() { w.WriteExprFragment(code) }, func() {}
}

func unaryModifierPrefixSuffix(modifier string, sub lir.Expr, enclosing []lir.TemplateArgDecl, w *ExprWriter) (func(), func()) {
	subPrefix, subSuffix := typeExprPrefixSuffix(sub, enclosing, w, true)
	return func() {
		subPrefix()
		w.WriteExprFragment(modifier)
	}, subSuffix
}

func functionTypeExprPrefixSuffix(expr lir.FunctionTypeExpr, enclosing []lir.TemplateArgDecl, w *ExprWriter, hasModifiers bool) (func(), func()) {
	retPrefix, retSuffix := typeExprPrefixSuffix(expr.Ret, enclosing, w, false)
	prefix := func() {
		retPrefix()
		if hasModifiers {
			w.WriteExprFragment("(")
		}
	}
	suffix := func() {
		if hasModifiers {
			w.WriteExprFragment(")")
		}
		w.WriteExprFragment(" (")
		for i, arg := range expr.Args {
			if i != 0 {
				w.WriteExprFragment(", ")
			}
			TypeExprToCpp(arg, enclosing, w)
		}
		w.WriteExprFragment(")")
		retSuffix()
	}
	return prefix, suffix
}

func atomicTypeLiteralToCpp(e lir.AtomicTypeLiteral) string { return e.CppName }
