package cppemit

import (
	"fmt"
	"strings"

	"github.com/grailbio/tmppyc/lir"
)

// selectBestArgDecl picks the enclosing template parameter whose name a
// Select1st wrapper will bind to: the first non-template parameter, falling
// back to the first parameter.
func selectBestArgDecl(args []lir.TemplateArgDecl) lir.TemplateArgDecl {
	for _, arg := range args {
		if _, isTemplate := arg.Type.(lir.Template); !isTemplate {
			return arg
		}
	}
	return args[0]
}

// selectBestArgExprIndex picks the instantiation argument a Select1st wrapper
// will replace: the first non-template argument, falling back to the first.
func selectBestArgExprIndex(args []lir.Expr) int {
	for i, arg := range args {
		if _, isTemplate := arg.ExprType().(lir.Template); !isTemplate {
			return i
		}
	}
	return 0
}

// select1stKind maps an expression kind to its half of a predefined
// Select1stXY name. Variadic maps to the Type variant: e.g.
// Select1stBoolType<b, Args> will be expanded as Select1stBoolType<b, Args>...
// so it's exactly what we want in the variadic case too.
func select1stKind(t lir.Type) string {
	switch t.(type) {
	case lir.Bool:
		return "Bool"
	case lir.Int64:
		return "Int64"
	case lir.TypeType, lir.Variadic:
		return "Type"
	default:
		panic(fmt.Sprintf("cppemit: no predefined Select1st kind for %T", t))
	}
}

// TemplateInstantiationToCpp renders `Template<args...>`, including the
// deferred-evaluation rewrite: an instantiation that may trigger static
// asserts, none of whose arguments references an enclosing template
// parameter, gets one argument replaced with Select1stXY<arg, param>::value
// so the C++ compiler cannot instantiate it before the enclosing template
// itself.
func TemplateInstantiationToCpp(e lir.TemplateInstantiation, enclosing []lir.TemplateArgDecl, w Writer, omitTypename bool) string {
	args := e.Args

	if e.MayTriggerStaticAsserts && len(enclosing) > 0 {
		bound := map[string]bool{}
		for _, d := range enclosing {
			bound[d.Name] = true
		}
		anyRef := false
		for _, a := range args {
			if a.ReferencesAnyOf(bound) {
				anyRef = true
				break
			}
		}
		if !anyRef && len(args) > 0 {
			argDecl := selectBestArgDecl(enclosing)
			argIndex := selectBestArgExprIndex(args)
			argToReplace := args[argIndex]

			_, replIsTemplate := argToReplace.ExprType().(lir.Template)
			_, declIsTemplate := argDecl.Type.(lir.Template)
			var variant string
			if !replIsTemplate && !declIsTemplate {
				variant = "Select1st" + select1stKind(argToReplace.ExprType()) + select1stKind(argDecl.Type)
			} else {
				variant = writeCustomSelect1st(argToReplace.ExprType(), argDecl.Type, enclosing, w)
			}

			selectType := lir.Template{ArgTypes: []lir.Type{argToReplace.ExprType(), argDecl.Type}}
			selectInst := lir.NewTemplateInstantiation(
				lir.NewLocalAtomicTypeLiteral(variant, selectType),
				[]lir.Expr{argToReplace, lir.NewLocalAtomicTypeLiteral(argDecl.Name, argDecl.Type)},
				false)
			newArg := lir.NewClassMemberAccess(selectInst, "value", argToReplace.ExprType())

			replaced := make([]lir.Expr, len(args))
			copy(replaced, args)
			replaced[argIndex] = newArg
			args = replaced
		}
	}

	params := make([]string, len(args))
	for i, a := range args {
		params[i] = ExprToCpp(a, enclosing, w)
	}

	var cppFun string
	if cma, ok := e.Template.(lir.ClassMemberAccess); ok {
		cppFun = ClassMemberAccessToCpp(cma, enclosing, w, omitTypename, true)
	} else {
		cppFun = ExprToCpp(e.Template, enclosing, w)
	}
	return cppFun + "<" + strings.Join(params, ", ") + ">"
}

// writeCustomSelect1st defines a fresh Select1st variant when either side is
// template-kinded, for which no predefined helper exists, and returns its
// name.
func writeCustomSelect1st(replacedType, declType lir.Type, enclosing []lir.TemplateArgDecl, w Writer) string {
	variant := w.NewID()
	forwardedParam := w.NewID()

	bodyWriter := NewTemplateElemWriter(w.ToplevelWriter())
	switch replacedType.(type) {
	case lir.Bool, lir.Int64:
		ConstantDefToCpp(lir.ConstantDef{
			Name: "value",
			Expr: lir.NewLocalAtomicTypeLiteral(forwardedParam, replacedType),
		}, enclosing, bodyWriter)
	default:
		memberType := replacedType
		if _, ok := memberType.(lir.Variadic); ok {
			memberType = lir.TypeType{}
		}
		TypedefToCpp(lir.Typedef{
			Name: "value",
			Expr: lir.NewLocalAtomicTypeLiteral(forwardedParam, memberType),
		}, enclosing, bodyWriter)
	}

	w.WriteTemplateBodyElem(fmt.Sprintf(
		"// Custom Select1st* template\ntemplate <%s %s, %s>\nstruct %s {\n%s};\n",
		TemplateParamDecl(replacedType), forwardedParam, TemplateParamDecl(declType),
		variant, indentBody(bodyWriter.Strings)))
	return variant
}

// ClassMemberAccessToCpp renders `Class::member`: `typename` is prepended
// when the member is a type accessed in a dependent context, and
// `template ` is inserted before a member that is itself a template.
func ClassMemberAccessToCpp(e lir.ClassMemberAccess, enclosing []lir.TemplateArgDecl, w Writer, omitTypename, parentIsTemplateInstantiation bool) string {
	var cppFun string
	switch c := e.Class.(type) {
	case lir.TemplateInstantiation:
		cppFun = TemplateInstantiationToCpp(c, enclosing, w, true)
	case lir.ClassMemberAccess:
		cppFun = ClassMemberAccessToCpp(c, enclosing, w, true, false)
	default:
		cppFun = ExprToCpp(e.Class, enclosing, w)
	}

	switch e.ExprType().(type) {
	case lir.Bool, lir.Int64:
		return cppFun + "::" + e.Member
	case lir.TypeType, lir.Variadic, lir.Template:
		_, isTemplate := e.ExprType().(lir.Template)
		maybeTypename := "typename "
		if omitTypename || (isTemplate && !parentIsTemplateInstantiation) {
			maybeTypename = ""
		}
		maybeTemplate := ""
		if isTemplate {
			maybeTemplate = "template "
		}
		return maybeTypename + cppFun + "::" + maybeTemplate + e.Member
	default:
		panic(fmt.Sprintf("cppemit: unsupported member type: %T", e.ExprType()))
	}
}
