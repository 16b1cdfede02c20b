package cppemit

import (
	"fmt"
	"strings"

	"github.com/grailbio/tmppyc/lir"
)

// StaticAssertToCpp renders one static_assert. An assert expression that
// references no enclosing template parameter would be evaluated as soon as
// the enclosing template is *parsed*, so it is guarded with an
// AlwaysTrueFrom* conjunct that ties it to a parameter; when every parameter
// is template-kinded, a fresh AlwaysTrueFor* helper is defined on the spot.
func StaticAssertToCpp(a lir.StaticAssert, enclosing []lir.TemplateArgDecl, w Writer) {
	bound := map[string]bool{}
	for _, d := range enclosing {
		bound[d.Name] = true
	}

	expr := ExprToCpp(a.Expr, enclosing, w)
	if len(enclosing) == 0 || a.Expr.ReferencesAnyOf(bound) {
		w.WriteTemplateBodyElem(fmt.Sprintf("static_assert(%s, \"%s\");\n", expr, a.Message))
		return
	}

	for _, d := range enclosing {
		switch d.Type.(type) {
		case lir.Bool:
			w.WriteTemplateBodyElem(fmt.Sprintf("static_assert(AlwaysTrueFromBool<%s>::value && %s, \"%s\");\n", d.Name, expr, a.Message))
			return
		case lir.Int64:
			w.WriteTemplateBodyElem(fmt.Sprintf("static_assert(AlwaysTrueFromInt64<%s>::value && %s, \"%s\");\n", d.Name, expr, a.Message))
			return
		case lir.TypeType:
			w.WriteTemplateBodyElem(fmt.Sprintf("static_assert(AlwaysTrueFromType<%s>::value && %s, \"%s\");\n", d.Name, expr, a.Message))
			return
		}
	}

	// None of the enclosing template's parameters is a plain bool, int64 or
	// type, so none of the predefined AlwaysTrueFrom* helpers applies; define
	// a variant for the first parameter's shape.
	alwaysTrueID := w.NewID()
	paramDecl := TemplateParamDecl(enclosing[0].Type)
	w.WriteTemplateBodyElem(fmt.Sprintf(
		"// Custom AlwaysTrueFor* template\ntemplate <%s>\nstruct %s {\n  static constexpr bool value = true;\n};\nstatic_assert(%s<%s>::value && %s, \"%s\");\n",
		paramDecl, alwaysTrueID, alwaysTrueID, enclosing[0].Name, expr, a.Message))
}

// ConstantDefToCpp renders `static constexpr <kind> name = expr;`.
func ConstantDefToCpp(c lir.ConstantDef, enclosing []lir.TemplateArgDecl, w Writer) {
	var kind string
	switch c.Expr.ExprType().(type) {
	case lir.Bool:
		kind = "bool"
	case lir.Int64:
		kind = "int64_t"
	default:
		panic(fmt.Sprintf("cppemit: constant def of unsupported kind: %T", c.Expr.ExprType()))
	}
	w.WriteTemplateBodyElem(fmt.Sprintf("static constexpr %s %s = %s;\n", kind, c.Name, ExprToCpp(c.Expr, enclosing, w)))
}

// TypedefToCpp renders `using name = expr;` for a Type-kinded expression, or
// an alias template `template <...> using name = Expr<...>;` for a
// Template-kinded one, with fresh parameter names drawn from the writer.
func TypedefToCpp(td lir.Typedef, enclosing []lir.TemplateArgDecl, w Writer) {
	switch t := td.Expr.ExprType().(type) {
	case lir.TypeType:
		w.WriteTemplateBodyElem(fmt.Sprintf("using %s = %s;\n", td.Name, ExprToCpp(td.Expr, enclosing, w)))
	case lir.Template:
		args := make([]lir.TemplateArgDecl, len(t.ArgTypes))
		instArgs := make([]lir.Expr, len(t.ArgTypes))
		for i, at := range t.ArgTypes {
			args[i] = lir.TemplateArgDecl{Type: at, Name: w.NewID()}
			instArgs[i] = lir.NewLocalAtomicTypeLiteral(args[i].Name, at)
		}
		inst := lir.NewTemplateInstantiation(td.Expr, instArgs, true)
		w.WriteTemplateBodyElem(fmt.Sprintf("template <%s>\nusing %s = %s;\n",
			templateArgDeclsToCpp(args), td.Name, TemplateInstantiationToCpp(inst, enclosing, w, false)))
	default:
		panic(fmt.Sprintf("cppemit: typedef of unsupported kind: %T", td.Expr.ExprType()))
	}
}

// templateBodyElemToCpp dispatches one element of a specialization's body.
func templateBodyElemToCpp(e lir.TemplateBodyElem, enclosing []lir.TemplateArgDecl, w Writer) {
	switch e := e.(type) {
	case lir.StaticAssert:
		StaticAssertToCpp(e, enclosing, w)
	case lir.ConstantDef:
		ConstantDefToCpp(e, enclosing, w)
	case lir.Typedef:
		TypedefToCpp(e, enclosing, w)
	case lir.TemplateDefn:
		TemplateDefnToCpp(e, enclosing, w)
	default:
		panic(fmt.Sprintf("cppemit: unsupported template body element: %T", e))
	}
}

// templateSpecializationToCpp renders one `template <args> struct
// Name[<patterns>] { body };`. Body elements see the specialization's own
// parameter list as their enclosing args; the patterns see the outer one.
func templateSpecializationToCpp(s lir.TemplateSpecialization, cxxName string, enclosing []lir.TemplateArgDecl, w Writer) {
	elemWriter := w.CreateChildWriter()
	for _, e := range s.Body {
		templateBodyElemToCpp(e, s.Args, elemWriter)
	}
	body := indentBody(elemWriter.Strings)
	argsStr := templateArgDeclsToCpp(s.Args)

	if s.Patterns != nil {
		patterns := make([]string, len(s.Patterns))
		for i, p := range s.Patterns {
			patterns[i] = ExprToCpp(p, enclosing, w)
		}
		w.WriteTemplateBodyElem(fmt.Sprintf("template <%s>\nstruct %s<%s> {\n%s};\n",
			argsStr, cxxName, strings.Join(patterns, ", "), body))
	} else {
		w.WriteTemplateBodyElem(fmt.Sprintf("template <%s>\nstruct %s {\n%s};\n",
			argsStr, cxxName, body))
	}
}

// TemplateDefnForwardDecl writes `template <args> struct Name;`.
func TemplateDefnForwardDecl(d lir.TemplateDefn, w Writer) {
	w.WriteToplevelElem(fmt.Sprintf("template <%s>\nstruct %s;\n", templateArgDeclsToCpp(d.Args), d.Name))
}

// TemplateDefnToCpp renders the main definition and every specialization of
// one template.
func TemplateDefnToCpp(d lir.TemplateDefn, enclosing []lir.TemplateArgDecl, w Writer) {
	if d.MainDefinition != nil {
		if d.Description != "" {
			w.WriteToplevelElem("// " + d.Description + "\n")
		}
		templateSpecializationToCpp(*d.MainDefinition, d.Name, enclosing, w)
	}
	for _, s := range d.Specializations {
		if d.Description != "" {
			w.WriteToplevelElem("// " + d.Description + "\n")
		}
		templateSpecializationToCpp(s, d.Name, enclosing, w)
	}
}

// indentBody indents each line of the collected body strings by two spaces.
func indentBody(elems []string) string {
	var b strings.Builder
	for _, e := range elems {
		for _, line := range strings.SplitAfter(e, "\n") {
			if line == "" {
				continue
			}
			if line != "\n" {
				b.WriteString("  ")
			}
			b.WriteString(line)
		}
	}
	return b.String()
}
