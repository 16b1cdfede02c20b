package cppemit

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/tmppyc/declorder"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/lir"
	"github.com/grailbio/tmppyc/symbol"
)

// HeaderToCpp renders a fully lowered header: the two includes, a forward
// declaration for every template, then the full template definitions in
// dependency order, then the top-level static asserts, constants and
// typedefs in their original order.
func HeaderToCpp(h lir.Header, idGen lir.IdentifierGenerator) string {
	log.Debug.Printf("cppemit: emitting header: %d template defn(s), %d toplevel elem(s)",
		len(h.TemplateDefns), len(h.ToplevelContent))
	w := NewToplevelWriter(idGen)
	w.WriteToplevelElem("#include <tmppy/tmppy.h>\n#include <type_traits>\n")

	for _, d := range h.TemplateDefns {
		TemplateDefnForwardDecl(d, w)
	}
	for _, d := range orderTemplateDefns(h.TemplateDefns) {
		TemplateDefnToCpp(d, nil, w)
	}
	for _, e := range h.ToplevelContent {
		switch e := e.(type) {
		case lir.StaticAssert:
			StaticAssertToCpp(e, nil, w)
		case lir.ConstantDef:
			ConstantDefToCpp(e, nil, w)
		case lir.Typedef:
			TypedefToCpp(e, nil, w)
		default:
			panic(fmt.Sprintf("cppemit: unexpected toplevel element: %T", e))
		}
	}
	return strings.Join(w.Strings, "")
}

// EmitHeader is the back end's public entry point, converting any
// compilation-error panic raised during emission into a returned error.
func EmitHeader(h lir.Header, idGen lir.IdentifierGenerator) (out string, err error) {
	err = diag.Recover(func() {
		out = HeaderToCpp(h, idGen)
	})
	if err != nil {
		out = ""
	}
	return out, err
}

// orderTemplateDefns sorts the full definitions so dependencies come first,
// for readability. Template definitions may be mutually recursive (the
// forward declarations make that legal), so a cyclic reference graph simply
// keeps the original order.
func orderTemplateDefns(defns []lir.TemplateDefn) []lir.TemplateDefn {
	if len(defns) <= 1 {
		return defns
	}
	byName := make(map[symbol.ID]lir.TemplateDefn, len(defns))
	sorter := declorder.New()
	for _, d := range defns {
		id := symbol.Intern(d.Name)
		byName[id] = d
		sorter.AddDecl(id)
	}
	for _, d := range defns {
		from := symbol.Intern(d.Name)
		forEachDefnReference(d, func(name string) {
			sorter.AddDependency(from, symbol.Intern(name))
		})
	}
	sorter.Sort()
	out := make([]lir.TemplateDefn, 0, len(defns))
	for _, id := range sorter.Decls() {
		out = append(out, byName[id])
	}
	return out
}

// forEachDefnReference calls f with the name of every nonlocal identifier
// referenced anywhere in d's patterns and bodies.
func forEachDefnReference(d lir.TemplateDefn, f func(name string)) {
	var visitExpr func(e lir.Expr)
	var visitElem func(e lir.TemplateBodyElem)
	var visitDefn func(d lir.TemplateDefn)
	visitExpr = func(e lir.Expr) {
		switch e := e.(type) {
		case lir.AtomicTypeLiteral:
			if !e.IsLocal {
				f(e.CppName)
			}
		case lir.PointerTypeExpr:
			visitExpr(e.Elem)
		case lir.ReferenceTypeExpr:
			visitExpr(e.Elem)
		case lir.RvalueReferenceTypeExpr:
			visitExpr(e.Elem)
		case lir.ConstTypeExpr:
			visitExpr(e.Elem)
		case lir.ArrayTypeExpr:
			visitExpr(e.Elem)
		case lir.FunctionTypeExpr:
			visitExpr(e.Ret)
			for _, a := range e.Args {
				visitExpr(a)
			}
		case lir.Comparison:
			visitExpr(e.Left)
			visitExpr(e.Right)
		case lir.Int64BinOp:
			visitExpr(e.Left)
			visitExpr(e.Right)
		case lir.TemplateInstantiation:
			visitExpr(e.Template)
			for _, a := range e.Args {
				visitExpr(a)
			}
		case lir.ClassMemberAccess:
			visitExpr(e.Class)
		case lir.Not:
			visitExpr(e.Operand)
		case lir.UnaryMinus:
			visitExpr(e.Operand)
		case lir.VariadicTypeExpansion:
			visitExpr(e.Operand)
		}
	}
	visitElem = func(e lir.TemplateBodyElem) {
		switch e := e.(type) {
		case lir.StaticAssert:
			visitExpr(e.Expr)
		case lir.ConstantDef:
			visitExpr(e.Expr)
		case lir.Typedef:
			visitExpr(e.Expr)
		case lir.TemplateDefn:
			visitDefn(e)
		}
	}
	visitSpec := func(s lir.TemplateSpecialization) {
		for _, p := range s.Patterns {
			visitExpr(p)
		}
		for _, e := range s.Body {
			visitElem(e)
		}
	}
	visitDefn = func(d lir.TemplateDefn) {
		if d.MainDefinition != nil {
			visitSpec(*d.MainDefinition)
		}
		for _, s := range d.Specializations {
			visitSpec(s)
		}
	}
	visitDefn(d)
}
