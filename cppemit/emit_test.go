package cppemit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/tmppyc/cppemit"
	"github.com/grailbio/tmppyc/lir"
)

// boolNegationHeader models the lowering of `def f(x: bool) -> bool: return
// not x`.
func boolNegationHeader() lir.Header {
	main := lir.TemplateSpecialization{
		Args: []lir.TemplateArgDecl{{Type: lir.Bool{}, Name: "x"}},
		Body: []lir.TemplateBodyElem{
			lir.ConstantDef{Name: "value", Expr: lir.NewNot(lir.NewLocalAtomicTypeLiteral("x", lir.Bool{}))},
		},
	}
	return lir.Header{
		TemplateDefns: []lir.TemplateDefn{
			lir.NewTemplateDefn("f", main.Args, &main, nil, "", []string{"value"}),
		},
		PublicNames: []string{"f"},
	}
}

func TestEmitBoolNegation(t *testing.T) {
	out, err := cppemit.EmitHeader(boolNegationHeader(), lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Equal(t,
		"#include <tmppy/tmppy.h>\n"+
			"#include <type_traits>\n"+
			"template <bool x>\n"+
			"struct f;\n"+
			"template <bool x>\n"+
			"struct f {\n"+
			"  static constexpr bool value = !(x);\n"+
			"};\n",
		out)
}

func TestEmitToplevelAssert(t *testing.T) {
	// `assert 2 + 3 == 5` lowers to a top-level static_assert carrying the
	// source snippet.
	h := lir.Header{
		ToplevelContent: []lir.TemplateBodyElem{
			lir.StaticAssert{
				Expr: lir.NewComparison("==",
					lir.NewInt64BinOp("+", lir.NewInt64Literal(2), lir.NewInt64Literal(3)),
					lir.NewInt64Literal(5)),
				Message: `test.py:1: TMPPy assertion failed: \nassert 2 + 3 == 5`,
			},
		},
	}
	out, err := cppemit.EmitHeader(h, lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Equal(t,
		"#include <tmppy/tmppy.h>\n"+
			"#include <type_traits>\n"+
			`static_assert(((2LL) + (3LL)) == (5LL), "test.py:1: TMPPy assertion failed: \nassert 2 + 3 == 5");`+"\n",
		out)
}

func TestEmitSpecializations(t *testing.T) {
	// A match lowers to a main definition plus a partial specialization.
	args := []lir.TemplateArgDecl{{Type: lir.TypeType{}, Name: "T"}}
	main := lir.TemplateSpecialization{
		Args: args,
		Body: []lir.TemplateBodyElem{
			lir.ConstantDef{Name: "value", Expr: lir.NewBoolLiteral(false)},
		},
	}
	spec := lir.TemplateSpecialization{
		Args:     args,
		Patterns: []lir.Expr{lir.NewPointerTypeExpr(lir.NewLocalAtomicTypeLiteral("T", lir.TypeType{}))},
		Body: []lir.TemplateBodyElem{
			lir.ConstantDef{Name: "value", Expr: lir.NewBoolLiteral(true)},
		},
	}
	h := lir.Header{
		TemplateDefns: []lir.TemplateDefn{
			lir.NewTemplateDefn("is_pointer", args, &main, []lir.TemplateSpecialization{spec}, "is_pointer", []string{"value"}),
		},
		PublicNames: []string{"is_pointer"},
	}
	out, err := cppemit.EmitHeader(h, lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Contains(t, out, "// is_pointer\n")
	assert.Contains(t, out,
		"template <typename T>\n"+
			"struct is_pointer {\n"+
			"  static constexpr bool value = false;\n"+
			"};\n")
	assert.Contains(t, out,
		"template <typename T>\n"+
			"struct is_pointer<T*> {\n"+
			"  static constexpr bool value = true;\n"+
			"};\n")
}

func TestEmitTemplateKindedTypedef(t *testing.T) {
	// A Template-kinded typedef becomes an alias template with fresh
	// parameter names.
	h := lir.Header{
		ToplevelContent: []lir.TemplateBodyElem{
			lir.Typedef{
				Name: "apply",
				Expr: lir.NewNonlocalAtomicTypeLiteral("G", lir.Template{ArgTypes: []lir.Type{lir.TypeType{}}}, false),
			},
		},
	}
	out, err := cppemit.EmitHeader(h, lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Contains(t, out, "template <typename Id0>\nusing apply = G<Id0>;\n")
}

func TestEmitDependencyOrder(t *testing.T) {
	// A references B, so B's full definition is emitted first even though A
	// is declared first.
	mkDefn := func(name string, body lir.TemplateBodyElem) lir.TemplateDefn {
		main := lir.TemplateSpecialization{
			Args: []lir.TemplateArgDecl{{Type: lir.TypeType{}, Name: "T"}},
			Body: []lir.TemplateBodyElem{body},
		}
		return lir.NewTemplateDefn(name, main.Args, &main, nil, "", []string{"type"})
	}
	aBody := lir.Typedef{Name: "type", Expr: lir.NewClassMemberAccess(
		lir.NewTemplateInstantiation(
			lir.NewNonlocalAtomicTypeLiteral("B", lir.Template{ArgTypes: []lir.Type{lir.TypeType{}}}, false),
			[]lir.Expr{lir.NewLocalAtomicTypeLiteral("T", lir.TypeType{})},
			false),
		"type", lir.TypeType{})}
	bBody := lir.Typedef{Name: "type", Expr: lir.NewLocalAtomicTypeLiteral("T", lir.TypeType{})}
	h := lir.Header{
		TemplateDefns: []lir.TemplateDefn{mkDefn("A", aBody), mkDefn("B", bBody)},
		PublicNames:   []string{"A", "B"},
	}
	out, err := cppemit.EmitHeader(h, lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "struct B {"), strings.Index(out, "struct A {"))
	// Forward declarations still precede both definitions.
	assert.Less(t, strings.Index(out, "struct A;"), strings.Index(out, "struct B {"))
}

func TestEmitDeterminism(t *testing.T) {
	build := func() lir.Header {
		h := boolNegationHeader()
		h.ToplevelContent = append(h.ToplevelContent, lir.Typedef{
			Name: "apply",
			Expr: lir.NewNonlocalAtomicTypeLiteral("G", lir.Template{ArgTypes: []lir.Type{lir.TypeType{}, lir.Bool{}}}, false),
		})
		return h
	}
	a, err := cppemit.EmitHeader(build(), lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	b, err := cppemit.EmitHeader(build(), lir.NewCounterGenerator("Id"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
