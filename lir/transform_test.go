package lir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/tmppyc/lir"
)

func localType(name string) lir.AtomicTypeLiteral {
	return lir.NewLocalAtomicTypeLiteral(name, lir.TypeType{})
}

func nonlocalTemplate(name string, argTypes ...lir.Type) lir.AtomicTypeLiteral {
	return lir.NewNonlocalAtomicTypeLiteral(name, lir.Template{ArgTypes: argTypes}, false)
}

func TestCounterGeneratorDeterminism(t *testing.T) {
	g := lir.NewCounterGenerator("Id")
	assert.Equal(t, "Id0", g.Next())
	assert.Equal(t, "Id1", g.Next())

	h := lir.NewCounterGenerator("Id")
	assert.Equal(t, "Id0", h.Next())
}

func TestNewConstantOrTypedef(t *testing.T) {
	w := lir.NewToplevelWriter(lir.NewCounterGenerator("Id"))

	ref := lir.NewConstantOrTypedef(w, lir.NewBoolLiteral(true))
	assert.Equal(t, "Id0", ref.CppName)
	assert.Equal(t, lir.Bool{}, ref.ExprType())
	require.Len(t, w.Elements, 1)
	cd, ok := w.Elements[0].(lir.ConstantDef)
	require.True(t, ok)
	assert.Equal(t, "Id0", cd.Name)

	ref = lir.NewConstantOrTypedef(w, localType("T"))
	assert.Equal(t, "Id1", ref.CppName)
	require.Len(t, w.Elements, 2)
	_, ok = w.Elements[1].(lir.Typedef)
	assert.True(t, ok)
}

func TestTemplateBodyWriterForwarding(t *testing.T) {
	top := lir.NewToplevelWriter(lir.NewCounterGenerator("Id"))
	body := top.CreateChildWriter()

	body.WriteTemplateBodyElem(lir.ConstantDef{Name: "value", Expr: lir.NewBoolLiteral(true)})
	body.WriteToplevelElem(lir.Typedef{Name: "helper", Expr: localType("T")})

	require.Len(t, body.Elements, 1)
	require.Len(t, top.Elements, 1)
	_, ok := top.Elements[0].(lir.Typedef)
	assert.True(t, ok)
}

func TestExprWriterForwarding(t *testing.T) {
	top := lir.NewToplevelWriter(lir.NewCounterGenerator("Id"))
	body := top.CreateChildWriter()
	ew := lir.NewExprWriter(body)

	ew.WriteExprFragment("G<")
	ew.WriteExprFragment("int>")
	ew.WriteTemplateBodyElem(lir.ConstantDef{Name: "value", Expr: lir.NewBoolLiteral(false)})

	assert.Equal(t, []string{"G<", "int>"}, ew.Fragments)
	require.Len(t, body.Elements, 1)
	assert.Empty(t, top.Elements)
}

func sampleHeader() lir.Header {
	inst := lir.NewTemplateInstantiation(
		nonlocalTemplate("G", lir.TypeType{}),
		[]lir.Expr{localType("T")},
		true)
	main := lir.TemplateSpecialization{
		Args: []lir.TemplateArgDecl{{Type: lir.TypeType{}, Name: "T"}},
		Body: []lir.TemplateBodyElem{
			lir.Typedef{Name: "type", Expr: inst},
			lir.ConstantDef{Name: "value", Expr: lir.NewBoolLiteral(true)},
		},
	}
	defn := lir.NewTemplateDefn("f",
		[]lir.TemplateArgDecl{{Type: lir.TypeType{}, Name: "T"}},
		&main, nil, "f", []string{"type", "value"})
	return lir.Header{
		TemplateDefns: []lir.TemplateDefn{defn},
		ToplevelContent: []lir.TemplateBodyElem{
			lir.StaticAssert{Expr: lir.NewBoolLiteral(true), Message: "always"},
		},
		PublicNames: []string{"f"},
	}
}

func TestTransformHeaderIdentity(t *testing.T) {
	h := sampleHeader()
	out := lir.TransformHeader(h, &lir.ExprTransformer{}, lir.NewCounterGenerator("Id"))
	assert.Equal(t, h.PublicNames, out.PublicNames)
	assert.Equal(t, h.TemplateDefns, out.TemplateDefns)
	assert.Equal(t, h.ToplevelContent, out.ToplevelContent)
}

func TestTransformHeaderInjection(t *testing.T) {
	// Hoist every template instantiation into a fresh typedef; the injected
	// typedef must land in the same template body, before its use.
	transformer := &lir.ExprTransformer{}
	transformer.TransformTemplateInstantiation = func(e lir.TemplateInstantiation, w lir.Writer) lir.Expr {
		return lir.NewConstantOrTypedef(w, e)
	}

	out := lir.TransformHeader(sampleHeader(), transformer, lir.NewCounterGenerator("Id"))
	require.Len(t, out.TemplateDefns, 1)
	body := out.TemplateDefns[0].MainDefinition.Body
	require.Len(t, body, 3)

	injected, ok := body[0].(lir.Typedef)
	require.True(t, ok)
	assert.Equal(t, "Id0", injected.Name)
	_, ok = injected.Expr.(lir.TemplateInstantiation)
	assert.True(t, ok)

	rewritten, ok := body[1].(lir.Typedef)
	require.True(t, ok)
	assert.Equal(t, "type", rewritten.Name)
	ref, ok := rewritten.Expr.(lir.AtomicTypeLiteral)
	require.True(t, ok)
	assert.Equal(t, "Id0", ref.CppName)

	assert.Equal(t, []string{"f"}, out.PublicNames)
}

func TestTransformHeaderDeterminism(t *testing.T) {
	transformer := &lir.ExprTransformer{}
	transformer.TransformTemplateInstantiation = func(e lir.TemplateInstantiation, w lir.Writer) lir.Expr {
		return lir.NewConstantOrTypedef(w, e)
	}
	a := lir.TransformHeader(sampleHeader(), transformer, lir.NewCounterGenerator("Id"))
	b := lir.TransformHeader(sampleHeader(), transformer, lir.NewCounterGenerator("Id"))
	assert.Equal(t, a, b)
}

func TestComparisonInvariants(t *testing.T) {
	assert.Panics(t, func() {
		lir.NewComparison("<", lir.NewBoolLiteral(true), lir.NewBoolLiteral(false))
	})
	assert.Panics(t, func() {
		lir.NewComparison("==", lir.NewBoolLiteral(true), lir.NewInt64Literal(1))
	})
	assert.NotPanics(t, func() {
		lir.NewComparison("<=", lir.NewInt64Literal(1), lir.NewInt64Literal(2))
	})
}

func TestTemplateInstantiationArity(t *testing.T) {
	assert.Panics(t, func() {
		lir.NewTemplateInstantiation(nonlocalTemplate("G", lir.TypeType{}, lir.TypeType{}),
			[]lir.Expr{localType("T")}, false)
	})
	assert.NotPanics(t, func() {
		lir.NewTemplateInstantiation(nonlocalTemplate("G", lir.Variadic{}),
			[]lir.Expr{localType("A"), localType("B")}, false)
	})
}

func TestTemplateDefnInvariant(t *testing.T) {
	assert.Panics(t, func() {
		lir.NewTemplateDefn("f", nil, nil, nil, "", nil)
	})
}

func TestReferencesAnyOf(t *testing.T) {
	names := map[string]bool{"T": true}
	assert.True(t, localType("T").ReferencesAnyOf(names))
	assert.False(t, localType("U").ReferencesAnyOf(names))
	// Nonlocal names never count as references to template parameters.
	assert.False(t, lir.NewNonlocalAtomicTypeLiteral("T", lir.TypeType{}, false).ReferencesAnyOf(names))

	inst := lir.NewTemplateInstantiation(nonlocalTemplate("G", lir.TypeType{}),
		[]lir.Expr{lir.NewPointerTypeExpr(localType("T"))}, false)
	assert.True(t, inst.ReferencesAnyOf(names))
}
