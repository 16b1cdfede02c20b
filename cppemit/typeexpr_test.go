package cppemit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/tmppyc/cppemit"
	"github.com/grailbio/tmppyc/lir"
)

func atomic(name string) lir.AtomicTypeLiteral {
	return lir.NewNonlocalAtomicTypeLiteral(name, lir.TypeType{}, false)
}

func render(e lir.Expr) string {
	w := cppemit.NewToplevelWriter(lir.NewCounterGenerator("Id"))
	return cppemit.ExprToCpp(e, nil, w)
}

func TestReferenceCollapsing(t *testing.T) {
	// ref(ref(rref(T))) collapses to a single lvalue reference.
	e := lir.NewReferenceTypeExpr(lir.NewReferenceTypeExpr(lir.NewRvalueReferenceTypeExpr(atomic("int"))))
	assert.Equal(t, "int &", render(e))

	// rref(rref(T)) stays an rvalue reference.
	e2 := lir.NewRvalueReferenceTypeExpr(lir.NewRvalueReferenceTypeExpr(atomic("int")))
	assert.Equal(t, "int &&", render(e2))

	// Any & in the chain wins over &&.
	e3 := lir.NewRvalueReferenceTypeExpr(lir.NewReferenceTypeExpr(atomic("int")))
	assert.Equal(t, "int &", render(e3))
}

func TestSimpleModifiers(t *testing.T) {
	assert.Equal(t, "int*", render(lir.NewPointerTypeExpr(atomic("int"))))
	assert.Equal(t, "int const ", render(lir.NewConstTypeExpr(atomic("int"))))
	assert.Equal(t, "int[]", render(lir.NewArrayTypeExpr(atomic("int"))))
}

func TestFunctionTypeDeclarators(t *testing.T) {
	fn := lir.NewFunctionTypeExpr(atomic("int"), []lir.Expr{atomic("float")})
	assert.Equal(t, "int (float)", render(fn))

	// A pointer modifier applied to a function type wraps in parentheses.
	assert.Equal(t, "int(*) (float)", render(lir.NewPointerTypeExpr(fn)))

	// Nested function-pointer types build from the inside out:
	// a pointer to a function taking double and returning a pointer to a
	// function taking float and returning int.
	inner := lir.NewPointerTypeExpr(lir.NewFunctionTypeExpr(atomic("int"), []lir.Expr{atomic("float")}))
	outer := lir.NewPointerTypeExpr(lir.NewFunctionTypeExpr(inner, []lir.Expr{atomic("double")}))
	assert.Equal(t, "int(*(*) (double)) (float)", render(outer))
}

func TestFunctionTypeNoArgs(t *testing.T) {
	fn := lir.NewFunctionTypeExpr(atomic("void"), nil)
	assert.Equal(t, "void ()", render(fn))
}

func TestVariadicExpansion(t *testing.T) {
	pack := lir.NewLocalAtomicTypeLiteral("Ts", lir.Variadic{})
	assert.Equal(t, "Ts...", render(lir.NewVariadicTypeExpansion(pack)))
}

func TestTemplateParamDecl(t *testing.T) {
	assert.Equal(t, "bool", cppemit.TemplateParamDecl(lir.Bool{}))
	assert.Equal(t, "int64_t", cppemit.TemplateParamDecl(lir.Int64{}))
	assert.Equal(t, "typename", cppemit.TemplateParamDecl(lir.TypeType{}))
	assert.Equal(t, "typename...", cppemit.TemplateParamDecl(lir.Variadic{}))
	assert.Equal(t, "template <typename, bool> class",
		cppemit.TemplateParamDecl(lir.Template{ArgTypes: []lir.Type{lir.TypeType{}, lir.Bool{}}}))
}

func TestClassMemberAccess(t *testing.T) {
	inst := lir.NewTemplateInstantiation(
		lir.NewNonlocalAtomicTypeLiteral("G", lir.Template{ArgTypes: []lir.Type{lir.TypeType{}}}, false),
		[]lir.Expr{lir.NewLocalAtomicTypeLiteral("T", lir.TypeType{})},
		false)

	// A type member of a dependent class needs `typename`.
	typeMember := lir.NewClassMemberAccess(inst, "type", lir.TypeType{})
	assert.Equal(t, "typename G<T>::type", render(typeMember))

	// A constant member needs neither `typename` nor `template`.
	valueMember := lir.NewClassMemberAccess(inst, "value", lir.Bool{})
	assert.Equal(t, "G<T>::value", render(valueMember))

	// A template member used as the template of an instantiation needs both
	// `typename` and `template`.
	applyMember := lir.NewClassMemberAccess(
		lir.NewLocalAtomicTypeLiteral("T", lir.TypeType{}),
		"apply", lir.Template{ArgTypes: []lir.Type{lir.TypeType{}}})
	applied := lir.NewTemplateInstantiation(applyMember, []lir.Expr{atomic("int")}, false)
	assert.Equal(t, "typename T::template apply<int>", render(applied))

	// Chained member access omits `typename` on the inner link.
	chained := lir.NewClassMemberAccess(typeMember, "size", lir.Int64{})
	assert.Equal(t, "G<T>::type::size", render(chained))
}
