package hir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/hir"
)

func funcDef(name string, args []ast.Arg, returns ast.Node, body ...ast.Node) *ast.FunctionDef {
	return &ast.FunctionDef{Position: tpos(1, 1), Name: name, Args: args, Returns: returns, Body: body}
}

func arg(name string, annotation ast.Node) ast.Arg {
	return ast.Arg{Position: tpos(1, 1), Name: name, Annotation: annotation}
}

func selfAssign(field string, rhs ast.Node) *ast.Assign {
	return &ast.Assign{
		Position: tpos(1, 1),
		LHS:      ast.Target{Position: tpos(1, 1), Object: "self", Attr: field},
		RHS:      rhs,
	}
}

// exceptionClass builds `class name(Exception)` with the given message and no
// fields.
func exceptionClass(name, message string) *ast.ClassDef {
	return &ast.ClassDef{
		Position: tpos(1, 1),
		Name:     name,
		Base:     "Exception",
		Body: []ast.Node{
			funcDef("__init__", []ast.Arg{arg("self", nil)}, nil, selfAssign("message", strLit(message))),
		},
	}
}

func TestInferredReturnType(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		funcDef("f", []ast.Arg{arg("x", annot("bool"))}, nil,
			returnStmt(&ast.UnaryOp{Position: tpos(1, 1), Op: "not", Operand: nm("x")})),
	}}
	m, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	f := m.Functions[0]
	assert.Equal(t, hir.Bool{}, f.ReturnType)
	assert.Equal(t, []hir.Type{hir.Bool{}}, f.ParamTypes)
	assert.True(t, f.IsPublic)
	assert.False(t, f.MayThrow)
}

func TestUnderscoreNamesArePrivate(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		funcDef("_helper", nil, annot("int"), returnStmt(num("1"))),
	}}
	m, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)
	assert.False(t, m.Functions[0].IsPublic)
}

func TestUndeclaredRecursion(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		funcDef("f", []ast.Arg{arg("x", annot("int"))}, nil,
			returnStmt(callOf(nm("f"), &ast.BinOp{Position: tpos(1, 1), Left: nm("x"), Right: num("1"), Op: "-"}))),
	}}
	_, err := hir.Elaborate(mod, testSrc())
	require.Error(t, err)
	ce := err.(*diag.CompilationError)
	assert.Equal(t, "Recursive function references are only allowed if the return type is declared explicitly", ce.Message)
}

func TestDeclaredRecursion(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		funcDef("f", []ast.Arg{arg("x", annot("int"))}, annot("int"),
			returnStmt(callOf(nm("f"), &ast.BinOp{Position: tpos(1, 1), Left: nm("x"), Right: num("1"), Op: "-"}))),
	}}
	_, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)
}

func TestForwardReference(t *testing.T) {
	// A call to a later-defined function resolves when the callee's return
	// type is declared...
	mod := &ast.Module{Body: []ast.Node{
		funcDef("a", nil, annot("int"), returnStmt(callOf(nm("b")))),
		funcDef("b", nil, annot("int"), returnStmt(num("1"))),
	}}
	_, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)

	// ...but not when it would need the not-yet-inferred return type.
	mod = &ast.Module{Body: []ast.Node{
		funcDef("a", nil, annot("int"), returnStmt(callOf(nm("b")))),
		funcDef("b", nil, nil, returnStmt(num("1"))),
	}}
	_, err = hir.Elaborate(mod, testSrc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "return type not yet determined")
}

func TestDivergingFunctionHasBottomType(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		exceptionClass("Oops", "always fails"),
		funcDef("fail", nil, nil, &ast.Raise{Position: tpos(1, 1), Exc: callOf(nm("Oops"))}),
	}}
	m, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)
	require.Len(t, m.Functions, 1)
	assert.Equal(t, hir.Bottom{}, m.Functions[0].ReturnType)
	assert.True(t, m.Functions[0].MayThrow)
}

func TestExceptionFlow(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		exceptionClass("E", "oops"),
		funcDef("g", nil, annot("int"),
			&ast.Raise{Position: tpos(1, 1), Exc: callOf(nm("E"))}),
		funcDef("h", nil, annot("int"),
			&ast.Try{
				Position:    tpos(1, 1),
				Body:        []ast.Node{returnStmt(callOf(nm("g")))},
				ExcType:     nm("E"),
				HandlerName: "e",
				Handler:     []ast.Node{returnStmt(num("0"))},
			}),
	}}
	m, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)

	require.Len(t, m.Classes, 1)
	assert.True(t, m.Classes[0].IsException)
	assert.Equal(t, "oops", m.Classes[0].Message)

	require.Len(t, m.Functions, 2)
	g := m.Functions[0]
	assert.Equal(t, "g", g.Name.Str())
	assert.True(t, g.MayThrow)

	h := m.Functions[1]
	tryStmt, ok := h.Body[0].(hir.TryExcept)
	require.True(t, ok)
	assert.Equal(t, intern("E"), tryStmt.ExcType.Name)
	assert.Equal(t, intern("e"), tryStmt.HandlerName)
}

func TestCatchingNonExceptionRejected(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		funcDef("g", nil, annot("int"),
			&ast.Try{
				Position:    tpos(1, 1),
				Body:        []ast.Node{returnStmt(num("1"))},
				ExcType:     nm("g"),
				HandlerName: "e",
				Handler:     []ast.Node{returnStmt(num("0"))},
			}),
	}}
	_, err := hir.Elaborate(mod, testSrc())
	require.Error(t, err)
	assert.Equal(t, diag.InvalidException, err.(*diag.CompilationError).Kind)
}

func TestImports(t *testing.T) {
	ok := &ast.Module{Body: []ast.Node{
		&ast.Import{Position: tpos(1, 1), Module: "tmppy", Names: []string{"Type", "empty_list", "match"}},
		&ast.Import{Position: tpos(1, 1), Module: "typing", Names: []string{"List", "Set", "Callable"}},
	}}
	_, err := hir.Elaborate(ok, testSrc())
	require.NoError(t, err)

	bad := &ast.Module{Body: []ast.Node{
		&ast.Import{Position: tpos(1, 1), Module: "os", Names: []string{"path"}},
	}}
	_, err = hir.Elaborate(bad, testSrc())
	require.Error(t, err)

	wrongName := &ast.Module{Body: []ast.Node{
		&ast.Import{Position: tpos(1, 1), Module: "tmppy", Names: []string{"Sequence"}},
	}}
	_, err = hir.Elaborate(wrongName, testSrc())
	require.Error(t, err)

	bare := &ast.Module{Body: []ast.Node{
		&ast.Import{Position: tpos(1, 1), Module: "tmppy"},
	}}
	_, err = hir.Elaborate(bare, testSrc())
	require.Error(t, err)
}

func TestTopLevelAssert(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		&ast.Assert{
			Position: tpos(1, 1),
			Test: &ast.Compare{
				Position: tpos(1, 1),
				Left:     &ast.BinOp{Position: tpos(1, 1), Left: num("2"), Right: num("3"), Op: "+"},
				Right:    num("5"),
				Op:       "==",
			},
		},
	}}
	m, err := hir.Elaborate(mod, testSrc("assert 2 + 3 == 5"))
	require.NoError(t, err)
	require.Len(t, m.TopLevel, 1)
	a := m.TopLevel[0].(hir.Assert)
	assert.Contains(t, a.RenderedMsg, "TMPPy assertion failed")
	assert.Contains(t, a.RenderedMsg, "assert 2 + 3 == 5")
}

func TestClassWithFields(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		&ast.ClassDef{
			Position: tpos(1, 1),
			Name:     "Pair",
			Body: []ast.Node{
				funcDef("__init__",
					[]ast.Arg{arg("self", nil), arg("first", annot("int")), arg("second", annot("bool"))},
					nil,
					selfAssign("second", nm("second")),
					selfAssign("first", nm("first"))),
			},
		},
		// The class name is callable as its constructor and usable as an
		// annotation.
		funcDef("mk", nil, annot("Pair"), returnStmt(callOf(nm("Pair"), num("1"), boolLit(true)))),
		funcDef("get", []ast.Arg{arg("p", annot("Pair"))}, annot("int"), returnStmt(attrOf(nm("p"), "first"))),
	}}
	m, err := hir.Elaborate(mod, testSrc())
	require.NoError(t, err)
	require.Len(t, m.Classes, 1)
	c := m.Classes[0]
	assert.False(t, c.IsException)
	require.Len(t, c.Fields, 2)
	assert.Equal(t, intern("first"), c.Fields[0].Name)
	assert.Equal(t, hir.Int{}, c.Fields[0].Type)
}

func TestClassValidation(t *testing.T) {
	tests := []struct {
		name string
		cls  *ast.ClassDef
	}{
		{
			"missing init",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C"},
		},
		{
			"first param not self",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("me", nil)}, nil),
			}},
		},
		{
			"missing annotation",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("self", nil), arg("x", nil)}, nil, selfAssign("x", nm("x"))),
			}},
		},
		{
			"exception without message",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Base: "Exception", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("self", nil)}, nil),
			}},
		},
		{
			"field assigned twice",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("self", nil), arg("x", annot("int"))}, nil,
					selfAssign("x", nm("x")), selfAssign("x", nm("x"))),
			}},
		},
		{
			"field never assigned",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("self", nil), arg("x", annot("int"))}, nil),
			}},
		},
		{
			"unsupported base class",
			&ast.ClassDef{Position: tpos(1, 1), Name: "C", Base: "object", Body: []ast.Node{
				funcDef("__init__", []ast.Arg{arg("self", nil)}, nil),
			}},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := hir.Elaborate(&ast.Module{Body: []ast.Node{test.cls}}, testSrc())
			require.Error(t, err)
		})
	}
}

func TestUnsupportedTopLevelStatement(t *testing.T) {
	mod := &ast.Module{Body: []ast.Node{
		&ast.Raise{Position: tpos(1, 1), Exc: num("1")},
	}}
	_, err := hir.Elaborate(mod, testSrc())
	require.Error(t, err)
	assert.Equal(t, diag.UnsupportedSyntax, err.(*diag.CompilationError).Kind)
}
