package hir_test

import (
	"testing"
	"text/scanner"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/hir"
	"github.com/grailbio/tmppyc/symbol"
)

const testFile = "test.py"

func tpos(line, col int) scanner.Position {
	return scanner.Position{Filename: testFile, Line: line, Column: col}
}

func testSrc(lines ...string) diag.Source {
	return diag.Source{Filename: testFile, Lines: lines}
}

// funcCtx creates a context positioned inside a function body, the usual
// setting for expression and statement tests.
func funcCtx(src diag.Source) *hir.Context {
	ctx := hir.NewContext(src)
	ctx.ChildScope("testfn")
	return ctx
}

func nm(id string) *ast.Name              { return &ast.Name{Position: tpos(1, 1), Id: id} }
func num(text string) *ast.NumberLit      { return &ast.NumberLit{Position: tpos(1, 1), Text: text} }
func boolLit(v bool) *ast.BoolLit         { return &ast.BoolLit{Position: tpos(1, 1), Value: v} }
func strLit(v string) *ast.StrLit         { return &ast.StrLit{Position: tpos(1, 1), Value: v} }
func listOf(elts ...ast.Node) *ast.List   { return &ast.List{Position: tpos(1, 1), Elts: elts} }
func setOf(elts ...ast.Node) *ast.Set     { return &ast.Set{Position: tpos(1, 1), Elts: elts} }
func tupleOf(elts ...ast.Node) *ast.Tuple { return &ast.Tuple{Position: tpos(1, 1), Elts: elts} }

func callOf(fn ast.Node, args ...ast.Node) *ast.Call {
	return &ast.Call{Position: tpos(1, 1), Func: fn, Args: args}
}

func attrOf(value ast.Node, attr string) *ast.Attribute {
	return &ast.Attribute{Position: tpos(1, 1), Value: value, Attr: attr}
}

func annot(name string, args ...*ast.TypeAnnotation) *ast.TypeAnnotation {
	return &ast.TypeAnnotation{Position: tpos(1, 1), Name: name, Args: args}
}

func assignStmt(target string, rhs ast.Node) *ast.Assign {
	return &ast.Assign{Position: tpos(1, 1), LHS: ast.Target{Position: tpos(1, 1), Name: target}, RHS: rhs}
}

func returnStmt(value ast.Node) *ast.Return {
	return &ast.Return{Position: tpos(1, 1), Value: value}
}

// typeCall builds Type("name").
func typeCall(cppName string) *ast.Call {
	return callOf(nm("Type"), strLit(cppName))
}

// matchCall builds match(matched...)(lambda params...: {entries}).
func matchCall(matched []ast.Node, params []string, entries []ast.DictEntry) *ast.Call {
	return &ast.Call{
		Position: tpos(1, 1),
		Func:     callOf(nm("match"), matched...),
		Args: []ast.Node{&ast.Lambda{
			Position: tpos(1, 1),
			Params:   params,
			Body:     &ast.DictLit{Position: tpos(1, 1), Entries: entries},
		}},
	}
}

// compileErr runs f and requires that it raises a CompilationError.
func compileErr(t *testing.T, f func()) *diag.CompilationError {
	t.Helper()
	err := diag.Recover(f)
	require.Error(t, err)
	ce, ok := err.(*diag.CompilationError)
	require.True(t, ok, "expected *diag.CompilationError, got %T: %v", err, err)
	return ce
}

func intern(s string) symbol.ID { return symbol.Intern(s) }
