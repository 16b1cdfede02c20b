package hir

import (
	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
)

// Elaborate is the front end's public entry point: it runs the two-pass
// module elaborator over mod and returns either the fully typed module or the
// first compilation error, converted from the internal panic-based reporting
// by diag.Recover.
func Elaborate(mod *ast.Module, src diag.Source) (m *Module, err error) {
	err = diag.Recover(func() {
		ctx := NewContext(src)
		elaborated := ElaborateModule(mod, ctx)
		m = &elaborated
	})
	if err != nil {
		m = nil
	}
	return m, err
}
