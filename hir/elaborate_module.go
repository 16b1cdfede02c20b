package hir

import (
	"strings"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

var allowedImports = map[string]map[string]bool{
	"tmppy":  {"Type": true, "empty_list": true, "empty_set": true, "match": true},
	"typing": {"List": true, "Set": true, "Callable": true},
}

// ElaborateModule elaborates an entire compilation unit in two passes:
// pass 1 registers imports, classes and function signatures (so forward
// references between top-level functions resolve); pass 2 elaborates
// function bodies and top-level statements.
func ElaborateModule(mod *ast.Module, ctx *Context) Module {
	type pendingFunc struct {
		node       *ast.FunctionDef
		name       symbol.ID
		params     []symbol.ID
		paramTypes []Type
		returnType *Type // nil if inferred in pass 2
		mayThrow   bool
	}
	var pending []*pendingFunc
	var classes []Custom

	for _, node := range mod.Body {
		switch n := node.(type) {
		case *ast.Import:
			checkImport(ctx, n)
		case *ast.ClassDef:
			// A class is both a callable constructor (value table) and a type
			// (type table). The value entry goes in first; Add rejects any
			// name already present in the type table.
			c := ElaborateClass(n, ctx)
			ctx.Add(n.Position, c.Name, Function{Args: fieldTypes(c), Ret: c}, false, false)
			ctx.AddType(n.Position, c.Name, c)
			classes = append(classes, c)
		case *ast.FunctionDef:
			name := symbol.Intern(n.Name)
			params := make([]symbol.ID, len(n.Args))
			paramTypes := make([]Type, len(n.Args))
			for i, a := range n.Args {
				if a.Annotation == nil {
					diag.Raise(diag.UnsupportedSyntax, ctx.Source, a.Position, "function %s: parameter %s must have a type annotation", n.Name, a.Name)
				}
				params[i] = symbol.Intern(a.Name)
				paramTypes[i] = ElaborateTypeDecl(a.Annotation, ctx)
			}
			pf := &pendingFunc{node: n, name: name, params: params, paramTypes: paramTypes, mayThrow: astMayThrow(n.Body)}
			if n.Returns != nil {
				// Bound with may_throw=true: the body hasn't been analyzed
				// yet, so pass 1 must assume the worst.
				rt := ElaborateTypeDecl(n.Returns, ctx)
				pf.returnType = &rt
				ctx.Add(n.Position, name, Function{Args: paramTypes, Ret: rt}, false, true)
			} else {
				ctx.RecordPartialFunction(n.Position, name)
			}
			pending = append(pending, pf)
		case *ast.Assign, *ast.Assert:
			// handled in pass 2, in file order, so forward references to
			// functions declared later in the file still resolve.
		default:
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, node.Pos(), "unsupported top-level statement")
		}
	}

	byNode := map[*ast.FunctionDef]*pendingFunc{}
	for _, pf := range pending {
		byNode[pf.node] = pf
	}

	out := Module{Classes: classes}

	for _, node := range mod.Body {
		switch n := node.(type) {
		case *ast.FunctionDef:
			pf := byNode[n]
			Debugf(n, "elaborating function body")
			ctx.ChildScope(n.Name)
			for i, p := range pf.params {
				ctx.Add(n.Position, p, pf.paramTypes[i], false, false)
			}
			var expected *Type
			if pf.returnType != nil {
				expected = pf.returnType
			}
			body, ret, _ := ElaborateBlock(n.Body, ctx, expected, true, true)
			ctx.PopScope()

			var returnType Type
			if pf.returnType != nil {
				returnType = *pf.returnType
			} else {
				if ret == nil {
					// The body passed the must-return check without a
					// concrete return, so every path raises: the function
					// diverges.
					returnType = Bottom{}
				} else {
					returnType = ret.Type
				}
				ctx.CompletePartialFunction(pf.name, Function{Args: pf.paramTypes, Ret: returnType})
			}

			out.Functions = append(out.Functions, FunctionDef{
				Name:       pf.name,
				Params:     pf.params,
				ParamTypes: pf.paramTypes,
				ReturnType: returnType,
				Body:       body,
				MayThrow:   pf.mayThrow,
				IsPublic:   !strings.HasPrefix(n.Name, "_"),
			})
		case *ast.Assign:
			out.TopLevel = append(out.TopLevel, elaborateAssign(n, ctx))
		case *ast.Assert:
			out.TopLevel = append(out.TopLevel, elaborateAssert(n, ctx))
		}
	}

	return out
}

func checkImport(ctx *Context, n *ast.Import) {
	allowed, ok := allowedImports[n.Module]
	if !ok {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "import of module %q is not supported; only 'tmppy' and 'typing' may be imported from", n.Module)
	}
	if len(n.Names) == 0 {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "bare 'import %s' is not supported; use 'from %s import ...'", n.Module, n.Module)
	}
	for _, name := range n.Names {
		if !allowed[name] {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "%s does not export %s", n.Module, name)
		}
	}
}

func fieldTypes(c Custom) []Type {
	ts := make([]Type, len(c.Fields))
	for i, f := range c.Fields {
		ts[i] = f.Type
	}
	return ts
}

// astMayThrow reports whether any raise statement is reachable anywhere in
// body, a conservative over-approximation used to mark call sites as
// potentially-throwing.
func astMayThrow(body []ast.Node) bool {
	for _, s := range body {
		switch n := s.(type) {
		case *ast.Raise:
			return true
		case *ast.If:
			if astMayThrow(n.Body) || astMayThrow(n.Orelse) {
				return true
			}
		case *ast.Try:
			if astMayThrow(n.Body) || astMayThrow(n.Handler) {
				return true
			}
		}
	}
	return false
}
