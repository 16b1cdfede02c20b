package hir

import (
	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// ElaborateTypeDecl elaborates a type annotation (function parameter, return
// type, or class field) into an HType. Annotations
// are restricted to what the allowed imports make available: bool, int,
// Type, List[X], Set[X], Callable[[X, ...], Y], and custom class names.
func ElaborateTypeDecl(node ast.Node, ctx *Context) Type {
	n, ok := node.(*ast.TypeAnnotation)
	if !ok {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, node.Pos(), "unsupported type annotation")
	}
	switch n.Name {
	case "bool":
		requireNoArgs(ctx, n)
		return Bool{}
	case "int":
		requireNoArgs(ctx, n)
		return Int{}
	case "Type":
		requireNoArgs(ctx, n)
		return TypeRef{}
	case "List":
		if len(n.Args) != 1 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "List[...] takes exactly one type argument")
		}
		return List{ElaborateTypeDecl(n.Args[0], ctx)}
	case "Set":
		if len(n.Args) != 1 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "Set[...] takes exactly one type argument")
		}
		return Set{ElaborateTypeDecl(n.Args[0], ctx)}
	case "Callable":
		if len(n.Args) != 2 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "Callable[[...], ...] takes an argument-type list and a return type")
		}
		argList := n.Args[0]
		args := make([]Type, len(argList.Args))
		for i, a := range argList.Args {
			args[i] = ElaborateTypeDecl(a, ctx)
		}
		ret := ElaborateTypeDecl(n.Args[1], ctx)
		return Function{Args: args, Ret: ret}
	default:
		requireNoArgs(ctx, n)
		entry, _ := ctx.LookupType(symbol.Intern(n.Name))
		if entry == nil {
			diag.Raise(diag.UndefinedName, ctx.Source, n.Position, "unknown type: %s", n.Name)
		}
		c, ok := entry.Type.(Custom)
		if !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Position, "%s does not name a type", n.Name)
		}
		return c
	}
}

func requireNoArgs(ctx *Context, n *ast.TypeAnnotation) {
	if len(n.Args) != 0 {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "%s does not take type arguments", n.Name)
	}
}
