package hir

import (
	"regexp"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
)

// elaborateCall dispatches a Call node by the syntactic shape of its
// callee: builtin recognition never resolves a symbol, it sniffs the
// callee's shape first.
func elaborateCall(n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if outer, ok := n.Func.(*ast.Call); ok {
		if name, ok := outer.Func.(*ast.Name); ok && name.Id == "match" {
			return elaborateMatch(outer, n, ctx, inPattern, cvr)
		}
	}
	if name, ok := n.Func.(*ast.Name); ok {
		switch name.Id {
		case "Type":
			return elaborateTypeLiteral(n, ctx, inPattern)
		case "empty_list":
			return elaborateEmptyContainer(n, ctx, inPattern, "empty_list", func(t Type) Type { return List{t} })
		case "empty_set":
			return elaborateEmptyContainer(n, ctx, inPattern, "empty_set", func(t Type) Type { return Set{t} })
		case "sum":
			return elaborateSum(n, ctx, inPattern, cvr)
		case "all":
			return elaborateAll(n, ctx, inPattern, cvr)
		case "any":
			return elaborateAny(n, ctx, inPattern, cvr)
		case "match":
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "match(...) must be immediately called with a lambda: match(...)( lambda ...: {...} )")
		}
	}
	if attr, ok := n.Func.(*ast.Attribute); ok {
		if recv, ok := attr.Value.(*ast.Name); ok && recv.Id == "Type" {
			return elaborateTypeBuiltin(attr, n, ctx, inPattern, cvr)
		}
	}
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "function calls are not allowed in match patterns")
	}
	return elaborateFunctionCall(n, ctx, inPattern, cvr)
}

func elaborateFunctionCall(n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	checkNoKeywords(ctx, n, "function")
	callee := ElaborateExpr(n.Func, ctx, inPattern, cvr)
	ft, ok := callee.ExprType().(Function)
	if !ok {
		diag.Raise(diag.NotCallable, ctx.Source, n.Position, "expression of type %s is not callable", callee.ExprType().String())
	}
	if len(n.Args) != len(ft.Args) {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "function takes %d argument(s), got %d", len(ft.Args), len(n.Args))
	}
	args := make([]Expr, len(n.Args))
	mayThrow := false
	if vr, ok := callee.(VarRef); ok {
		mayThrow = vr.MayThrow
	}
	for i, a := range n.Args {
		args[i] = ElaborateExpr(a, ctx, inPattern, cvr)
		if !TypesEqual(args[i].ExprType(), ft.Args[i]) {
			diag.Raise(diag.TypeMismatch, ctx.Source, a.Pos(), "argument %d: expected %s, got %s", i+1, ft.Args[i].String(), args[i].ExprType().String())
		}
	}
	return FunctionCall{exprBase{n.Position, ft.Ret}, callee, args, mayThrow}
}

func elaborateTypeLiteral(n *ast.Call, ctx *Context, inPattern bool) Expr {
	checkNoKeywords(ctx, n, "Type")
	if len(n.Args) != 1 {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "Type() takes 1 argument, got %d", len(n.Args))
	}
	lit, ok := n.Args[0].(*ast.StrLit)
	if !ok {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[0].Pos(), "Type() requires a string literal argument")
	}
	checkAtomicType(ctx, n.Args[0], lit.Value)
	return AtomicTypeLit{exprBase{n.Position, TypeRef{}}, lit.Value}
}

// elaborateEmptyContainer handles empty_list(T)/empty_set(T). The argument
// is a type annotation (e.g. empty_list(bool), empty_set(Type)), not a value
// expression, so it goes through the type-declaration resolver.
func elaborateEmptyContainer(n *ast.Call, ctx *Context, inPattern bool, builtin string, wrap func(Type) Type) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "%s() is not allowed in match patterns", builtin)
	}
	checkNoKeywords(ctx, n, builtin)
	if len(n.Args) != 1 {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "%s() takes 1 argument, got %d", builtin, len(n.Args))
	}
	elemType := ElaborateTypeDecl(n.Args[0], ctx)
	return emptyContainerExpr{exprBase{n.Position, wrap(elemType)}}
}

// emptyContainerExpr represents empty_list(T)/empty_set(T); it carries no
// runtime value, only the statically-known container type.
type emptyContainerExpr struct{ exprBase }

func elaborateSum(n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "sum() is not allowed in match patterns")
	}
	checkNoKeywords(ctx, n, "sum")
	if len(n.Args) != 1 {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "sum() takes 1 argument, got %d", len(n.Args))
	}
	arg := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
	if !iterableOf(arg.ExprType(), Int{}) {
		reportIterableMismatch(ctx, n.Args[0], arg, "sum", "List[int] or Set[int]")
	}
	return SumExpr{exprBase{n.Position, Int{}}, arg}
}

func elaborateAll(n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "all() is not allowed in match patterns")
	}
	checkNoKeywords(ctx, n, "all")
	if len(n.Args) != 1 {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "all() takes 1 argument, got %d", len(n.Args))
	}
	arg := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
	if !iterableOf(arg.ExprType(), Bool{}) {
		reportIterableMismatch(ctx, n.Args[0], arg, "all", "List[bool] or Set[bool]")
	}
	return AllExpr{exprBase{n.Position, Bool{}}, arg}
}

func elaborateAny(n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "any() is not allowed in match patterns")
	}
	checkNoKeywords(ctx, n, "any")
	if len(n.Args) != 1 {
		diag.Raise(diag.WrongArity, ctx.Source, n.Position, "any() takes 1 argument, got %d", len(n.Args))
	}
	arg := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
	if !iterableOf(arg.ExprType(), Bool{}) {
		reportIterableMismatch(ctx, n.Args[0], arg, "any", "List[bool] or Set[bool]")
	}
	return AnyExpr{exprBase{n.Position, Bool{}}, arg}
}

func iterableOf(t Type, elem Type) bool {
	switch t := t.(type) {
	case List:
		return TypesEqual(t.Elem, elem)
	case Set:
		return TypesEqual(t.Elem, elem)
	default:
		return false
	}
}

// reportIterableMismatch builds the diagnostic for sum/all/any's argument
// type check, attaching a "defined here" note when the argument is a plain
// variable reference.
//
// By the time we get here the argument expression already elaborated
// successfully, so a partially-defined VarRef would mean elaborateVarRef's
// own partial check was bypassed. That is an invariant violation, not a
// user error, and is reported as an internal error.
func reportIterableMismatch(ctx *Context, argNode ast.Node, arg Expr, builtin, wanted string) {
	var notes []diag.Note
	if vr, ok := arg.(VarRef); ok {
		entry, _ := ctx.Lookup(vr.Name)
		if entry == nil {
			diag.InternalError("%s(): resolved VarRef %s has no symbol table entry", builtin, vr.Name.Str())
		}
		if entry.PartiallyDefined {
			diag.InternalError("%s(): %s reached argument-type check while still partially defined", builtin, vr.Name.Str())
		}
		notes = append(notes, diag.Note{Pos: entry.DefNode, Message: vr.Name.Str() + " was defined here"})
	}
	e := diag.New(diag.TypeMismatch, ctx.Source, argNode.Pos(), "the argument of %s() must have type %s; got %s", builtin, wanted, arg.ExprType().String())
	e.Notes = notes
	panic(e)
}

// elaborateTypeBuiltin handles Type.pointer/reference/rvalue_reference/
// const/array/function/template_instantiation/template_member.
func elaborateTypeBuiltin(attr *ast.Attribute, n *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	// Type constructors stay legal inside match patterns: matching on type
	// structure is exactly what patterns are for. Only template_member is
	// pattern-banned below, alongside the restrictions ElaborateExpr applies.
	builtin := "Type." + attr.Attr
	switch attr.Attr {
	case "pointer", "reference", "rvalue_reference", "const", "array":
		checkNoKeywords(ctx, n, builtin)
		if len(n.Args) != 1 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "%s() takes 1 argument, got %d", builtin, len(n.Args))
		}
		elem := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
		if _, ok := elem.ExprType().(TypeRef); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Args[0].Pos(), "%s() requires a Type argument", builtin)
		}
		base := exprBase{n.Position, TypeRef{}}
		switch attr.Attr {
		case "pointer":
			return PointerTypeExpr{base, elem}
		case "reference":
			return ReferenceTypeExpr{base, elem}
		case "rvalue_reference":
			return RvalueReferenceTypeExpr{base, elem}
		case "const":
			return ConstTypeExpr{base, elem}
		default:
			return ArrayTypeExpr{base, elem}
		}
	case "function":
		checkNoKeywords(ctx, n, builtin)
		if len(n.Args) != 2 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "%s() takes 2 arguments (return type, [arg types]), got %d", builtin, len(n.Args))
		}
		ret := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
		if _, ok := ret.ExprType().(TypeRef); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Args[0].Pos(), "%s(): return type must be a Type", builtin)
		}
		argList, ok := n.Args[1].(*ast.List)
		if !ok {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[1].Pos(), "%s(): second argument must be a list literal of Type expressions", builtin)
		}
		args := make([]Expr, len(argList.Elts))
		for i, a := range argList.Elts {
			args[i] = ElaborateExpr(a, ctx, inPattern, cvr)
			if _, ok := args[i].ExprType().(TypeRef); !ok {
				diag.Raise(diag.TypeMismatch, ctx.Source, a.Pos(), "%s(): argument type %d must be a Type", builtin, i+1)
			}
		}
		return FunctionTypeExpr{exprBase{n.Position, TypeRef{}}, ret, args}
	case "template_instantiation":
		checkNoKeywords(ctx, n, builtin)
		if len(n.Args) != 2 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "%s() takes 2 arguments (name, [args]), got %d", builtin, len(n.Args))
		}
		nameLit, ok := n.Args[0].(*ast.StrLit)
		if !ok {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[0].Pos(), "%s(): first argument must be a string literal", builtin)
		}
		checkAtomicType(ctx, n.Args[0], nameLit.Value)
		argList, ok := n.Args[1].(*ast.List)
		if !ok {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[1].Pos(), "%s(): second argument must be a list literal", builtin)
		}
		args := make([]Expr, len(argList.Elts))
		for i, a := range argList.Elts {
			args[i] = ElaborateExpr(a, ctx, inPattern, cvr)
			if _, ok := args[i].ExprType().(TypeRef); !ok {
				diag.Raise(diag.TypeMismatch, ctx.Source, a.Pos(), "%s(): argument %d must be a Type", builtin, i+1)
			}
		}
		return TemplateInstantiationExpr{exprBase{n.Position, TypeRef{}}, nameLit.Value, args}
	case "template_member":
		if inPattern {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "%s() is not allowed in match patterns", builtin)
		}
		checkNoKeywords(ctx, n, builtin)
		if len(n.Args) != 3 {
			diag.Raise(diag.WrongArity, ctx.Source, n.Position, "%s() takes 3 arguments (class, name, [args]), got %d", builtin, len(n.Args))
		}
		class := ElaborateExpr(n.Args[0], ctx, inPattern, cvr)
		if _, ok := class.ExprType().(TypeRef); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.Args[0].Pos(), "%s(): first argument must be a Type", builtin)
		}
		nameLit, ok := n.Args[1].(*ast.StrLit)
		if !ok {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[1].Pos(), "%s(): second argument must be a string literal naming a simple identifier", builtin)
		}
		if !simpleIdentifierRE.MatchString(nameLit.Value) {
			diag.Raise(diag.InvalidAtomicType, ctx.Source, n.Args[1].Pos(), "%s(): member name %q must be a simple identifier", builtin, nameLit.Value)
		}
		argList, ok := n.Args[2].(*ast.List)
		if !ok {
			diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Args[2].Pos(), "%s(): third argument must be a list literal", builtin)
		}
		args := make([]Expr, len(argList.Elts))
		for i, a := range argList.Elts {
			args[i] = ElaborateExpr(a, ctx, inPattern, cvr)
			if _, ok := args[i].ExprType().(TypeRef); !ok {
				diag.Raise(diag.TypeMismatch, ctx.Source, a.Pos(), "%s(): argument %d must be a Type", builtin, i+1)
			}
		}
		return TemplateMemberAccessExpr{exprBase{n.Position, TypeRef{}}, class, nameLit.Value, args}
	default:
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, n.Position, "unknown Type.%s() builtin", attr.Attr)
		panic("unreachable")
	}
}

// simpleIdentifierRE is stricter than atomicTypeNameRE: template-member
// names must be simple identifiers, no namespace qualification.
var simpleIdentifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
