package hir

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// ReturnInfo records the first concrete return statement seen while
// elaborating a block, for return-type inference and diagnostics.
type ReturnInfo struct {
	Type Type
	Pos  scanner.Position
}

// ElaborateBlock elaborates a sequence of statements.
// expectedReturnType may be nil when the enclosing function's return type is
// not known in advance (a function without a declared return type, whose
// return type is inferred from the block).
// mustReturn requires every live path through the block to end in a return;
// isTopLevelOfFunction permits try/except only at that level.
func ElaborateBlock(stmts []ast.Node, ctx *Context, expectedReturnType *Type, mustReturn, isTopLevelOfFunction bool) ([]Stmt, *ReturnInfo, bool) {
	var out []Stmt
	var ret *ReturnInfo
	alwaysReturns := false
	for _, s := range stmts {
		if alwaysReturns {
			diag.Raise(diag.Unreachable, ctx.Source, s.Pos(), "unreachable statement")
		}
		st, sRet, sAlwaysReturns := elaborateStmt(s, ctx, expectedReturnType, isTopLevelOfFunction)
		out = append(out, st)
		if sRet != nil {
			if ret == nil {
				ret = sRet
			} else if !TypesEqual(ret.Type, sRet.Type) {
				panic(diag.New(diag.ReturnTypeMismatch, ctx.Source, sRet.Pos,
					"return statement has type %s, but an earlier return in the same function has type %s", sRet.Type.String(), ret.Type.String()).
					WithNote(ret.Pos, "earlier return statement here"))
			}
			if expectedReturnType != nil {
				if !TypesEqual(*expectedReturnType, sRet.Type) {
					diag.Raise(diag.ReturnTypeMismatch, ctx.Source, sRet.Pos,
						"return statement has type %s, but the function's declared return type is %s", sRet.Type.String(), (*expectedReturnType).String())
				}
			}
		}
		if sAlwaysReturns {
			alwaysReturns = true
		}
	}
	if mustReturn && !alwaysReturns {
		pos := scanner.Position{}
		if len(stmts) > 0 {
			pos = stmts[len(stmts)-1].Pos()
		}
		diag.Raise(diag.ReturnMissing, ctx.Source, pos, "missing return statement: not all paths return a value")
	}
	return out, ret, alwaysReturns
}

// elaborateStmt elaborates one statement, returning it, the return-info it
// produced (if it is or contains a concrete return), and whether it always
// returns (diverges on every live path).
func elaborateStmt(node ast.Node, ctx *Context, expectedReturnType *Type, isTopLevelOfFunction bool) (Stmt, *ReturnInfo, bool) {
	switch n := node.(type) {
	case *ast.Assign:
		return elaborateAssign(n, ctx), nil, false
	case *ast.Return:
		return elaborateReturn(n, ctx)
	case *ast.If:
		return elaborateIf(n, ctx, expectedReturnType)
	case *ast.Raise:
		return elaborateRaise(n, ctx), nil, true
	case *ast.Try:
		return elaborateTry(n, ctx, expectedReturnType, isTopLevelOfFunction)
	case *ast.Assert:
		return elaborateAssert(n, ctx), nil, false
	default:
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, node.Pos(), "unsupported statement: %s", node.String())
		panic("unreachable")
	}
}

func elaborateAssign(n *ast.Assign, ctx *Context) Stmt {
	rhs := ElaborateExpr(n.RHS, ctx, false, nil)
	if len(n.LHS.Elts) > 0 {
		lt, ok := rhs.ExprType().(List)
		if !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, n.RHS.Pos(), "unpacking assignment requires a List value, got %s", rhs.ExprType().String())
		}
		names := make([]symbol.ID, len(n.LHS.Elts))
		for i, nm := range n.LHS.Elts {
			id := symbol.Intern(nm)
			names[i] = id
			ctx.Add(n.Position, id, lt.Elem, false, false)
		}
		msg := fmt.Sprintf("%s:%d: error: incorrect number of elements when unpacking into %d variables", ctx.Source.Filename, n.Position.Line, len(names))
		return UnpackingAssign{stmtBase{n.Position}, names, rhs, msg}
	}
	id := symbol.Intern(n.LHS.Name)
	ctx.Add(n.Position, id, rhs.ExprType(), false, false)
	return Assign{stmtBase{n.Position}, id, rhs}
}

func elaborateReturn(n *ast.Return, ctx *Context) (Stmt, *ReturnInfo, bool) {
	if n.Value == nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "bare 'return' is not supported; all functions must return a value")
	}
	val := ElaborateExpr(n.Value, ctx, false, nil)
	return Return{stmtBase{n.Position}, val}, &ReturnInfo{Type: val.ExprType(), Pos: n.Position}, true
}

func elaborateIf(n *ast.If, ctx *Context, expectedReturnType *Type) (Stmt, *ReturnInfo, bool) {
	cond := ElaborateExpr(n.Cond, ctx, false, nil)
	if _, ok := cond.ExprType().(Bool); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Cond.Pos(), "if condition must be bool, got %s", cond.ExprType().String())
	}

	bodyScope := ctx.ChildScope("")
	bodyStmts, bodyRet, bodyAlwaysReturns := ElaborateBlock(n.Body, ctx, expectedReturnType, false, false)
	ctx.PopScope()

	// An absent else branch joins as an empty scope that falls through, so
	// names assigned only in the then-branch merge as partially defined.
	var orelseStmts []Stmt
	var orelseRet *ReturnInfo
	orelseAlwaysReturns := false
	orelseScope := emptyBranchScope()
	if len(n.Orelse) > 0 {
		orelseScope = ctx.ChildScope("")
		orelseStmts, orelseRet, orelseAlwaysReturns = ElaborateBlock(n.Orelse, ctx, expectedReturnType, false, false)
		ctx.PopScope()
	}

	ctx.JoinDefinitions(bodyScope, orelseScope, bodyAlwaysReturns, orelseAlwaysReturns)

	var ret *ReturnInfo
	if bodyRet != nil {
		ret = bodyRet
	}
	if orelseRet != nil {
		if ret != nil && !TypesEqual(ret.Type, orelseRet.Type) {
			panic(diag.New(diag.ReturnTypeMismatch, ctx.Source, orelseRet.Pos,
				"return statement has type %s, but another branch returns %s", orelseRet.Type.String(), ret.Type.String()).
				WithNote(ret.Pos, "other return statement here"))
		}
		if ret == nil {
			ret = orelseRet
		}
	}

	alwaysReturns := bodyAlwaysReturns && len(n.Orelse) > 0 && orelseAlwaysReturns
	return If{stmtBase{n.Position}, cond, bodyStmts, orelseStmts}, ret, alwaysReturns
}

func elaborateRaise(n *ast.Raise, ctx *Context) Stmt {
	if n.Cause != nil {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "'raise ... from ...' is not supported")
	}
	exc := ElaborateExpr(n.Exc, ctx, false, nil)
	c, ok := exc.ExprType().(Custom)
	if !ok || !c.IsException {
		diag.Raise(diag.InvalidException, ctx.Source, n.Exc.Pos(), "raise target must be an exception type, got %s", exc.ExprType().String())
	}
	return Raise{stmtBase{n.Position}, exc}
}

func elaborateTry(n *ast.Try, ctx *Context, expectedReturnType *Type, isTopLevelOfFunction bool) (Stmt, *ReturnInfo, bool) {
	if !isTopLevelOfFunction {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "try/except is only permitted at the outermost level of a function body")
	}
	if n.ExcType == nil || n.HandlerName == "" {
		diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Position, "try/except requires exactly one handler of the form 'except T as name'")
	}

	excExpr := ElaborateExpr(n.ExcType, ctx, false, nil)
	excVal, ok := excExpr.(VarRef)
	var excType Custom
	if ok {
		if ct, ok := classTypeOf(ctx, excVal.Name); ok {
			excType = ct
		}
	}
	if excType.Name == symbol.Invalid || !excType.IsException {
		diag.Raise(diag.InvalidException, ctx.Source, n.ExcType.Pos(), "except clause must name an exception class")
	}

	bodyScope := ctx.ChildScope("")
	bodyStmts, bodyRet, bodyAlwaysReturns := ElaborateBlock(n.Body, ctx, expectedReturnType, false, false)
	ctx.PopScope()

	handlerScope := ctx.ChildScope("")
	handlerName := symbol.Intern(n.HandlerName)
	ctx.Add(n.Position, handlerName, excType, false, false)
	handlerStmts, handlerRet, handlerAlwaysReturns := ElaborateBlock(n.Handler, ctx, expectedReturnType, false, false)
	ctx.PopScope()

	// The caught-exception binding is scoped to the handler body; it must
	// not survive the join.
	delete(handlerScope.values, handlerName)

	ctx.JoinDefinitions(bodyScope, handlerScope, bodyAlwaysReturns, handlerAlwaysReturns)

	var ret *ReturnInfo
	if bodyRet != nil {
		ret = bodyRet
	} else if handlerRet != nil {
		ret = handlerRet
	}
	alwaysReturns := bodyAlwaysReturns && handlerAlwaysReturns
	return TryExcept{stmtBase{n.Position}, bodyStmts, excType, handlerName, handlerStmts}, ret, alwaysReturns
}

// classTypeOf resolves name as a custom-class constructor/type reference and
// returns its Custom type.
func classTypeOf(ctx *Context, name symbol.ID) (Custom, bool) {
	entry, _ := ctx.LookupType(name)
	if entry == nil {
		return Custom{}, false
	}
	c, ok := entry.Type.(Custom)
	return c, ok
}

// elaborateAssert builds the runtime-formatted diagnostic string:
// backslashes, double-quotes and newlines in the message are
// escaped, and the filename, line number and offending source line are
// embedded. If no message is supplied the empty string is used.
func elaborateAssert(n *ast.Assert, ctx *Context) Stmt {
	test := ElaborateExpr(n.Test, ctx, false, nil)
	if _, ok := test.ExprType().(Bool); !ok {
		diag.Raise(diag.TypeMismatch, ctx.Source, n.Test.Pos(), "assert condition must be bool, got %s", test.ExprType().String())
	}
	msg := ""
	if n.Msg != nil {
		lit, ok := n.Msg.(*ast.StrLit)
		if !ok {
			diag.Raise(diag.UnsupportedSyntax, ctx.Source, n.Msg.Pos(), "assert message must be a string literal")
		}
		msg = lit.Value
	}
	rendered := renderAssertMessage(ctx.Source.Filename, n.Position.Line, ctx.Source.Line(n.Position.Line), msg)
	return Assert{stmtBase{n.Position}, test, rendered}
}

func renderAssertMessage(filename string, line int, sourceLine, msg string) string {
	escape := func(s string) string {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		s = strings.ReplaceAll(s, "\n", `\n`)
		return s
	}
	// The rendered string is spliced verbatim into a C++ string literal, so
	// the separator newline must stay escaped too.
	return fmt.Sprintf(`%s:%d: TMPPy assertion failed: %s\n%s`, escape(filename), line, escape(msg), escape(sourceLine))
}
