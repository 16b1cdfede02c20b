package hir

import (
	"github.com/grailbio/tmppyc/ast"
	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// elaborateMatch handles `match(e1, ..., en)(lambda v1, ..., vk: {
// (p1_1, ..., p1_n): r1, ... })`. matchCall is the inner `match(...)` call;
// outerCall is the full expression, whose sole argument must be a lambda
// whose body is a dict literal of pattern/result pairs.
func elaborateMatch(matchCall *ast.Call, outerCall *ast.Call, ctx *Context, inPattern bool, cvr CheckVarRef) Expr {
	if inPattern {
		diag.Raise(diag.UnsupportedBuiltinUsage, ctx.Source, outerCall.Position, "match(...) is not allowed in match patterns")
	}
	checkNoKeywords(ctx, matchCall, "match")
	checkNoKeywords(ctx, outerCall, "match")
	if len(matchCall.Args) == 0 {
		diag.Raise(diag.WrongArity, ctx.Source, matchCall.Position, "match() requires at least one matched expression")
	}
	if len(outerCall.Args) != 1 {
		diag.Raise(diag.MatchShape, ctx.Source, outerCall.Position, "match(...) must be called with exactly one lambda argument")
	}
	lambda, ok := outerCall.Args[0].(*ast.Lambda)
	if !ok {
		diag.Raise(diag.MatchShape, ctx.Source, outerCall.Args[0].Pos(), "match(...) must be called with a lambda literal")
	}
	dict, ok := lambda.Body.(*ast.DictLit)
	if !ok {
		diag.Raise(diag.MatchShape, ctx.Source, lambda.Pos(), "the match lambda's body must be a dict literal of {pattern: result, ...}")
	}

	matched := make([]Expr, len(matchCall.Args))
	for i, a := range matchCall.Args {
		matched[i] = ElaborateExpr(a, ctx, inPattern, cvr)
		if _, ok := matched[i].ExprType().(TypeRef); !ok {
			diag.Raise(diag.TypeMismatch, ctx.Source, a.Pos(), "every matched expression in match(...) must have type Type, got %s", matched[i].ExprType().String())
		}
	}
	arity := len(matchCall.Args)

	params := make([]symbol.ID, len(lambda.Params))
	for i, p := range lambda.Params {
		params[i] = symbol.Intern(p)
	}

	var resultType Type
	var mainDefnSeen bool
	branches := make([]MatchBranch, len(dict.Entries))
	used := make([]bool, len(params))

	for bi, entry := range dict.Entries {
		var patternNodes []ast.Node
		if tup, ok := entry.Key.(*ast.Tuple); ok {
			patternNodes = tup.Elts
		} else {
			patternNodes = []ast.Node{entry.Key}
		}
		if len(patternNodes) != arity {
			diag.Raise(diag.MatchShape, ctx.Source, entry.Key.Pos(),
				"pattern arity (%d) does not match the number of matched expressions (%d)", len(patternNodes), arity)
		}

		// Each branch introduces its own scope binding the lambda params so
		// patterns can reference them and the result can reference only the
		// ones actually used in this branch's patterns.
		ctx.ChildScope("")
		branchUsedIdx := map[int]bool{}
		isMainDefn := true
		for _, pn := range patternNodes {
			paramIdx := -1
			if name, ok := pn.(*ast.Name); ok {
				for i, p := range lambda.Params {
					if p == name.Id {
						paramIdx = i
						break
					}
				}
			}
			if paramIdx < 0 {
				isMainDefn = false
			}
		}
		// Bind every lambda param as TypeRef in the branch scope so pattern
		// elaboration of bare-name patterns resolves as var refs, and so the
		// result expression can reference used params.
		for _, p := range params {
			ctx.Add(entry.Key.Pos(), p, TypeRef{}, false, false)
		}
		usedIdx := map[int]bool{}
		patterns := make([]Expr, len(patternNodes))
		for i, pn := range patternNodes {
			patterns[i] = ElaborateExpr(pn, ctx, true, func(nm *ast.Name) {
				for pi, p := range lambda.Params {
					if p == nm.Id {
						usedIdx[pi] = true
						branchUsedIdx[pi] = true
						used[pi] = true
					}
				}
			})
			if _, ok := patterns[i].ExprType().(TypeRef); !ok {
				diag.Raise(diag.TypeMismatch, ctx.Source, pn.Pos(), "match pattern expressions must have type Type, got %s", patterns[i].ExprType().String())
			}
		}

		result := ElaborateExpr(entry.Value, ctx, false, func(nm *ast.Name) {
			for pi, p := range lambda.Params {
				if p == nm.Id && !usedIdx[pi] {
					diag.Raise(diag.MatchShape, ctx.Source, nm.Position,
						"the lambda parameter %s is referenced by the result of a branch whose patterns do not use it", nm.Id)
				}
			}
		})
		ctx.PopScope()

		if resultType == nil {
			resultType = result.ExprType()
		} else if !TypesEqual(resultType, result.ExprType()) {
			diag.Raise(diag.MatchShape, ctx.Source, entry.Value.Pos(),
				"all match branches must have the same result type; expected %s, got %s", resultType.String(), result.ExprType().String())
		}

		if isMainDefn {
			if mainDefnSeen {
				diag.Raise(diag.MatchShape, ctx.Source, entry.Key.Pos(), "at most one match branch may be the main (catch-all) definition")
			}
			mainDefnSeen = true
		}

		usedList := make([]int, 0, len(branchUsedIdx))
		for i := range params {
			if branchUsedIdx[i] {
				usedList = append(usedList, i)
			}
		}
		branches[bi] = MatchBranch{Patterns: patterns, Result: result, Used: usedList, IsMainDefn: isMainDefn}
	}

	for i, u := range used {
		if !u {
			diag.Raise(diag.MatchShape, ctx.Source, lambda.Pos(), "The lambda argument %s was not used in any pattern", lambda.Params[i])
		}
	}

	return MatchExpr{exprBase{outerCall.Position, resultType}, matched, params, branches}
}
