package cppemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/tmppyc/lir"
)

// ExprToCpp renders expr as a C++ expression fragment. The handful of node
// kinds with a direct textual rendering are handled here; every other kind
// (atomic literals, type modifiers, template instantiations, member access)
// goes through the declarator prefix/suffix machinery in typeexpr.go,
// wrapped in a fresh ExprWriter.
func ExprToCpp(expr lir.Expr, enclosing []lir.TemplateArgDecl, w Writer) string {
	switch e := expr.(type) {
	case lir.BoolLiteral, lir.Int64Literal:
		return literalToCpp(e)
	case lir.Comparison:
		return fmt.Sprintf("(%s) %s (%s)",
			ExprToCpp(e.Left, enclosing, w), e.Op, ExprToCpp(e.Right, enclosing, w))
	case lir.Int64BinOp:
		return fmt.Sprintf("(%s) %s (%s)",
			ExprToCpp(e.Left, enclosing, w), e.Op, ExprToCpp(e.Right, enclosing, w))
	case lir.Not:
		return fmt.Sprintf("!(%s)", ExprToCpp(e.Operand, enclosing, w))
	case lir.UnaryMinus:
		return fmt.Sprintf("-(%s)", ExprToCpp(e.Operand, enclosing, w))
	default:
		ew := NewExprWriter(w)
		TypeExprToCpp(expr, enclosing, ew)
		return strings.Join(ew.Fragments, "")
	}
}

func literalToCpp(expr lir.Expr) string {
	switch v := expr.(type) {
	case lir.BoolLiteral:
		if v.Value {
			return "true"
		}
		return "false"
	case lir.Int64Literal:
		return strconv.FormatInt(v.Value, 10) + "LL"
	default:
		panic(fmt.Sprintf("cppemit: literalToCpp: unexpected expr: %T", expr))
	}
}
