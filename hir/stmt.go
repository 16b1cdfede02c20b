package hir

import (
	"text/scanner"

	"github.com/grailbio/tmppyc/symbol"
)

// Stmt is the IR-high statement interface.
type Stmt interface {
	Pos() scanner.Position
}

type stmtBase struct {
	Position scanner.Position
}

func (s stmtBase) Pos() scanner.Position { return s.Position }

// Assign is `name = expr`.
type Assign struct {
	stmtBase
	Name symbol.ID
	Expr Expr
}

// UnpackingAssign destructures a list of known length at runtime. The
// generated lowering is expected to fire a diagnostic, embedding MsgTemplate
// with the source location, if the runtime length does not match
// len(Names).
type UnpackingAssign struct {
	stmtBase
	Names       []symbol.ID
	Expr        Expr
	MsgTemplate string
}

// Return is `return expr`; a bare `return` is rejected during elaboration,
// so Value is never nil.
type Return struct {
	stmtBase
	Value Expr
}

// If is `if Cond: Body else: Orelse`.
type If struct {
	stmtBase
	Cond   Expr
	Body   []Stmt
	Orelse []Stmt
}

// Raise is `raise Exc`, where Exc has an exception Custom type.
type Raise struct {
	stmtBase
	Exc Expr
}

// TryExcept is `try: Body except T as Name: Handler`, permitted only at the
// outermost level of a function body.
type TryExcept struct {
	stmtBase
	Body        []Stmt
	ExcType     Custom
	HandlerName symbol.ID
	Handler     []Stmt
}

// Assert is `assert Test, Msg`. RenderedMsg is the fully-formatted runtime
// diagnostic string (filename, line, escaped message, escaped source line);
// the message part is empty if no message literal was supplied.
type Assert struct {
	stmtBase
	Test        Expr
	RenderedMsg string
}
