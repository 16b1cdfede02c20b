package hir

import "github.com/grailbio/tmppyc/symbol"

// FunctionDef is a fully elaborated top-level function.
type FunctionDef struct {
	Name       symbol.ID
	Params     []symbol.ID
	ParamTypes []Type
	ReturnType Type
	Body       []Stmt
	MayThrow   bool
	IsPublic   bool
}

// Module is the fully elaborated compilation unit: every class, function
// and top-level statement of the input. Whether a function is exposed by
// the generated C++ header is recorded in its FunctionDef.IsPublic.
type Module struct {
	Classes   []Custom
	Functions []FunctionDef
	TopLevel  []Stmt
}
