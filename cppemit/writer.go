package cppemit

import "github.com/grailbio/tmppyc/lir"

// Writer accumulates emitted C++ text. Unlike the lir transformation
// writers, which carry IR elements, these writers carry rendered strings:
// deferred-evaluation helpers synthesized mid-expression must land as
// finished text at the right nesting level.
type Writer interface {
	NewID() string
	WriteToplevelElem(s string)
	WriteTemplateBodyElem(s string)
	CreateChildWriter() *TemplateElemWriter
	ToplevelWriter() *ToplevelWriter
}

// ToplevelWriter collects the header's top-level output.
type ToplevelWriter struct {
	idGen   lir.IdentifierGenerator
	Strings []string
}

func NewToplevelWriter(idGen lir.IdentifierGenerator) *ToplevelWriter {
	return &ToplevelWriter{idGen: idGen}
}

func (w *ToplevelWriter) NewID() string                  { return w.idGen.Next() }
func (w *ToplevelWriter) WriteToplevelElem(s string)     { w.Strings = append(w.Strings, s) }
func (w *ToplevelWriter) WriteTemplateBodyElem(s string) { w.WriteToplevelElem(s) }
func (w *ToplevelWriter) CreateChildWriter() *TemplateElemWriter {
	return &TemplateElemWriter{toplevel: w}
}
func (w *ToplevelWriter) ToplevelWriter() *ToplevelWriter { return w }

// TemplateElemWriter collects the body of one template specialization;
// top-level output produced while rendering the body is forwarded up.
type TemplateElemWriter struct {
	toplevel *ToplevelWriter
	Strings  []string
}

func NewTemplateElemWriter(toplevel *ToplevelWriter) *TemplateElemWriter {
	return &TemplateElemWriter{toplevel: toplevel}
}

func (w *TemplateElemWriter) NewID() string              { return w.toplevel.NewID() }
func (w *TemplateElemWriter) WriteToplevelElem(s string) { w.toplevel.WriteToplevelElem(s) }
func (w *TemplateElemWriter) WriteTemplateBodyElem(s string) {
	w.Strings = append(w.Strings, s)
}
func (w *TemplateElemWriter) CreateChildWriter() *TemplateElemWriter {
	return &TemplateElemWriter{toplevel: w.toplevel}
}
func (w *TemplateElemWriter) ToplevelWriter() *ToplevelWriter { return w.toplevel }

// ExprWriter builds a single C++ expression fragment by fragment; any
// declarations synthesized while building the expression are forwarded to
// the parent writer.
type ExprWriter struct {
	parent    Writer
	Fragments []string
}

func NewExprWriter(parent Writer) *ExprWriter { return &ExprWriter{parent: parent} }

func (w *ExprWriter) NewID() string                  { return w.parent.NewID() }
func (w *ExprWriter) WriteToplevelElem(s string)     { w.parent.WriteToplevelElem(s) }
func (w *ExprWriter) WriteTemplateBodyElem(s string) { w.parent.WriteTemplateBodyElem(s) }
func (w *ExprWriter) WriteExprFragment(s string)     { w.Fragments = append(w.Fragments, s) }
func (w *ExprWriter) CreateChildWriter() *TemplateElemWriter {
	panic("cppemit: ExprWriter has no child template-body writer")
}
func (w *ExprWriter) ToplevelWriter() *ToplevelWriter { return w.parent.ToplevelWriter() }
