package lir

import "strconv"

// IdentifierGenerator produces an unbounded stream of fresh, distinct C++
// identifiers for synthesized declarations.
type IdentifierGenerator interface {
	Next() string
}

// CounterGenerator is the default IdentifierGenerator: a deterministic,
// prefix-and-counter based source, so two runs over the same input produce
// byte-identical output.
type CounterGenerator struct {
	prefix string
	next   int
}

func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix}
}

func (g *CounterGenerator) Next() string {
	id := g.prefix + strconv.Itoa(g.next)
	g.next++
	return id
}

// Writer is the visitor-with-context-injection abstraction the
// transformation framework is built on: a rewriting pass can add new
// top-level declarations or new template-body elements alongside the node
// it's currently producing, without threading extra return values through
// every recursive call.
type Writer interface {
	NewID() string
	WriteToplevelElem(e TemplateBodyElem)
	WriteTemplateBodyElem(e TemplateBodyElem)
	CreateChildWriter() *TemplateBodyWriter
	ToplevelWriter() *ToplevelWriter
}

// ToplevelWriter accumulates the header's top-level content: template
// definitions and the toplevel static_asserts/constants/typedefs that don't
// belong to any template body.
type ToplevelWriter struct {
	idGen    IdentifierGenerator
	Elements []TemplateBodyElem
}

func NewToplevelWriter(idGen IdentifierGenerator) *ToplevelWriter {
	return &ToplevelWriter{idGen: idGen}
}

func (w *ToplevelWriter) NewID() string { return w.idGen.Next() }
func (w *ToplevelWriter) WriteToplevelElem(e TemplateBodyElem) {
	w.Elements = append(w.Elements, e)
}
func (w *ToplevelWriter) WriteTemplateBodyElem(e TemplateBodyElem) { w.WriteToplevelElem(e) }
func (w *ToplevelWriter) CreateChildWriter() *TemplateBodyWriter {
	return &TemplateBodyWriter{toplevel: w}
}
func (w *ToplevelWriter) ToplevelWriter() *ToplevelWriter { return w }

// TemplateBodyWriter accumulates the body of one template specialization;
// anything that isn't itself body content (a sibling top-level
// declaration synthesized mid-rewrite) is forwarded up to the enclosing
// ToplevelWriter.
type TemplateBodyWriter struct {
	toplevel *ToplevelWriter
	Elements []TemplateBodyElem
}

func (w *TemplateBodyWriter) NewID() string                        { return w.toplevel.NewID() }
func (w *TemplateBodyWriter) WriteToplevelElem(e TemplateBodyElem) { w.toplevel.WriteToplevelElem(e) }
func (w *TemplateBodyWriter) WriteTemplateBodyElem(e TemplateBodyElem) {
	w.Elements = append(w.Elements, e)
}
func (w *TemplateBodyWriter) CreateChildWriter() *TemplateBodyWriter {
	return &TemplateBodyWriter{toplevel: w.toplevel}
}
func (w *TemplateBodyWriter) ToplevelWriter() *ToplevelWriter { return w.toplevel }

// ExprWriter builds a single C++ expression fragment by fragment; any
// toplevel or template-body elements synthesized while building the
// expression (e.g. a deferred-evaluation helper template) are forwarded to
// the parent writer.
type ExprWriter struct {
	parent    Writer
	Fragments []string
}

func NewExprWriter(parent Writer) *ExprWriter { return &ExprWriter{parent: parent} }

func (w *ExprWriter) NewID() string                            { return w.parent.NewID() }
func (w *ExprWriter) WriteToplevelElem(e TemplateBodyElem)     { w.parent.WriteToplevelElem(e) }
func (w *ExprWriter) WriteTemplateBodyElem(e TemplateBodyElem) { w.parent.WriteTemplateBodyElem(e) }
func (w *ExprWriter) WriteExprFragment(s string)               { w.Fragments = append(w.Fragments, s) }
func (w *ExprWriter) CreateChildWriter() *TemplateBodyWriter {
	panic("lir: ExprWriter has no child template-body writer")
}
func (w *ExprWriter) ToplevelWriter() *ToplevelWriter { return w.parent.ToplevelWriter() }

// NewConstantOrTypedef allocates a fresh identifier, writes a ConstantDef
// (for Bool/Int64-kinded exprs) or a Typedef (for TypeType/Template-kinded
// exprs) into w, and returns an AtomicTypeLiteral referring to it.
func NewConstantOrTypedef(w Writer, expr Expr) AtomicTypeLiteral {
	name := w.NewID()
	switch expr.ExprType().(type) {
	case Bool, Int64:
		w.WriteTemplateBodyElem(ConstantDef{Name: name, Expr: expr})
	case TypeType, Template:
		w.WriteTemplateBodyElem(Typedef{Name: name, Expr: expr})
	default:
		panic("lir: NewConstantOrTypedef: unsupported expression type")
	}
	return NewLocalAtomicTypeLiteral(name, expr.ExprType())
}

// ExprTransformer rewrites an IR-low expression tree. Each Transform* hook
// may be nil, in which case the default behaviour recursively transforms
// the node's children and rebuilds a shallow copy — "each method
// reconstructs a shallow copy with transformed children".
// Override a hook to special-case one node kind; every other kind still
// gets the recursive default.
type ExprTransformer struct {
	TransformAtomicTypeLiteral     func(e AtomicTypeLiteral, w Writer) Expr
	TransformTemplateInstantiation func(e TemplateInstantiation, w Writer) Expr
	TransformClassMemberAccess     func(e ClassMemberAccess, w Writer) Expr
}

// TransformHeader runs the transformer over a whole Header: every template
// definition, then every top-level element, in declaration order. Elements
// injected through the writers during the rewrite land next to the node that
// synthesized them. PublicNames are preserved verbatim, and a deterministic
// identifier generator makes the whole rewrite deterministic.
func TransformHeader(h Header, t *ExprTransformer, idGen IdentifierGenerator) Header {
	w := NewToplevelWriter(idGen)
	for _, d := range h.TemplateDefns {
		w.WriteToplevelElem(t.TransformTemplateDefn(d, w))
	}
	for _, e := range h.ToplevelContent {
		w.WriteToplevelElem(t.TransformTemplateBodyElem(e, w))
	}
	out := Header{PublicNames: h.PublicNames}
	for _, e := range w.Elements {
		if d, ok := e.(TemplateDefn); ok {
			out.TemplateDefns = append(out.TemplateDefns, d)
		} else {
			out.ToplevelContent = append(out.ToplevelContent, e)
		}
	}
	return out
}

// TransformTemplateDefn rebuilds one template definition, transforming every
// specialization's patterns and body.
func (t *ExprTransformer) TransformTemplateDefn(d TemplateDefn, w Writer) TemplateDefn {
	var main *TemplateSpecialization
	if d.MainDefinition != nil {
		m := t.transformSpecialization(*d.MainDefinition, w)
		main = &m
	}
	var specializations []TemplateSpecialization
	for _, s := range d.Specializations {
		specializations = append(specializations, t.transformSpecialization(s, w))
	}
	return NewTemplateDefn(d.Name, d.Args, main, specializations, d.Description, d.ResultNames)
}

func (t *ExprTransformer) transformSpecialization(s TemplateSpecialization, w Writer) TemplateSpecialization {
	var patterns []Expr
	for _, p := range s.Patterns {
		patterns = append(patterns, t.Transform(p, w))
	}
	child := w.CreateChildWriter()
	for _, e := range s.Body {
		child.WriteTemplateBodyElem(t.TransformTemplateBodyElem(e, child))
	}
	return TemplateSpecialization{Args: s.Args, Patterns: patterns, Body: child.Elements}
}

// TransformTemplateBodyElem rebuilds one body element with transformed
// expressions.
func (t *ExprTransformer) TransformTemplateBodyElem(e TemplateBodyElem, w Writer) TemplateBodyElem {
	switch e := e.(type) {
	case StaticAssert:
		return StaticAssert{Expr: t.Transform(e.Expr, w), Message: e.Message}
	case ConstantDef:
		return ConstantDef{Name: e.Name, Expr: t.Transform(e.Expr, w)}
	case Typedef:
		return Typedef{Name: e.Name, Expr: t.Transform(e.Expr, w)}
	case TemplateDefn:
		return t.TransformTemplateDefn(e, w)
	default:
		panic("lir: TransformTemplateBodyElem: unhandled element type")
	}
}

// Transform rewrites expr, recursing into children first (post-order) and
// consulting the matching hook, if set, before falling back to identity
// reconstruction.
func (t *ExprTransformer) Transform(expr Expr, w Writer) Expr {
	switch e := expr.(type) {
	case BoolLiteral, Int64Literal:
		return expr
	case AtomicTypeLiteral:
		if t.TransformAtomicTypeLiteral != nil {
			return t.TransformAtomicTypeLiteral(e, w)
		}
		return e
	case PointerTypeExpr:
		return NewPointerTypeExpr(t.Transform(e.Elem, w))
	case ReferenceTypeExpr:
		return NewReferenceTypeExpr(t.Transform(e.Elem, w))
	case RvalueReferenceTypeExpr:
		return NewRvalueReferenceTypeExpr(t.Transform(e.Elem, w))
	case ConstTypeExpr:
		return NewConstTypeExpr(t.Transform(e.Elem, w))
	case ArrayTypeExpr:
		return NewArrayTypeExpr(t.Transform(e.Elem, w))
	case FunctionTypeExpr:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = t.Transform(a, w)
		}
		return NewFunctionTypeExpr(t.Transform(e.Ret, w), args)
	case Comparison:
		return NewComparison(e.Op, t.Transform(e.Left, w), t.Transform(e.Right, w))
	case Int64BinOp:
		return NewInt64BinOp(e.Op, t.Transform(e.Left, w), t.Transform(e.Right, w))
	case TemplateInstantiation:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = t.Transform(a, w)
		}
		rebuilt := NewTemplateInstantiation(t.Transform(e.Template, w), args, e.MayTriggerStaticAsserts)
		if t.TransformTemplateInstantiation != nil {
			return t.TransformTemplateInstantiation(rebuilt, w)
		}
		return rebuilt
	case ClassMemberAccess:
		rebuilt := NewClassMemberAccess(t.Transform(e.Class, w), e.Member, e.Type_)
		if t.TransformClassMemberAccess != nil {
			return t.TransformClassMemberAccess(rebuilt, w)
		}
		return rebuilt
	case Not:
		return NewNot(t.Transform(e.Operand, w))
	case UnaryMinus:
		return NewUnaryMinus(t.Transform(e.Operand, w))
	case VariadicTypeExpansion:
		return NewVariadicTypeExpansion(t.Transform(e.Operand, w))
	default:
		panic("lir: ExprTransformer: unhandled Expr type")
	}
}
