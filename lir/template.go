package lir

// TemplateBodyElem is one element of a template specialization's body, or
// of the header's top-level content.
type TemplateBodyElem interface {
	isTemplateBodyElem()
}

// StaticAssert is `static_assert(expr, "message");`.
type StaticAssert struct {
	Expr    Expr
	Message string
}

func (StaticAssert) isTemplateBodyElem() {}

// ConstantDef is `static constexpr <bool|int64_t> Name = Expr;`.
type ConstantDef struct {
	Name string
	Expr Expr
}

func (ConstantDef) isTemplateBodyElem() {}

// Typedef is `using Name = Expr;` (Type-kinded) or
// `template <...> using Name = Expr<...>;` (Template-kinded).
type Typedef struct {
	Name string
	Expr Expr
}

func (Typedef) isTemplateBodyElem() {}

// TemplateArgDecl is one parameter of a template's parameter list.
type TemplateArgDecl struct {
	Type Type
	Name string
}

// TemplateSpecialization is one `template <args> struct Name[<patterns>] {
// body };` definition. Patterns is nil for the (partial-specialization-free)
// main definition.
type TemplateSpecialization struct {
	Args     []TemplateArgDecl
	Patterns []Expr
	Body     []TemplateBodyElem
}

// TemplateDefn is a C++ class template, possibly with partial
// specializations (the lowering of a `match` expression). ResultNames lists
// the body members (e.g. "value", "error") downstream consumers read off an
// instantiation.
type TemplateDefn struct {
	Args            []TemplateArgDecl
	MainDefinition  *TemplateSpecialization
	Specializations []TemplateSpecialization
	Name            string
	Description     string
	ResultNames     []string
}

func (TemplateDefn) isTemplateBodyElem() {}

// NewTemplateDefn checks the structural invariant that a template definition
// carries at least one of a main definition or a specialization.
func NewTemplateDefn(name string, args []TemplateArgDecl, main *TemplateSpecialization, specializations []TemplateSpecialization, description string, resultNames []string) TemplateDefn {
	if main == nil && len(specializations) == 0 {
		panic("lir: TemplateDefn " + name + " has neither a main definition nor specializations")
	}
	return TemplateDefn{
		Args:            args,
		MainDefinition:  main,
		Specializations: specializations,
		Name:            name,
		Description:     description,
		ResultNames:     resultNames,
	}
}

// Header is the fully lowered compilation unit ready for C++ emission.
type Header struct {
	TemplateDefns   []TemplateDefn
	ToplevelContent []TemplateBodyElem // StaticAssert | ConstantDef | Typedef
	PublicNames     []string
}
