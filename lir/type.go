// Package lir models IR-low: the template-oriented intermediate
// representation that sits directly above C++ code generation. Expressions
// correspond to C++ compile-time constructs; template-body elements to
// constant defs, typedefs and nested template definitions.
package lir

import "fmt"

// Type is a C++ template-parameter kind.
type Type interface {
	isType()
	String() string
}

// Bool is a non-type template parameter of kind bool.
type Bool struct{}

func (Bool) isType()        {}
func (Bool) String() string { return "bool" }

// Int64 is a non-type template parameter of kind int64_t.
type Int64 struct{}

func (Int64) isType()        {}
func (Int64) String() string { return "int64_t" }

// TypeType is the kind of a C++ type (a `typename` template parameter).
// Named TypeType (not Type) to avoid colliding with the Type interface.
type TypeType struct{}

func (TypeType) isType()        {}
func (TypeType) String() string { return "typename" }

// Template is the kind of a template template-parameter, e.g.
// `template <typename, bool> class`.
type Template struct {
	ArgTypes []Type
}

func (Template) isType() {}
func (t Template) String() string {
	s := "template<"
	for i, a := range t.ArgTypes {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ">"
}

// Variadic is the kind of a variadic type-template parameter pack
// (`typename...`).
type Variadic struct{}

func (Variadic) isType()        {}
func (Variadic) String() string { return "typename..." }

// TypesEqual is the structural-equality entry point for template-parameter
// kinds, a single switch like hir.TypesEqual.
func TypesEqual(a, b Type) bool {
	switch a := a.(type) {
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Int64:
		_, ok := b.(Int64)
		return ok
	case TypeType:
		_, ok := b.(TypeType)
		return ok
	case Variadic:
		_, ok := b.(Variadic)
		return ok
	case Template:
		bt, ok := b.(Template)
		if !ok || len(a.ArgTypes) != len(bt.ArgTypes) {
			return false
		}
		for i := range a.ArgTypes {
			if !TypesEqual(a.ArgTypes[i], bt.ArgTypes[i]) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("lir: unhandled Type: %T", a))
	}
}
