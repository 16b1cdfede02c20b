// Package hir implements the front-end elaboration stage: a type-checking
// and name-resolution pass that converts the surface ast.Module into a
// typed, explicit intermediate representation.
package hir

import (
	"strings"

	"github.com/grailbio/tmppyc/symbol"
)

// Type is the HType sum type: Bool, Int, TypeRef, Bottom, List, Set,
// Function, Custom. Equality is structural and is decided by the single
// TypesEqual entry point below, not by scattered type assertions.
type Type interface {
	isType()
	String() string
}

// Bool is the boolean type.
type Bool struct{}

func (Bool) isType()        {}
func (Bool) String() string { return "bool" }

// Int is the 64-bit signed integer type.
type Int struct{}

func (Int) isType()        {}
func (Int) String() string { return "int" }

// TypeRef is the opaque "a C++ type" value — a compile-time C++ type,
// manipulated but never introspected by the front end.
type TypeRef struct{}

func (TypeRef) isType()        {}
func (TypeRef) String() string { return "Type" }

// Bottom is the unreachable/diverging type: the type of an expression that
// is computed only along a path that never returns normally.
type Bottom struct{}

func (Bottom) isType()        {}
func (Bottom) String() string { return "<bottom>" }

// List is a homogeneous list type.
type List struct{ Elem Type }

func (List) isType()          {}
func (l List) String() string { return "List[" + l.Elem.String() + "]" }

// Set is a homogeneous set type.
type Set struct{ Elem Type }

func (Set) isType()          {}
func (s Set) String() string { return "Set[" + s.Elem.String() + "]" }

// Function is a callable signature.
type Function struct {
	Args []Type
	Ret  Type
}

func (Function) isType() {}
func (f Function) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + f.Ret.String()
}

// CustomField is one field of a Custom type.
type CustomField struct {
	Name symbol.ID
	Type Type
}

// Custom is a user-defined class type. For an exception class, Message is
// the string literal assigned to self.message in __init__.
type Custom struct {
	Name        symbol.ID
	Fields      []CustomField
	IsException bool
	Message     string
}

func (Custom) isType()          {}
func (c Custom) String() string { return c.Name.Str() }

// FieldType returns the type of field name and whether it exists.
func (c Custom) FieldType(name symbol.ID) (Type, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// TypesEqual is the single structural-equality entry point for HType, used
// throughout the front end wherever "same type" matters (assignment
// unification, match-branch result types, return-type unification).
func TypesEqual(a, b Type) bool {
	switch a := a.(type) {
	case Bool:
		_, ok := b.(Bool)
		return ok
	case Int:
		_, ok := b.(Int)
		return ok
	case TypeRef:
		_, ok := b.(TypeRef)
		return ok
	case Bottom:
		_, ok := b.(Bottom)
		return ok
	case List:
		bl, ok := b.(List)
		return ok && TypesEqual(a.Elem, bl.Elem)
	case Set:
		bs, ok := b.(Set)
		return ok && TypesEqual(a.Elem, bs.Elem)
	case Function:
		bf, ok := b.(Function)
		if !ok || len(a.Args) != len(bf.Args) || !TypesEqual(a.Ret, bf.Ret) {
			return false
		}
		for i := range a.Args {
			if !TypesEqual(a.Args[i], bf.Args[i]) {
				return false
			}
		}
		return true
	case Custom:
		bc, ok := b.(Custom)
		return ok && a.Name == bc.Name
	default:
		return false
	}
}

// structuralEqualitySupported reports whether values of t can be compared
// with == / != at all. Functions are never comparable. Sets of a
// structural-equality-supported element type are supported, EXCEPT sets of
// sets. The asymmetry between List[Set[T]] and Set[Set[T]] is deliberate:
// list equality recurses elementwise, set-of-set equality is rejected
// outright.
func structuralEqualitySupported(t Type) bool {
	switch t := t.(type) {
	case Bool, Int, TypeRef:
		return true
	case List:
		return structuralEqualitySupported(t.Elem)
	case Set:
		if _, isSet := t.Elem.(Set); isSet {
			return false
		}
		return structuralEqualitySupported(t.Elem)
	case Custom:
		for _, f := range t.Fields {
			if !structuralEqualitySupported(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
