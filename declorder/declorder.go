// Package declorder performs toposort of emitted C++ template definitions.
// It is used to order full definitions after their dependencies so the
// generated header reads top-down, even though the forward declarations make
// any order compile.
//
// Thread compatible.
//
// Legal call sequence: New AddDecl* AddDependency* Sort Decls
package declorder

import (
	"github.com/grailbio/tmppyc/symbol"
	"v.io/x/lib/toposort"
)

// edge represents the fact that declaration "decl" references declaration
// "dependsOn", so "dependsOn" should appear first.
type edge struct{ decl, dependsOn symbol.ID }

// T is the main sorter object. Use New() to create the sorter.
type T struct {
	sorter     toposort.Sorter
	edgesAdded map[edge]bool

	declared    map[symbol.ID]bool
	declOrder   []symbol.ID // insertion order, the fallback when cyclic
	sortedDecls []symbol.ID // filled by Sort()
}

// New creates a new sorter.
func New() *T {
	return &T{
		edgesAdded: map[edge]bool{},
		declared:   map[symbol.ID]bool{},
	}
}

// AddDecl registers a declaration in source order. Registration order is the
// tie-break and the fallback order.
//
// REQUIRES: Sort has not been called
func (t *T) AddDecl(name symbol.ID) {
	if !t.declared[name] {
		t.declared[name] = true
		t.declOrder = append(t.declOrder, name)
		t.sorter.AddNode(name)
	}
}

// AddDependency records that decl references dependsOn. References to names
// that were never registered with AddDecl (runtime-header helpers, C++
// builtins) are ignored.
//
// REQUIRES: Sort has not been called
func (t *T) AddDependency(decl, dependsOn symbol.ID) {
	if decl == dependsOn || !t.declared[decl] || !t.declared[dependsOn] {
		return
	}
	e := edge{decl, dependsOn}
	if !t.edgesAdded[e] {
		t.edgesAdded[e] = true
		t.sorter.AddEdge(decl, dependsOn)
	}
}

// Sort orders the declarations so every dependency precedes its dependents.
// Mutually recursive definitions are legal, so a cyclic graph is not an
// error: the registration order is kept instead, and Sort reports false.
// After the Sort call, no AddDecl or AddDependency can be called.
func (t *T) Sort() bool {
	sorted, cycles := t.sorter.Sort()
	if len(cycles) > 0 {
		t.sortedDecls = t.declOrder
		return false
	}
	t.sortedDecls = make([]symbol.ID, 0, len(sorted))
	for _, d := range sorted {
		t.sortedDecls = append(t.sortedDecls, d.(symbol.ID))
	}
	return true
}

// Decls returns the toposorted list of declarations.
//
// REQUIRES: Sort has been called
func (t *T) Decls() []symbol.ID { return t.sortedDecls }
