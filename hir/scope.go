package hir

import (
	"text/scanner"

	"github.com/grailbio/tmppyc/diag"
	"github.com/grailbio/tmppyc/symbol"
)

// SymbolEntry is one binding in a scope's value or type table.
type SymbolEntry struct {
	Name             symbol.ID
	Type             Type
	DefNode          scanner.Position
	PartiallyDefined bool
	MayThrow         bool
}

// partialFunction is the small state machine recorded during module pass 1
// for a function whose return type cannot be syntactically declared and
// awaits inference from the function body in pass 2.
type partialFunction struct {
	DefPos scanner.Position
}

// Scope is one node of the parent-linked scope tree. Two parallel tables
// live in each scope: the value table and the type table (custom classes
// only); a custom class is entered into both, since its name is both a
// callable constructor and a type annotation.
type Scope struct {
	parent   *Scope
	values   map[symbol.ID]*SymbolEntry
	types    map[symbol.ID]*SymbolEntry
	partials map[symbol.ID]*partialFunction

	// FunctionName names the innermost enclosing function, or "" at module
	// scope. It is inherited by child scopes created within the same
	// function body.
	FunctionName string
}

// Context is the compilation context façade: the only way scopes are
// mutated. It wraps the current scope and the source used for diagnostics.
type Context struct {
	Source  diag.Source
	current *Scope
}

// NewContext creates the root (module) scope.
func NewContext(src diag.Source) *Context {
	return &Context{
		Source: src,
		current: &Scope{
			values:   map[symbol.ID]*SymbolEntry{},
			types:    map[symbol.ID]*SymbolEntry{},
			partials: map[symbol.ID]*partialFunction{},
		},
	}
}

// Scope returns the current scope.
func (c *Context) Scope() *Scope { return c.current }

// ChildScope creates a fresh nested scope and makes it current, inheriting
// the function-name context unless functionName is non-empty.
func (c *Context) ChildScope(functionName string) *Scope {
	fn := c.current.FunctionName
	if functionName != "" {
		fn = functionName
	}
	child := &Scope{
		parent:       c.current,
		values:       map[symbol.ID]*SymbolEntry{},
		types:        map[symbol.ID]*SymbolEntry{},
		partials:     map[symbol.ID]*partialFunction{},
		FunctionName: fn,
	}
	c.current = child
	return child
}

// PopScope restores the parent of the current scope as current. A scope
// must not be referenced after PopScope returns.
func (c *Context) PopScope() {
	if c.current.parent == nil {
		panic("hir: PopScope at root scope")
	}
	c.current = c.current.parent
}

// Lookup walks ancestor scopes for a value binding and returns the entry and
// its owning scope, or (nil, nil) if not found.
func (c *Context) Lookup(name symbol.ID) (*SymbolEntry, *Scope) {
	return lookupIn(c.current, name)
}

func lookupIn(s *Scope, name symbol.ID) (*SymbolEntry, *Scope) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.values[name]; ok {
			return e, cur
		}
	}
	return nil, nil
}

// LookupType walks ancestor scopes for a type (custom-class) binding.
func (c *Context) LookupType(name symbol.ID) (*SymbolEntry, *Scope) {
	for cur := c.current; cur != nil; cur = cur.parent {
		if e, ok := cur.types[name]; ok {
			return e, cur
		}
	}
	return nil, nil
}

// LookupPartial reports whether name is currently recorded as a partial
// (return-type-undeclared) function, walking ancestor scopes.
func (c *Context) LookupPartial(name symbol.ID) (*partialFunction, bool) {
	for cur := c.current; cur != nil; cur = cur.parent {
		if p, ok := cur.partials[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// Add records a value binding in the current scope. It fails with
// diag.Redefinition when the name already exists in the current scope's
// value table, type table, or partial-function map; when the prior value
// binding is partially defined, the message says the name may have already
// been initialized.
func (c *Context) Add(pos scanner.Position, name symbol.ID, t Type, partial, mayThrow bool) {
	s := c.current
	if prior, ok := s.values[name]; ok {
		if prior.PartiallyDefined {
			panic(diag.New(diag.Redefinition, c.Source, pos,
				"%s may have already been initialized (in another branch)", name.Str()).
				WithNote(prior.DefNode, "%s was (partially) defined here", name.Str()))
		}
		panic(diag.New(diag.Redefinition, c.Source, pos, "%s was already defined", name.Str()).
			WithNote(prior.DefNode, "%s was defined here", name.Str()))
	}
	if _, ok := s.types[name]; ok {
		diag.Raise(diag.Redefinition, c.Source, pos, "%s was already defined as a type", name.Str())
	}
	if _, ok := s.partials[name]; ok {
		diag.Raise(diag.Redefinition, c.Source, pos, "%s was already defined", name.Str())
	}
	s.values[name] = &SymbolEntry{Name: name, Type: t, DefNode: pos, PartiallyDefined: partial, MayThrow: mayThrow}
}

// AddType records a custom-class type binding in the current scope.
func (c *Context) AddType(pos scanner.Position, name symbol.ID, t Type) {
	s := c.current
	if _, ok := s.types[name]; ok {
		diag.Raise(diag.Redefinition, c.Source, pos, "%s was already defined as a type", name.Str())
	}
	s.types[name] = &SymbolEntry{Name: name, Type: t, DefNode: pos}
}

// RecordPartialFunction records a function whose return type cannot yet be
// syntactically declared, pending the second module pass that infers it
// from the function body.
func (c *Context) RecordPartialFunction(pos scanner.Position, name symbol.ID) {
	s := c.current
	if _, ok := s.partials[name]; ok {
		diag.Raise(diag.Redefinition, c.Source, pos, "%s was already defined", name.Str())
	}
	s.partials[name] = &partialFunction{DefPos: pos}
}

// CompletePartialFunction removes the partial entry and inserts a full
// function symbol with the now-known type.
func (c *Context) CompletePartialFunction(name symbol.ID, t Function) {
	s := c.current
	p, ok := s.partials[name]
	if !ok {
		panic("hir: CompletePartialFunction: no such partial: " + name.Str())
	}
	delete(s.partials, name)
	s.values[name] = &SymbolEntry{Name: name, Type: t, DefNode: p.DefPos, MayThrow: true}
}

// emptyBranchScope builds a detached scope with no bindings, standing in for
// the absent else branch of an if statement during JoinDefinitions.
func emptyBranchScope() *Scope {
	return &Scope{
		values:   map[symbol.ID]*SymbolEntry{},
		types:    map[symbol.ID]*SymbolEntry{},
		partials: map[symbol.ID]*partialFunction{},
	}
}

// JoinDefinitions merges bindings introduced in two branch scopes (if/else,
// try/except) back into the parent (current) scope:
//
//   - A name defined (non-partially) in both branches with the same type is
//     merged as fully defined.
//   - A name defined in both branches with conflicting types is a hard
//     error.
//   - A name defined on only one branch is merged as partially defined,
//     UNLESS the other branch always-returns (diverges), in which case it
//     is merged as fully defined (the only live path defines it).
//   - A branch that always-returns contributes no bindings at all (its
//     scope never continues).
func (c *Context) JoinDefinitions(a, b *Scope, aAlwaysReturns, bAlwaysReturns bool) {
	switch {
	case aAlwaysReturns && bAlwaysReturns:
		return
	case aAlwaysReturns:
		c.absorbBranch(b, false)
	case bAlwaysReturns:
		c.absorbBranch(a, false)
	default:
		for name, ea := range a.values {
			eb, inBoth := b.values[name]
			if !inBoth {
				c.mergeEntry(name, ea, true)
				continue
			}
			if !TypesEqual(ea.Type, eb.Type) {
				panic(diag.New(diag.TypeMismatch, c.Source, eb.DefNode,
					"%s is defined with type %s here, but with a different type in another branch", name.Str(), eb.Type.String()).
					WithNote(ea.DefNode, "%s was defined with type %s here", name.Str(), ea.Type.String()))
			}
			c.current.values[name] = &SymbolEntry{
				Name:             name,
				Type:             ea.Type,
				DefNode:          ea.DefNode,
				PartiallyDefined: ea.PartiallyDefined || eb.PartiallyDefined,
				MayThrow:         ea.MayThrow || eb.MayThrow,
			}
		}
		for name, eb := range b.values {
			if _, inBoth := a.values[name]; inBoth {
				continue
			}
			c.mergeEntry(name, eb, true)
		}
	}
}

// absorbBranch copies every binding of the sole live branch into the current
// scope; the other branch diverged, so these bindings hold on every live path.
func (c *Context) absorbBranch(s *Scope, partial bool) {
	for name, e := range s.values {
		c.mergeEntry(name, e, partial || e.PartiallyDefined)
	}
}

func (c *Context) mergeEntry(name symbol.ID, e *SymbolEntry, partial bool) {
	if _, exists := c.current.values[name]; exists {
		// The enclosing scope already binds this name; the branch binding was
		// a shadow and does not escape.
		return
	}
	c.current.values[name] = &SymbolEntry{Name: name, Type: e.Type, DefNode: e.DefNode, PartiallyDefined: partial, MayThrow: e.MayThrow}
}
