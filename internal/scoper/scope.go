package scoper

import (
	"fmt"

	"emojicode/internal/diag"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// Variable is a declared local or instance variable.
type Variable struct {
	Name     source.StringID
	ID       uint32
	Type     types.Type
	Frozen   bool
	Declared source.Span

	// Mutated is set when an assignment to the variable is analysed. It
	// feeds the frozen-variable recommendation on scope pop.
	Mutated bool

	// InitializationLevel tracks how far into initialization the variable
	// is; instance variables start uninitialized inside initializers.
	InitializationLevel int
}

// Initialize raises the variable's initialization level to the given one.
func (v *Variable) Initialize(level int) {
	if v.InitializationLevel < level {
		v.InitializationLevel = level
	}
}

// IsInitialized reports whether the variable can be read at the level.
func (v *Variable) IsInitialized(level int) bool {
	return v.InitializationLevel >= level
}

// Scope maps variable names to variables and assigns dense ids. Nested
// scopes are seeded with the parent's maxVariableID so ids never overlap
// within one function.
type Scope struct {
	variables map[source.StringID]*Variable
	order     []*Variable

	maxVariableID uint32
	instanceScope bool
}

// NewScope creates a scope whose first variable id is firstID.
func NewScope(firstID uint32) *Scope {
	return &Scope{
		variables:     map[source.StringID]*Variable{},
		maxVariableID: firstID,
	}
}

// NewInstanceScope creates the scope instance variables are declared in.
// Lookups resolving through it report inInstanceScope.
func NewInstanceScope() *Scope {
	s := NewScope(0)
	s.instanceScope = true
	return s
}

// MaxVariableID returns one greater than the largest id assigned so far.
func (s *Scope) MaxVariableID() uint32 {
	return s.maxVariableID
}

// DeclareVariable declares a variable and assigns it the next dense id.
// Redeclaring a name in the same scope raises a CompilerError.
func (s *Scope) DeclareVariable(name source.StringID, t types.Type, frozen bool, pos source.Span) (*Variable, error) {
	if _, taken := s.variables[name]; taken {
		return nil, diag.Errorf(diag.SemaShadowing, pos, "variable declared twice in the same scope")
	}
	v := &Variable{
		Name:     name,
		ID:       s.maxVariableID,
		Type:     t,
		Frozen:   frozen,
		Declared: pos,
	}
	s.maxVariableID++
	s.variables[name] = v
	s.order = append(s.order, v)
	return v, nil
}

// Get resolves a name declared directly in this scope.
func (s *Scope) Get(name source.StringID) (*Variable, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Has reports whether the name is declared directly in this scope.
func (s *Scope) Has(name source.StringID) bool {
	_, ok := s.variables[name]
	return ok
}

// Len returns the number of variables declared in this scope.
func (s *Scope) Len() int {
	return len(s.order)
}

// recommendFrozenVariables emits a recommendation for every variable that
// was declared mutable but never mutated. Declaration order keeps the
// output deterministic.
func (s *Scope) recommendFrozenVariables(r diag.Reporter, in *source.Interner) {
	for _, v := range s.order {
		if v.Frozen || v.Mutated {
			continue
		}
		name := in.MustLookup(v.Name)
		diag.Info(r, diag.SemaFrozenRecommendation, v.Declared,
			fmt.Sprintf("variable %s was never mutated; consider making it a frozen 🍦 variable", name))
	}
}
