package scoper

import (
	"fmt"

	"emojicode/internal/diag"
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// ResolvedVariable is the result of a lookup: the variable and whether it
// was found in the instance scope.
type ResolvedVariable struct {
	Variable        *Variable
	InInstanceScope bool
}

// ScopeStats summarises a popped scope.
type ScopeStats struct {
	// Variables is the number of variables declared in the scope.
	Variables int
	// MaxVariableID is one greater than the largest id the scope assigned.
	MaxVariableID uint32
}

// SemanticScoper assigns dense variable ids during semantic analysis.
// The current scope is the front of the stack; an optional instance scope
// backs lookups that miss every local scope.
type SemanticScoper struct {
	scopes        []*Scope // scopes[len-1] is the current scope
	instanceScope *Scope

	maxInitializationLevel int
	maxVariableID          uint32
}

// New creates a scoper without an instance scope (free functions).
func New() *SemanticScoper {
	return &SemanticScoper{maxInitializationLevel: 1}
}

// NewWithInstanceScope creates a scoper for bodies with access to
// instance variables.
func NewWithInstanceScope(instanceScope *Scope) *SemanticScoper {
	return &SemanticScoper{instanceScope: instanceScope, maxInitializationLevel: 1}
}

// CurrentScope returns the innermost scope.
func (sc *SemanticScoper) CurrentScope() *Scope {
	return sc.scopes[len(sc.scopes)-1]
}

// InstanceScope returns the instance scope or nil.
func (sc *SemanticScoper) InstanceScope() *Scope {
	return sc.instanceScope
}

// PushScope pushes a new subscope seeded so its ids continue after every
// id already assigned.
func (sc *SemanticScoper) PushScope() *Scope {
	first := sc.maxVariableID
	if len(sc.scopes) > 0 {
		first = sc.CurrentScope().MaxVariableID()
	}
	s := NewScope(first)
	sc.scopes = append(sc.scopes, s)
	return s
}

// PushArgumentsScope pushes a scope and declares every argument in it as a
// frozen, initialized variable.
func (sc *SemanticScoper) PushArgumentsScope(arguments []types.Parameter, pos source.Span) (*Scope, error) {
	s := sc.PushScope()
	for _, arg := range arguments {
		v, err := s.DeclareVariable(arg.Name, arg.Type, true, pos)
		if err != nil {
			return nil, err
		}
		v.Initialize(sc.maxInitializationLevel)
	}
	return s, nil
}

// PopScope lifts the scoper's id watermark to the popped scope's, emits
// frozen-variable recommendations and returns the scope statistics.
func (sc *SemanticScoper) PopScope(r diag.Reporter, in *source.Interner) ScopeStats {
	scope := sc.CurrentScope()
	if scope.MaxVariableID() > sc.maxVariableID {
		sc.maxVariableID = scope.MaxVariableID()
	}
	scope.recommendFrozenVariables(r, in)
	sc.scopes = sc.scopes[:len(sc.scopes)-1]
	// Ids stay unique across the whole function: later declarations in
	// the enclosing scope must not re-assign ids the popped scope used.
	if len(sc.scopes) > 0 {
		if enclosing := sc.CurrentScope(); scope.MaxVariableID() > enclosing.maxVariableID {
			enclosing.maxVariableID = scope.MaxVariableID()
		}
	}
	return ScopeStats{Variables: scope.Len(), MaxVariableID: scope.MaxVariableID()}
}

// GetVariable searches the scope stack front to back, then the instance
// scope. A miss raises a CompilerError naming the identifier.
func (sc *SemanticScoper) GetVariable(name source.StringID, in *source.Interner, pos source.Span) (ResolvedVariable, error) {
	for i := len(sc.scopes) - 1; i >= 0; i-- {
		if v, ok := sc.scopes[i].Get(name); ok {
			return ResolvedVariable{Variable: v}, nil
		}
	}
	if sc.instanceScope != nil {
		if v, ok := sc.instanceScope.Get(name); ok {
			return ResolvedVariable{Variable: v, InInstanceScope: true}, nil
		}
	}
	return ResolvedVariable{}, diag.Errorf(diag.SemaVariableNotFound, pos,
		"variable %s not found", in.MustLookup(name))
}

// CheckForShadowing warns if the name is already visible, without
// altering any state. Called before declarations.
func (sc *SemanticScoper) CheckForShadowing(name source.StringID, in *source.Interner, pos source.Span, r diag.Reporter) {
	for i := len(sc.scopes) - 1; i >= 0; i-- {
		if sc.scopes[i].Has(name) {
			diag.Warn(r, diag.SemaShadowing, pos,
				fmt.Sprintf("declaration of %s shadows a variable of the same name", in.MustLookup(name)))
			return
		}
	}
	if sc.instanceScope != nil && sc.instanceScope.Has(name) {
		diag.Warn(r, diag.SemaShadowing, pos,
			fmt.Sprintf("declaration of %s shadows an instance variable", in.MustLookup(name)))
	}
}

// VariableIDCount is the number of variable ids assigned across all
// scopes pushed so far; lowering sizes the frame with it.
func (sc *SemanticScoper) VariableIDCount() uint32 {
	count := sc.maxVariableID
	for _, s := range sc.scopes {
		if s.MaxVariableID() > count {
			count = s.MaxVariableID()
		}
	}
	return count
}

// MaxInitializationLevel is the level instance variables must reach before
// self may escape an initializer.
func (sc *SemanticScoper) MaxInitializationLevel() int {
	return sc.maxInitializationLevel
}

// PushInitializationLevel deepens the level; branches of an initializer
// body each initialize on their own level.
func (sc *SemanticScoper) PushInitializationLevel() {
	sc.maxInitializationLevel++
}
