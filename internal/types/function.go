package types

import (
	"emojicode/internal/source"
)

// Parameter is a named function argument.
type Parameter struct {
	Name source.StringID
	Type Type
}

// Body is the parsed function body. The AST lives in its own package; the
// type model only needs to carry the body through to analysis.
type Body interface {
	BodySpan() source.Span
}

// Reification is a per-instantiation copy of a function. Without generic
// specialisation in scope there is exactly one, the unspecific reification,
// materialised on demand; it records what lowering needs per copy.
type Reification struct {
	// VariableCount is one greater than the largest variable id the scoper
	// assigned across the function body.
	VariableCount uint32
}

// Function is a method, initializer, type method or free function.
type Function struct {
	Name       source.StringID
	Imperative bool
	Arguments  []Parameter
	ReturnType Type
	Access     AccessLevel
	Final      bool
	External   bool

	Span source.Span
	Body Body

	// Owner is the definition the function belongs to, nil for free
	// functions.
	Owner *TypeDefinition

	// Initializer marks the function as an initializer; initializers form
	// a namespace separate from methods.
	Initializer bool

	// BoxingTarget is set on synthesised boxing layers and names the
	// implementation the thunk forwards to.
	BoxingTarget *Function

	unspecific *Reification
}

// CreateUnspecificReification materialises the unspecific reification.
// Idempotent.
func (f *Function) CreateUnspecificReification() *Reification {
	if f.unspecific == nil {
		f.unspecific = &Reification{}
	}
	return f.unspecific
}

// UnspecificReification returns the reification if it was materialised.
func (f *Function) UnspecificReification() *Reification {
	return f.unspecific
}

// IsBoxingLayer reports whether the function is a synthesised storage
// adapter thunk.
func (f *Function) IsBoxingLayer() bool {
	return f.BoxingTarget != nil
}
