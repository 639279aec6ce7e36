package ast

import (
	"emojicode/internal/source"
	"emojicode/internal/types"
)

// Expr is an expression node.
type Expr interface {
	ExprSpan() source.Span
}

// IntegerLiteral is a 🔢 literal.
type IntegerLiteral struct {
	Value int64
	Type  types.Type
	Span  source.Span
}

func (e *IntegerLiteral) ExprSpan() source.Span { return e.Span }

// BooleanLiteral is 👍 or 👎.
type BooleanLiteral struct {
	Value bool
	Type  types.Type
	Span  source.Span
}

func (e *BooleanLiteral) ExprSpan() source.Span { return e.Span }

// DoubleLiteral is a 💯 literal.
type DoubleLiteral struct {
	Value float64
	Type  types.Type
	Span  source.Span
}

func (e *DoubleLiteral) ExprSpan() source.Span { return e.Span }

// This is the receiver of the enclosing method or initializer.
type This struct {
	Type types.Type
	Span source.Span
}

func (e *This) ExprSpan() source.Span { return e.Span }

// VariableAccess reads a variable. The analyser resolves the name and
// fills the dense id, the instance-scope flag and the type.
type VariableAccess struct {
	Name source.StringID
	Span source.Span

	// Resolution, filled during semantic analysis.
	ID              uint32
	InInstanceScope bool
	Type            types.Type
	Resolved        bool
}

func (e *VariableAccess) ExprSpan() source.Span { return e.Span }

// ArgumentRef reads the n-th argument of the enclosing function. The
// boxing-layer builder uses it; parsers never produce one.
type ArgumentRef struct {
	Index int
	Type  types.Type
	Span  source.Span
}

func (e *ArgumentRef) ExprSpan() source.Span { return e.Span }

// StorageAdapt re-represents its operand between storage types: boxing,
// unboxing, or adding/stripping the presence flag. Lowered to the
// corresponding box/bitcast sequence.
type StorageAdapt struct {
	Value Expr
	From  types.Type
	To    types.Type
	Span  source.Span
}

func (e *StorageAdapt) ExprSpan() source.Span { return e.Span }

// MethodCall invokes a method on the callee. The parser resolves the
// method reference and the call kind; built-in primitives carry a BuiltIn
// tag instead of a body to call.
type MethodCall struct {
	Callee     Expr
	CalleeType types.Type
	Kind       CallKind
	Method     *types.Function

	Args        []Expr
	GenericArgs []types.Type

	BuiltIn        BuiltIn
	MultiprotocolN int

	Span source.Span
}

func (e *MethodCall) ExprSpan() source.Span { return e.Span }
