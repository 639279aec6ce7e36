package types

import (
	"emojicode/internal/source"
)

// Type pairs a definition reference with the optional wrapping flag.
// Types are copied by value.
type Type struct {
	def      *TypeDefinition
	optional bool
}

// MakeType builds a type referencing def.
func MakeType(def *TypeDefinition, optional bool) Type {
	return Type{def: def, optional: optional}
}

// NoType is the zero Type; it references no definition.
var NoType = Type{}

func (t Type) Valid() bool {
	return t.def != nil
}

func (t Type) Def() *TypeDefinition {
	return t.def
}

func (t Type) Optional() bool {
	return t.optional
}

// Optionalized returns the same type with the optional flag set.
func (t Type) Optionalized() Type {
	t.optional = true
	return t
}

// StorageType derives the lowered representation of values of this type.
// Protocol values always live in a box; optionals that are not boxed carry
// a presence flag next to the unboxed value.
func (t Type) StorageType() StorageType {
	if t.def != nil && t.def.Kind == KindProtocol {
		return StorageBox
	}
	if t.optional {
		return StorageSimpleOptional
	}
	return StorageSimple
}

// Managed reports whether the collector traces values of this type, which
// obliges the compiler to emit retain/release around reads and writes.
func (t Type) Managed() bool {
	return t.def != nil && t.def.Managed
}

// ManagedByReference reports whether retain/release target the address of
// the slot rather than the loaded value. Composite value types are managed
// through their slot; class and protocol instances through the reference
// itself.
func (t Type) ManagedByReference() bool {
	if !t.Managed() {
		return false
	}
	return t.def.Kind == KindValueType && !t.def.Primitive
}

// CompatibleTo implements assignability: identity, optional covariance
// (T is compatible to 🍬T, never the reverse), subclass-to-superclass,
// and conformer-to-protocol.
func (t Type) CompatibleTo(to Type, _ TypeContext) bool {
	if t.def == nil && to.def == nil {
		// No-return to no-return.
		return true
	}
	if t.def == nil || to.def == nil {
		return false
	}
	if t.optional && !to.optional {
		return false
	}
	if t.def == to.def {
		return true
	}
	if to.def.Kind == KindProtocol && t.def.conformsTo(to.def) {
		return true
	}
	if t.def.Kind == KindClass && to.def.Kind == KindClass && t.def.inheritsFrom(to.def) {
		return true
	}
	return false
}

// ResolveOn substitutes generic arguments from the context. Only the
// unspecific reification exists here, so resolution is the identity; the
// call sites keep the context so specialisation slots in later.
func (t Type) ResolveOn(_ TypeContext) Type {
	return t
}

// Describe renders the type for diagnostics, with the optional marker the
// language uses.
func (t Type) Describe(in *source.Interner) string {
	if t.def == nil {
		return "⬛️"
	}
	name := in.MustLookup(t.def.Name)
	if t.optional {
		return "🍬" + name
	}
	return name
}

// TypeContext carries the type a body is analysed against. Generic
// argument vectors belong here once specialisation happens; the unspecific
// reification needs the callee type only.
type TypeContext struct {
	Callee Type
}

// MakeTypeContext builds a context for the given callee type.
func MakeTypeContext(callee Type) TypeContext {
	return TypeContext{Callee: callee}
}
