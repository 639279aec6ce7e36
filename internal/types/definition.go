package types

import (
	"emojicode/internal/diag"
	"emojicode/internal/source"
)

// DefinitionKind enumerates the three kinds of type definitions.
type DefinitionKind uint8

const (
	KindValueType DefinitionKind = iota
	KindClass
	KindProtocol
)

func (k DefinitionKind) String() string {
	switch k {
	case KindValueType:
		return "value type"
	case KindClass:
		return "class"
	case KindProtocol:
		return "protocol"
	default:
		return "invalid"
	}
}

// InstanceVariable is an ordered instance-variable declaration.
type InstanceVariable struct {
	Name source.StringID
	Type Type
	Span source.Span
}

// TypeDefinition is a tagged variant over value types, classes and
// protocols. The shared record carries everything the analyser walks;
// behaviour diverges on Kind only where it must (inheritance applies to
// classes, method boxes to protocols).
type TypeDefinition struct {
	Kind DefinitionKind
	Name source.StringID
	Span source.Span

	InstanceVariables []InstanceVariable
	Protocols         []Type

	// Superclass is set for classes only.
	Superclass *TypeDefinition
	// Primitive marks value types lowered to a bare machine word.
	Primitive bool
	// Managed marks definitions whose instances the collector traces.
	Managed bool

	methods      []*Function
	methodIndex  map[methodKey]*Function
	initializers []*Function

	inherited bool
}

type methodKey struct {
	name       source.StringID
	imperative bool
}

// NewValueType builds a value-type definition.
func NewValueType(name source.StringID, span source.Span, primitive, managed bool) *TypeDefinition {
	return &TypeDefinition{
		Kind:        KindValueType,
		Name:        name,
		Span:        span,
		Primitive:   primitive,
		Managed:     managed,
		methodIndex: map[methodKey]*Function{},
	}
}

// NewClass builds a class definition. Classes are always managed.
func NewClass(name source.StringID, span source.Span, superclass *TypeDefinition) *TypeDefinition {
	return &TypeDefinition{
		Kind:        KindClass,
		Name:        name,
		Span:        span,
		Superclass:  superclass,
		Managed:     true,
		methodIndex: map[methodKey]*Function{},
	}
}

// NewProtocol builds a protocol definition. Protocol values live in boxes,
// so they are managed.
func NewProtocol(name source.StringID, span source.Span) *TypeDefinition {
	return &TypeDefinition{
		Kind:        KindProtocol,
		Name:        name,
		Span:        span,
		Managed:     true,
		methodIndex: map[methodKey]*Function{},
	}
}

// AddMethod registers a method. No two methods of one definition may share
// (name, imperative).
func (d *TypeDefinition) AddMethod(f *Function) error {
	key := methodKey{name: f.Name, imperative: f.Imperative}
	if _, taken := d.methodIndex[key]; taken {
		return diag.Errorf(diag.SemaDuplicateMethod, f.Span, "duplicate method declaration")
	}
	f.Owner = d
	d.methods = append(d.methods, f)
	d.methodIndex[key] = f
	return nil
}

// AddInitializer registers an initializer. Initializers form a namespace
// separate from methods.
func (d *TypeDefinition) AddInitializer(f *Function) {
	f.Owner = d
	f.Initializer = true
	d.initializers = append(d.initializers, f)
}

// LookupMethod resolves a method by (name, imperative) or returns nil.
func (d *TypeDefinition) LookupMethod(name source.StringID, imperative bool) *Function {
	return d.methodIndex[methodKey{name: name, imperative: imperative}]
}

// Methods returns the methods in declaration order.
func (d *TypeDefinition) Methods() []*Function {
	return d.methods
}

// Initializers returns the initializer list.
func (d *TypeDefinition) Initializers() []*Function {
	return d.initializers
}

// AddProtocol records a conformance claim.
func (d *TypeDefinition) AddProtocol(p Type) {
	d.Protocols = append(d.Protocols, p)
}

// EachFunction visits every method and initializer of the definition.
func (d *TypeDefinition) EachFunction(visit func(*Function)) {
	for _, m := range d.methods {
		visit(m)
	}
	for _, ini := range d.initializers {
		visit(ini)
	}
}

// Inherit linearises the superclass chain of a class: methods the subclass
// does not override by (name, imperative) are adopted, as are protocol
// conformances and instance variables. Calling it twice is a no-op.
func (d *TypeDefinition) Inherit() {
	if d.Kind != KindClass || d.inherited || d.Superclass == nil {
		return
	}
	d.inherited = true
	d.Superclass.Inherit()

	for _, m := range d.Superclass.methods {
		key := methodKey{name: m.Name, imperative: m.Imperative}
		if _, overridden := d.methodIndex[key]; overridden {
			continue
		}
		d.methods = append(d.methods, m)
		d.methodIndex[key] = m
	}

	for _, p := range d.Superclass.Protocols {
		if !containsDef(d.Protocols, p.Def()) {
			d.Protocols = append(d.Protocols, p)
		}
	}

	inherited := make([]InstanceVariable, 0, len(d.Superclass.InstanceVariables)+len(d.InstanceVariables))
	inherited = append(inherited, d.Superclass.InstanceVariables...)
	inherited = append(inherited, d.InstanceVariables...)
	d.InstanceVariables = inherited
}

// inheritsFrom reports whether d is other or a subclass of other.
func (d *TypeDefinition) inheritsFrom(other *TypeDefinition) bool {
	for c := d; c != nil; c = c.Superclass {
		if c == other {
			return true
		}
	}
	return false
}

// conformsTo reports whether the definition (or a superclass) claims
// conformance to the protocol.
func (d *TypeDefinition) conformsTo(protocol *TypeDefinition) bool {
	for c := d; c != nil; c = c.Superclass {
		if containsDef(c.Protocols, protocol) {
			return true
		}
		if c.Kind != KindClass {
			break
		}
	}
	return false
}

// ProtocolIndex returns the position of the protocol in the conformance
// vector, used by multiprotocol dispatch to select a table.
func (d *TypeDefinition) ProtocolIndex(protocol *TypeDefinition) (int, bool) {
	for i, p := range d.Protocols {
		if p.Def() == protocol {
			return i, true
		}
	}
	return 0, false
}

func containsDef(list []Type, def *TypeDefinition) bool {
	for _, t := range list {
		if t.Def() == def {
			return true
		}
	}
	return false
}
