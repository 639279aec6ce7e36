package ast

// BuiltIn tags method calls the compiler lowers directly to machine-level
// operations instead of emitting a call.
type BuiltIn uint8

const (
	BuiltInNone BuiltIn = iota
	// BuiltInIntegerNot is the bitwise NOT of an integer.
	BuiltInIntegerNot
	// BuiltInIntegerToDouble converts a signed integer to a double.
	BuiltInIntegerToDouble
	// BuiltInBooleanNegate is logical negation.
	BuiltInBooleanNegate
	// BuiltInStore writes a value into managed memory at an offset.
	BuiltInStore
	// BuiltInLoad reads a value from managed memory at an offset.
	BuiltInLoad
	// BuiltInRelease releases the managed value at an offset.
	BuiltInRelease
	// BuiltInMultiprotocol dispatches through the n-th protocol table of a
	// multiprotocol value.
	BuiltInMultiprotocol
)

func (b BuiltIn) String() string {
	switch b {
	case BuiltInNone:
		return "none"
	case BuiltInIntegerNot:
		return "integer not"
	case BuiltInIntegerToDouble:
		return "integer to double"
	case BuiltInBooleanNegate:
		return "boolean negate"
	case BuiltInStore:
		return "store"
	case BuiltInLoad:
		return "load"
	case BuiltInRelease:
		return "release"
	case BuiltInMultiprotocol:
		return "multiprotocol"
	default:
		return "invalid"
	}
}

// CallKind selects the dispatch strategy of a method call.
type CallKind uint8

const (
	// CallStatic calls the resolved function directly.
	CallStatic CallKind = iota
	// CallDynamic dispatches through the class vtable.
	CallDynamic
	// CallDynamicStatic is a super call: dynamic receiver, static target.
	CallDynamicStatic
	// CallTypeMethod invokes a type method.
	CallTypeMethod
	// CallProtocol dispatches through a protocol table.
	CallProtocol
	// CallMultiprotocol dispatches through one table of a multiprotocol
	// conformance vector.
	CallMultiprotocol
)

func (k CallKind) String() string {
	switch k {
	case CallStatic:
		return "static"
	case CallDynamic:
		return "dynamic"
	case CallDynamicStatic:
		return "dynamic static"
	case CallTypeMethod:
		return "type method"
	case CallProtocol:
		return "protocol"
	case CallMultiprotocol:
		return "multiprotocol"
	default:
		return "invalid"
	}
}
