// Package irgen lowers analysed function bodies to a target-independent
// SSA-like instruction stream. A backend consumes the stream; nothing here
// knows about machine encodings.
package irgen

import (
	"emojicode/internal/ast"
	"emojicode/internal/types"
)

// ValueID names an SSA value produced by an instruction or parameter.
type ValueID uint32

// NoValue marks instructions that produce nothing.
const NoValue ValueID = ^ValueID(0)

// InstrKind enumerates instruction kinds.
type InstrKind uint8

const (
	// InstrConst materialises a constant.
	InstrConst InstrKind = iota
	// InstrNot is bitwise NOT.
	InstrNot
	// InstrSIToFP converts a signed integer to a double.
	InstrSIToFP
	// InstrICmpEQ compares two integers for equality.
	InstrICmpEQ
	// InstrAdd adds two integers.
	InstrAdd
	// InstrGEP computes base plus byte offset.
	InstrGEP
	// InstrBitCast reinterprets a pointer as a differently typed pointer.
	InstrBitCast
	// InstrLoad reads through a pointer.
	InstrLoad
	// InstrStore writes through a pointer.
	InstrStore
	// InstrLoadVar reads a variable slot.
	InstrLoadVar
	// InstrStoreVar writes a variable slot.
	InstrStoreVar
	// InstrLoadArg reads an argument slot.
	InstrLoadArg
	// InstrThis reads the receiver.
	InstrThis
	// InstrBox moves a value into a uniform box slot.
	InstrBox
	// InstrUnbox takes a value out of a uniform box slot.
	InstrUnbox
	// InstrRetain adjusts a managed value's reference count upward.
	InstrRetain
	// InstrRelease adjusts a managed value's reference count downward.
	InstrRelease
	// InstrTempRoot roots a managed temporary for the collector.
	InstrTempRoot
	// InstrCall invokes a function through one of the call kinds.
	InstrCall
	// InstrRet leaves the function.
	InstrRet
)

// ConstKind distinguishes constant payloads.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstDouble
)

// Instr is one instruction. Kind selects the active payload.
type Instr struct {
	Kind   InstrKind
	Result ValueID

	Const   ConstInstr
	Unary   UnaryInstr
	Binary  BinaryInstr
	Memory  MemoryInstr
	Slot    SlotInstr
	Managed ManagedInstr
	Call    CallInstr
	Ret     RetInstr
}

// ConstInstr materialises a constant value.
type ConstInstr struct {
	Kind   ConstKind
	Int    int64
	Bool   bool
	Double float64
}

// UnaryInstr covers not/sitofp/box/unbox/temp-root.
type UnaryInstr struct {
	Operand ValueID
	Type    types.Type // box/unbox target representation
}

// BinaryInstr covers icmp-eq, add and gep.
type BinaryInstr struct {
	A ValueID
	B ValueID
}

// MemoryInstr covers load, store and bitcast.
type MemoryInstr struct {
	Value ValueID // store only
	Ptr   ValueID
	Type  types.Type // pointee type for bitcast
}

// SlotInstr covers variable and argument slots.
type SlotInstr struct {
	Index uint32
	Value ValueID // store-var only
}

// ManagedInstr covers retain and release.
type ManagedInstr struct {
	Operand ValueID
	Type    types.Type
	// ByReference is set when the operand is the address of the managed
	// slot rather than the managed value itself.
	ByReference bool
}

// CallInstr invokes method through the dispatch selected by Kind.
type CallInstr struct {
	CallKind ast.CallKind
	Method   *types.Function
	// TableIndex selects the protocol table for multiprotocol dispatch.
	TableIndex int
	Args       []ValueID
}

// RetInstr leaves the function, with or without a value.
type RetInstr struct {
	HasValue bool
	Value    ValueID
}
