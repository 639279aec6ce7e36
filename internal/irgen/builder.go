package irgen

import (
	"emojicode/internal/ast"
	"emojicode/internal/types"
)

// HeaderPointerSize is the size of the mandatory object-header pointer at
// offset zero of every managed memory area. Machine-level loads and stores
// address past it.
const HeaderPointerSize = 8

// Func is the lowered form of one function.
type Func struct {
	Name   string
	Params int
	// Locals is the variable slot count the scoper assigned.
	Locals uint32
	Instrs []Instr
}

// Builder emits SSA-like instructions into a Func. Every Create method
// appends one instruction; those for value-defining instructions return
// the value, the others return nothing.
type Builder struct {
	fn   *Func
	next ValueID
}

// NewBuilder creates a builder emitting into fn.
func NewBuilder(fn *Func) *Builder {
	return &Builder{fn: fn}
}

// Func returns the function under construction.
func (b *Builder) Func() *Func {
	return b.fn
}

func (b *Builder) emitValue(i Instr) ValueID {
	i.Result = b.next
	b.next++
	b.fn.Instrs = append(b.fn.Instrs, i)
	return i.Result
}

func (b *Builder) emit(i Instr) {
	i.Result = NoValue
	b.fn.Instrs = append(b.fn.Instrs, i)
}

// GetFalse materialises the boolean constant false.
func (b *Builder) GetFalse() ValueID {
	return b.emitValue(Instr{Kind: InstrConst, Const: ConstInstr{Kind: ConstBool, Bool: false}})
}

// GetTrue materialises the boolean constant true.
func (b *Builder) GetTrue() ValueID {
	return b.emitValue(Instr{Kind: InstrConst, Const: ConstInstr{Kind: ConstBool, Bool: true}})
}

// ConstInt materialises an integer constant.
func (b *Builder) ConstInt(v int64) ValueID {
	return b.emitValue(Instr{Kind: InstrConst, Const: ConstInstr{Kind: ConstInt, Int: v}})
}

// ConstDouble materialises a double constant.
func (b *Builder) ConstDouble(v float64) ValueID {
	return b.emitValue(Instr{Kind: InstrConst, Const: ConstInstr{Kind: ConstDouble, Double: v}})
}

// CreateNot emits bitwise NOT.
func (b *Builder) CreateNot(v ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrNot, Unary: UnaryInstr{Operand: v}})
}

// CreateSIToFP emits a signed integer to double conversion.
func (b *Builder) CreateSIToFP(v ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrSIToFP, Unary: UnaryInstr{Operand: v}})
}

// CreateICmpEQ emits an integer equality comparison.
func (b *Builder) CreateICmpEQ(a, v ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrICmpEQ, Binary: BinaryInstr{A: a, B: v}})
}

// CreateAdd emits an integer addition.
func (b *Builder) CreateAdd(a, v ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrAdd, Binary: BinaryInstr{A: a, B: v}})
}

// CreateGEP computes base plus byte offset.
func (b *Builder) CreateGEP(base, offset ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrGEP, Binary: BinaryInstr{A: base, B: offset}})
}

// CreateBitCast reinterprets ptr as a pointer to t.
func (b *Builder) CreateBitCast(ptr ValueID, t types.Type) ValueID {
	return b.emitValue(Instr{Kind: InstrBitCast, Memory: MemoryInstr{Ptr: ptr, Type: t}})
}

// CreateLoad reads through ptr.
func (b *Builder) CreateLoad(ptr ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrLoad, Memory: MemoryInstr{Ptr: ptr}})
}

// CreateStore writes val through ptr.
func (b *Builder) CreateStore(val, ptr ValueID) {
	b.emit(Instr{Kind: InstrStore, Memory: MemoryInstr{Value: val, Ptr: ptr}})
}

// CreateLoadVar reads variable slot id.
func (b *Builder) CreateLoadVar(id uint32) ValueID {
	return b.emitValue(Instr{Kind: InstrLoadVar, Slot: SlotInstr{Index: id}})
}

// CreateStoreVar writes variable slot id.
func (b *Builder) CreateStoreVar(id uint32, v ValueID) {
	b.emit(Instr{Kind: InstrStoreVar, Slot: SlotInstr{Index: id, Value: v}})
}

// CreateLoadArg reads argument slot index.
func (b *Builder) CreateLoadArg(index uint32) ValueID {
	return b.emitValue(Instr{Kind: InstrLoadArg, Slot: SlotInstr{Index: index}})
}

// CreateThis reads the receiver.
func (b *Builder) CreateThis() ValueID {
	return b.emitValue(Instr{Kind: InstrThis})
}

// CreateBox moves v into a uniform box representing t.
func (b *Builder) CreateBox(v ValueID, t types.Type) ValueID {
	return b.emitValue(Instr{Kind: InstrBox, Unary: UnaryInstr{Operand: v, Type: t}})
}

// CreateUnbox takes the t-typed value out of box v.
func (b *Builder) CreateUnbox(v ValueID, t types.Type) ValueID {
	return b.emitValue(Instr{Kind: InstrUnbox, Unary: UnaryInstr{Operand: v, Type: t}})
}

// CreateRetain adjusts the reference count of a managed value upward.
// byReference marks operands that are slot addresses.
func (b *Builder) CreateRetain(v ValueID, t types.Type, byReference bool) {
	b.emit(Instr{Kind: InstrRetain, Managed: ManagedInstr{Operand: v, Type: t, ByReference: byReference}})
}

// CreateRelease adjusts the reference count of a managed value downward.
func (b *Builder) CreateRelease(v ValueID, t types.Type, byReference bool) {
	b.emit(Instr{Kind: InstrRelease, Managed: ManagedInstr{Operand: v, Type: t, ByReference: byReference}})
}

// CreateTempRoot roots a managed temporary across the following
// instructions.
func (b *Builder) CreateTempRoot(v ValueID) {
	b.emit(Instr{Kind: InstrTempRoot, Unary: UnaryInstr{Operand: v}})
}

// CreateCall invokes method through the given dispatch.
func (b *Builder) CreateCall(kind ast.CallKind, method *types.Function, tableIndex int, args []ValueID) ValueID {
	return b.emitValue(Instr{Kind: InstrCall, Call: CallInstr{
		CallKind: kind, Method: method, TableIndex: tableIndex, Args: args,
	}})
}

// CreateRet leaves the function returning v.
func (b *Builder) CreateRet(v ValueID) {
	b.emit(Instr{Kind: InstrRet, Ret: RetInstr{HasValue: true, Value: v}})
}

// CreateRetVoid leaves the function without a value.
func (b *Builder) CreateRetVoid() {
	b.emit(Instr{Kind: InstrRet})
}
