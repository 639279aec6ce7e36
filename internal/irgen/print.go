package irgen

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable representation of the function, one
// instruction per line. Intended for debugging and golden output.
func (f *Func) Dump(w io.Writer) {
	fmt.Fprintf(w, "func %s params=%d locals=%d\n", f.Name, f.Params, f.Locals)
	for i := range f.Instrs {
		fmt.Fprintf(w, "  %s\n", f.Instrs[i].String())
	}
}

// DumpString renders the function into a string.
func (f *Func) DumpString() string {
	var sb strings.Builder
	f.Dump(&sb)
	return sb.String()
}

func (i Instr) String() string {
	def := ""
	if i.Result != NoValue {
		def = fmt.Sprintf("%%%d = ", i.Result)
	}
	switch i.Kind {
	case InstrConst:
		switch i.Const.Kind {
		case ConstInt:
			return fmt.Sprintf("%sconst %d", def, i.Const.Int)
		case ConstBool:
			return fmt.Sprintf("%sconst %t", def, i.Const.Bool)
		case ConstDouble:
			return fmt.Sprintf("%sconst %g", def, i.Const.Double)
		}
	case InstrNot:
		return fmt.Sprintf("%snot %%%d", def, i.Unary.Operand)
	case InstrSIToFP:
		return fmt.Sprintf("%ssitofp %%%d", def, i.Unary.Operand)
	case InstrICmpEQ:
		return fmt.Sprintf("%sicmp eq %%%d, %%%d", def, i.Binary.A, i.Binary.B)
	case InstrAdd:
		return fmt.Sprintf("%sadd %%%d, %%%d", def, i.Binary.A, i.Binary.B)
	case InstrGEP:
		return fmt.Sprintf("%sgep %%%d, %%%d", def, i.Binary.A, i.Binary.B)
	case InstrBitCast:
		return fmt.Sprintf("%sbitcast %%%d", def, i.Memory.Ptr)
	case InstrLoad:
		return fmt.Sprintf("%sload %%%d", def, i.Memory.Ptr)
	case InstrStore:
		return fmt.Sprintf("store %%%d, %%%d", i.Memory.Value, i.Memory.Ptr)
	case InstrLoadVar:
		return fmt.Sprintf("%sloadvar v%d", def, i.Slot.Index)
	case InstrStoreVar:
		return fmt.Sprintf("storevar v%d, %%%d", i.Slot.Index, i.Slot.Value)
	case InstrLoadArg:
		return fmt.Sprintf("%sloadarg a%d", def, i.Slot.Index)
	case InstrThis:
		return def + "this"
	case InstrBox:
		return fmt.Sprintf("%sbox %%%d", def, i.Unary.Operand)
	case InstrUnbox:
		return fmt.Sprintf("%sunbox %%%d", def, i.Unary.Operand)
	case InstrRetain:
		mode := "value"
		if i.Managed.ByReference {
			mode = "ref"
		}
		return fmt.Sprintf("retain.%s %%%d", mode, i.Managed.Operand)
	case InstrRelease:
		mode := "value"
		if i.Managed.ByReference {
			mode = "ref"
		}
		return fmt.Sprintf("release.%s %%%d", mode, i.Managed.Operand)
	case InstrTempRoot:
		return fmt.Sprintf("temproot %%%d", i.Unary.Operand)
	case InstrCall:
		parts := make([]string, 0, len(i.Call.Args))
		for _, a := range i.Call.Args {
			parts = append(parts, fmt.Sprintf("%%%d", a))
		}
		return fmt.Sprintf("%scall.%s table=%d (%s)", def, i.Call.CallKind, i.Call.TableIndex,
			strings.Join(parts, ", "))
	case InstrRet:
		if i.Ret.HasValue {
			return fmt.Sprintf("ret %%%d", i.Ret.Value)
		}
		return "ret"
	}
	return "invalid"
}
