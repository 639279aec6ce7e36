package runtime

// MethodHandler is a runtime bridge entry point. The receiver and the
// arguments arrive through the thread's operand stack in slots 0…; the
// result leaves as a Something.
type MethodHandler func(t *Thread) Something

func bridgeDictionarySet(t *Thread) Something {
	DictionarySet(t.heap, t, t.StackGetThis(), t.StackGetVariable(0), t.StackGetVariable(1))
	return Nothingness
}

func bridgeDictionaryGet(t *Thread) Something {
	return DictionaryGet(t.heap, t.StackGetThis(), t.StackGetVariable(0))
}

func bridgeDictionaryRemove(t *Thread) Something {
	DictionaryRemove(t.heap, t.StackGetThis(), t.StackGetVariable(0))
	return Nothingness
}

// BridgeDictionaryInit initialises the receiver dictionary.
func BridgeDictionaryInit(t *Thread) {
	DictionaryInit(t)
}

// DictionaryMethodForName returns the bridge for the method named by the
// code point, or nil.
func DictionaryMethodForName(name rune) MethodHandler {
	switch name {
	case 0x1F43D: // 🐽
		return bridgeDictionaryGet
	case 0x1F428: // 🐨
		return bridgeDictionaryRemove
	case 0x1F437: // 🐷
		return bridgeDictionarySet
	}
	return nil
}
