package runtime

// Dictionary is the hash-based associative container. Every node and the
// bucket array are collectable objects themselves; the header only holds
// handles, never pointers.
type Dictionary struct {
	// Buckets references a managed array of BucketsCounter chain heads,
	// NoObject until the first resize.
	Buckets Handle
	// Size is the live entry count.
	Size int
	// BucketsCounter is the bucket array length, zero or a power of two.
	BucketsCounter int
	// NextThreshold triggers a resize once Size exceeds it. On a fresh
	// dictionary it doubles as the requested initial capacity.
	NextThreshold int
	// LoadFactor scales capacity into threshold.
	LoadFactor float32
}

// Node is one entry of a collision chain.
type Node struct {
	Hash  uint64
	Key   Something
	Value Something
	Next  Handle
}

const (
	// DefaultLoadFactor is installed by init.
	DefaultLoadFactor float32 = 0.75
	// DefaultInitialCapacity is used when no capacity was requested.
	DefaultInitialCapacity = 16
	// MaximumCapacity caps the bucket array length.
	MaximumCapacity = 1 << 30
	// MaximumCapacityThreshold is the threshold clamp once the capacity
	// limit is reached.
	MaximumCapacityThreshold = 1<<31 - 1
)

const (
	fnvOffset64 uint64 = 14695981039346656037
	fnvPrime64  uint64 = 1099511628211
)

// FNV64 hashes the bytes of a key with FNV-1a.
func FNV64(key []byte) uint64 {
	hash := fnvOffset64
	for _, b := range key {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return hash
}

// dictionaryHash hashes a key. Keys are string objects.
func dictionaryHash(h *Heap, key Something) uint64 {
	return FNV64([]byte(h.Str(key.Object())))
}

// dictionaryKeyEqual delegates to the key type's equality.
func dictionaryKeyEqual(h *Heap, key1, key2 Something) bool {
	return h.Str(key1.Object()) == h.Str(key2.Object())
}

// dictionaryKeyHashEqual short-circuits on hash inequality before testing
// key equality.
func dictionaryKeyHashEqual(h *Heap, hash1, hash2 uint64, key1, key2 Something) bool {
	return hash1 == hash2 && dictionaryKeyEqual(h, key1, key2)
}

// dictionaryGetNode locates the node for key, or returns nil. Performs no
// allocation; the returned pointer is valid until the next one.
func dictionaryGetNode(h *Heap, dict *Dictionary, hash uint64, key Something) *Node {
	if dict.Buckets == NoObject {
		return nil
	}
	n := dict.BucketsCounter
	if n <= 0 {
		return nil
	}
	bucko := h.Refs(dict.Buckets)
	firsto := bucko[hash&uint64(n-1)] //nolint:gosec // n is a positive power of two
	if firsto == NoObject {
		return nil
	}
	e := h.NodePayload(firsto)
	if dictionaryKeyHashEqual(h, hash, e.Hash, key, e.Key) {
		return e
	}
	for eo := e.Next; eo != NoObject; eo = e.Next {
		e = h.NodePayload(eo)
		if dictionaryKeyHashEqual(h, hash, e.Hash, key, e.Key) {
			return e
		}
	}
	return nil
}

// dictionaryNewNode allocates a chain node. The dictionary must be rooted
// across the allocation: any allocation may move it.
func dictionaryNewNode(h *Heap, t *Thread, dicto Handle, hash uint64, key, value Something, next Handle) Handle {
	t.StackPush(dicto, 0)
	nodeo := h.AllocNode()
	t.StackPop()

	node := h.NodePayload(nodeo)
	node.Hash = hash
	node.Key = key
	node.Value = value
	node.Next = next
	return nodeo
}

// dictionaryResize grows the bucket array. Chain order is preserved with
// the bit-split: a node at old index j stays at j when hash&oldCap is
// zero and moves to j+oldCap otherwise.
func dictionaryResize(h *Heap, t *Thread, dicto Handle) {
	dict := h.DictPayload(dicto)

	oldBuckoo := dict.Buckets
	oldCap := 0
	if oldBuckoo != NoObject {
		oldCap = dict.BucketsCounter
	}
	oldThr := dict.NextThreshold
	newCap := oldCap << 1
	newThr := 0

	if oldCap > 0 {
		if oldCap >= MaximumCapacity {
			dict.NextThreshold = MaximumCapacityThreshold
			return
		}
		if newCap < MaximumCapacity && oldCap >= DefaultInitialCapacity {
			newThr = oldThr << 1 // double threshold
		}
	} else if oldThr > 0 { // initial capacity was placed in threshold
		newCap = oldThr
	} else { // zero initial threshold signifies using defaults
		newCap = DefaultInitialCapacity
		newThr = int(DefaultLoadFactor * DefaultInitialCapacity)
	}

	if newThr == 0 {
		ft := float32(newCap) * dict.LoadFactor
		if newCap < MaximumCapacity && ft < float32(MaximumCapacity) {
			newThr = int(ft)
		} else {
			newThr = MaximumCapacityThreshold
		}
	}

	t.StackPush(dicto, 0)
	newBuckoo := h.AllocRefArray(newCap)
	dict = h.DictPayload(t.StackGetThis())
	t.StackPop()

	dict.Buckets = newBuckoo
	dict.NextThreshold = newThr
	dict.BucketsCounter = newCap

	newBucko := h.Refs(newBuckoo)
	if oldBuckoo == NoObject {
		return
	}
	for j := 0; j < oldCap; j++ {
		oldBucko := h.Refs(oldBuckoo)
		eo := oldBucko[j]
		if eo == NoObject {
			continue
		}
		e := h.NodePayload(eo)
		oldBucko[j] = NoObject
		if e.Next == NoObject {
			newBucko[e.Hash&uint64(newCap-1)] = eo //nolint:gosec // newCap is a positive power of two
			continue
		}
		// preserve order
		var loHeado, loTailo, hiHeado, hiTailo Handle
		for eo != NoObject {
			e = h.NodePayload(eo)
			nexto := e.Next
			if e.Hash&uint64(oldCap) == 0 { //nolint:gosec // oldCap is a positive power of two
				if loTailo == NoObject {
					loHeado = eo
				} else {
					h.NodePayload(loTailo).Next = eo
				}
				loTailo = eo
			} else {
				if hiTailo == NoObject {
					hiHeado = eo
				} else {
					h.NodePayload(hiTailo).Next = eo
				}
				hiTailo = eo
			}
			eo = nexto
		}
		if loTailo != NoObject {
			h.NodePayload(loTailo).Next = NoObject
			newBucko[j] = loHeado
		}
		if hiTailo != NoObject {
			h.NodePayload(hiTailo).Next = NoObject
			newBucko[j+oldCap] = hiHeado
		}
	}
}

// dictionaryPutVal inserts or overwrites the mapping for key. Bare
// payload pointers are re-fetched after every call that may allocate.
func dictionaryPutVal(h *Heap, t *Thread, dicto Handle, key, value Something) {
	hash := dictionaryHash(h, key)

	dict := h.DictPayload(dicto)
	if dict.Buckets == NoObject || dict.BucketsCounter == 0 {
		dictionaryResize(h, t, dicto)
		dict = h.DictPayload(dicto)
	}

	n := dict.BucketsCounter
	i := hash & uint64(n-1) //nolint:gosec // n is a positive power of two

	if h.Refs(dict.Buckets)[i] == NoObject {
		nodeo := dictionaryNewNode(h, t, dicto, hash, key, value, NoObject)
		dict = h.DictPayload(dicto)
		h.Refs(dict.Buckets)[i] = nodeo
	} else {
		po := h.Refs(dict.Buckets)[i]
		p := h.NodePayload(po)
		var eo Handle
		if dictionaryKeyHashEqual(h, hash, p.Hash, key, p.Key) {
			eo = po
		} else {
			for {
				if p.Next == NoObject {
					nodeo := dictionaryNewNode(h, t, dicto, hash, key, value, NoObject)
					// The allocation may have moved every payload;
					// reload the predecessor through its handle.
					h.NodePayload(po).Next = nodeo
					dict = h.DictPayload(dicto)
					break
				}
				nexto := p.Next
				e := h.NodePayload(nexto)
				if dictionaryKeyHashEqual(h, hash, e.Hash, key, e.Key) {
					eo = nexto
					break
				}
				po = nexto
				p = e
			}
		}
		if eo != NoObject { // existing mapping for key
			h.NodePayload(eo).Value = value
			return
		}
	}

	dict.Size++
	if dict.Size > dict.NextThreshold {
		dictionaryResize(h, t, dicto)
	}
}

// dictionaryRemoveNode unlinks the node for key and decrements the size.
// Returns the removed node or nil. Performs no allocation.
func dictionaryRemoveNode(h *Heap, dict *Dictionary, hash uint64, key Something) *Node {
	if dict.Buckets == NoObject {
		return nil
	}
	n := dict.BucketsCounter
	if n <= 0 {
		return nil
	}
	bucko := h.Refs(dict.Buckets)
	index := hash & uint64(n-1) //nolint:gosec // n is a positive power of two
	po := bucko[index]
	if po == NoObject {
		return nil
	}
	p := h.NodePayload(po)
	var node *Node
	if dictionaryKeyHashEqual(h, hash, p.Hash, key, p.Key) {
		node = p
	} else {
		for nexto := p.Next; nexto != NoObject; nexto = p.Next {
			e := h.NodePayload(nexto)
			if dictionaryKeyHashEqual(h, hash, e.Hash, key, e.Key) {
				node = e
				break
			}
			p = e
		}
	}
	if node == nil {
		return nil
	}
	if node == p {
		bucko[index] = node.Next
	} else {
		p.Next = node.Next
	}
	dict.Size--
	return node
}

// DictionarySet installs the mapping key to value.
func DictionarySet(h *Heap, t *Thread, dicto Handle, key, value Something) {
	dictionaryPutVal(h, t, dicto, key, value)
}

// DictionaryGet returns the value for key, or Nothingness.
func DictionaryGet(h *Heap, dicto Handle, key Something) Something {
	dict := h.DictPayload(dicto)
	node := dictionaryGetNode(h, dict, dictionaryHash(h, key), key)
	if node == nil {
		return Nothingness
	}
	return node.Value
}

// DictionaryRemove erases the mapping for key; absent keys are a no-op.
func DictionaryRemove(h *Heap, dicto Handle, key Something) {
	dict := h.DictPayload(dicto)
	dictionaryRemoveNode(h, dict, dictionaryHash(h, key), key)
}

// DictionaryContainsKey reports whether key has a mapping.
func DictionaryContainsKey(h *Heap, dicto Handle, key Something) bool {
	dict := h.DictPayload(dicto)
	return dictionaryGetNode(h, dict, dictionaryHash(h, key), key) != nil
}

// DictionaryClear zeroes every bucket head and the size. The bucket array
// is kept for re-use.
func DictionaryClear(h *Heap, dicto Handle) {
	dict := h.DictPayload(dicto)
	if dict.Buckets == NoObject || dict.Size == 0 {
		return
	}
	buck := h.Refs(dict.Buckets)
	dict.Size = 0
	for i := 0; i < dict.BucketsCounter; i++ {
		buck[i] = NoObject
	}
}

// DictionaryInit brings the receiver of the current frame into the empty
// state: default load factor, no entries, no buckets.
func DictionaryInit(t *Thread) {
	dict := t.heap.DictPayload(t.StackGetThis())
	dict.LoadFactor = DefaultLoadFactor
	dict.Size = 0
	dict.Buckets = NoObject
	dict.NextThreshold = 0
}

// DictionaryMark walks the container for the collector: the bucket array
// slot, every bucket head slot by address, and each node's key and value
// when they are references.
func DictionaryMark(h *Heap, dicto Handle) {
	dict := h.DictPayload(dicto)
	if dict.Buckets == NoObject {
		return
	}
	h.Mark(&dict.Buckets)

	buckets := h.Refs(dict.Buckets)
	for i := range buckets {
		eo := &buckets[i]
		for *eo != NoObject {
			h.Mark(eo)
			e := h.NodePayload(*eo)
			if e.Key.IsReference() {
				h.MarkSomething(&e.Key)
			}
			if e.Value.IsReference() {
				h.MarkSomething(&e.Value)
			}
			eo = &e.Next
		}
	}
}
