package runtime

import (
	"fmt"
)

// Handle addresses a heap object. Handles stay valid across collections;
// the payload behind one may be reallocated at any allocation, which is
// why bare payload pointers must not be held across allocating calls.
type Handle uint32

// NoObject is the null reference.
const NoObject Handle = 0

// ObjectKind selects the payload of an Object.
type ObjectKind uint8

const (
	// OKRaw is zero-initialised raw managed memory.
	OKRaw ObjectKind = iota
	// OKRefArray is a managed array of object references.
	OKRefArray
	// OKString is an immutable string object.
	OKString
	// OKNode is one chain node of a dictionary.
	OKNode
	// OKDictionary is the dictionary header.
	OKDictionary
)

// Object is a heap cell: a header the collector understands plus the
// payload.
type Object struct {
	Kind ObjectKind

	Bytes []byte
	Refs  []Handle
	Str   string
	Node  *Node
	Dict  *Dictionary

	alive  bool
	marked bool
	traced bool
}

// gcInterval is how many allocations pass between collections when the
// heap is not in stress mode.
const gcInterval = 256

// Heap owns every runtime object. Allocation is the only suspension
// point: a collection, and in stress mode a payload reallocation, can
// happen inside any Alloc call and nowhere else.
type Heap struct {
	next    Handle
	objects map[Handle]*Object
	threads []*Thread

	allocs int
	stress bool
}

// NewHeap creates an empty heap.
func NewHeap() *Heap {
	return &Heap{next: 1, objects: make(map[Handle]*Object, 128)}
}

// NewStressHeap creates a heap that collects and reallocates every
// payload on every allocation. Rooting mistakes that would be flaky under
// a normal schedule become deterministic.
func NewStressHeap() *Heap {
	h := NewHeap()
	h.stress = true
	return h
}

// NewThread registers a mutator thread with its shadow stack.
func (h *Heap) NewThread() *Thread {
	t := &Thread{heap: h}
	h.threads = append(h.threads, t)
	return t
}

func (h *Heap) alloc(kind ObjectKind) (Handle, *Object) {
	h.maybeCollect()
	ref := h.next
	h.next++
	obj := &Object{Kind: kind, alive: true}
	h.objects[ref] = obj
	return ref, obj
}

func (h *Heap) maybeCollect() {
	h.allocs++
	if h.stress || h.allocs >= gcInterval {
		h.Collect()
	}
}

// AllocRaw allocates zero-initialised raw managed memory.
func (h *Heap) AllocRaw(bytes int) Handle {
	ref, obj := h.alloc(OKRaw)
	obj.Bytes = make([]byte, bytes)
	return ref
}

// AllocRefArray allocates a managed array of count null references.
func (h *Heap) AllocRefArray(count int) Handle {
	ref, obj := h.alloc(OKRefArray)
	obj.Refs = make([]Handle, count)
	return ref
}

// AllocString allocates a string object.
func (h *Heap) AllocString(s string) Handle {
	ref, obj := h.alloc(OKString)
	obj.Str = s
	return ref
}

// AllocNode allocates a dictionary chain node.
func (h *Heap) AllocNode() Handle {
	ref, obj := h.alloc(OKNode)
	obj.Node = &Node{}
	return ref
}

// AllocDictionary allocates a dictionary header object.
func (h *Heap) AllocDictionary() Handle {
	ref, obj := h.alloc(OKDictionary)
	obj.Dict = &Dictionary{}
	return ref
}

// Get returns the object behind the handle. Null and dead handles are
// runtime faults.
func (h *Heap) Get(ref Handle) *Object {
	if ref == NoObject {
		panic("invalid handle 0")
	}
	obj, ok := h.objects[ref]
	if !ok || obj == nil {
		panic(fmt.Sprintf("invalid handle %d", ref))
	}
	if !obj.alive {
		panic(fmt.Sprintf("use after free: handle %d", ref))
	}
	return obj
}

func (h *Heap) kindChecked(ref Handle, kind ObjectKind) *Object {
	obj := h.Get(ref)
	if obj.Kind != kind {
		panic(fmt.Sprintf("handle %d holds kind %d, want %d", ref, obj.Kind, kind))
	}
	return obj
}

// Refs returns the reference-array payload. The slice is invalidated by
// the next allocation.
func (h *Heap) Refs(ref Handle) []Handle {
	return h.kindChecked(ref, OKRefArray).Refs
}

// Str returns the string payload.
func (h *Heap) Str(ref Handle) string {
	return h.kindChecked(ref, OKString).Str
}

// NodePayload returns the node payload. The pointer is invalidated by the
// next allocation.
func (h *Heap) NodePayload(ref Handle) *Node {
	return h.kindChecked(ref, OKNode).Node
}

// DictPayload returns the dictionary payload. The pointer is invalidated
// by the next allocation.
func (h *Heap) DictPayload(ref Handle) *Dictionary {
	return h.kindChecked(ref, OKDictionary).Dict
}

// Live reports whether the handle currently addresses a live object.
func (h *Heap) Live(ref Handle) bool {
	obj, ok := h.objects[ref]
	return ok && obj != nil && obj.alive
}

// ObjectCount is the number of live objects.
func (h *Heap) ObjectCount() int {
	n := 0
	for _, obj := range h.objects {
		if obj.alive {
			n++
		}
	}
	return n
}

// Mark informs the collector of a reference slot. The slot is updated in
// place should the object be forwarded; handles are currently stable, so
// only the mark bit changes.
func (h *Heap) Mark(ref *Handle) {
	if *ref == NoObject {
		return
	}
	obj := h.Get(*ref)
	obj.marked = true
}

// MarkSomething informs the collector of a handle-typed value slot.
func (h *Heap) MarkSomething(s *Something) {
	if s.IsReference() {
		h.Mark(&s.object)
	}
}

// Collect runs a stop-the-world mark and sweep over every thread's roots.
// In stress mode every surviving payload is additionally reallocated, so
// payload pointers loaded before the triggering allocation go stale.
func (h *Heap) Collect() {
	h.allocs = 0
	for _, obj := range h.objects {
		obj.marked = false
	}

	for _, t := range h.threads {
		for fi := range t.frames {
			frame := &t.frames[fi]
			h.Mark(&frame.this)
			for vi := range frame.variables {
				h.MarkSomething(&frame.variables[vi])
			}
		}
	}

	// Trace until the mark wave stops moving. The object graph is tiny
	// compared to a production collector; a fixpoint walk keeps the
	// tracing logic in the per-kind mark functions.
	for changed := true; changed; {
		changed = false
		for ref, obj := range h.objects {
			if !obj.alive || !obj.marked || obj.traced {
				continue
			}
			h.trace(ref, obj)
			changed = true
		}
	}

	for ref, obj := range h.objects {
		if !obj.alive || obj.marked {
			obj.traced = false
			continue
		}
		obj.alive = false
		delete(h.objects, ref)
	}

	if h.stress {
		h.reallocatePayloads()
	}
}

func (h *Heap) trace(ref Handle, obj *Object) {
	obj.traced = true
	switch obj.Kind {
	case OKRefArray:
		for i := range obj.Refs {
			h.Mark(&obj.Refs[i])
		}
	case OKNode:
		h.MarkSomething(&obj.Node.Key)
		h.MarkSomething(&obj.Node.Value)
		h.Mark(&obj.Node.Next)
	case OKDictionary:
		DictionaryMark(h, ref)
	case OKRaw, OKString:
	}
}

// reallocatePayloads moves every payload to fresh memory. Stale payload
// pointers keep addressing the old copies, which the next assertion or
// lookup then exposes.
func (h *Heap) reallocatePayloads() {
	for _, obj := range h.objects {
		switch obj.Kind {
		case OKRaw:
			obj.Bytes = append([]byte(nil), obj.Bytes...)
		case OKRefArray:
			obj.Refs = append([]Handle(nil), obj.Refs...)
		case OKNode:
			moved := *obj.Node
			obj.Node = &moved
		case OKDictionary:
			moved := *obj.Dict
			obj.Dict = &moved
		case OKString:
		}
	}
}
