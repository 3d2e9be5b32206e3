package observe

import "github.com/sbl8/hgraph/typeregistry"

// Array stores a per-slot List for a collection time-series kind
// (TSD/TSS/TSW), wired to the underlying KeySet as a SlotObserver so
// the per-slot lists stay synchronized with key insertion, erasure,
// and capacity growth.
type Array struct {
	lists []*List
}

// NewArray creates an Array with no pre-allocated slots; OnCapacity
// will size it on first attach.
func NewArray() *Array { return &Array{} }

// OnCapacity implements typeregistry.SlotObserver.
func (a *Array) OnCapacity(newCapacity int) {
	if newCapacity <= len(a.lists) {
		return
	}
	grown := make([]*List, newCapacity)
	copy(grown, a.lists)
	for i := len(a.lists); i < newCapacity; i++ {
		grown[i] = NewList()
	}
	a.lists = grown
}

// OnInsert implements typeregistry.SlotObserver.
func (a *Array) OnInsert(slot int, _ any) {
	a.ensure(slot)
}

// OnErase implements typeregistry.SlotObserver. Observers registered on
// the erased slot are notified of removal exactly once, per spec §4.3.
func (a *Array) OnErase(slot int) {
	if slot < len(a.lists) && a.lists[slot] != nil {
		a.lists[slot].NotifyAllRemoved()
	}
}

// OnUpdate implements typeregistry.SlotObserver. It notifies no one.
func (a *Array) OnUpdate(slot int) {
	// Callers fan out modification via Slot(slot).NotifyAll(now); OnUpdate
	// from the KeySet alone carries no engine time, so it is a no-op
	// here and the Array's user (a TSD output) calls Slot(slot).NotifyAll
	// directly with the tick's engine time.
}

// OnClear implements typeregistry.SlotObserver.
func (a *Array) OnClear() {
	for _, l := range a.lists {
		if l != nil {
			l.NotifyAllRemoved()
		}
	}
	a.lists = nil
}

func (a *Array) ensure(slot int) {
	if slot < len(a.lists) {
		if a.lists[slot] == nil {
			a.lists[slot] = NewList()
		}
		return
	}
	grown := make([]*List, slot+1)
	copy(grown, a.lists)
	for i := range grown {
		if grown[i] == nil {
			grown[i] = NewList()
		}
	}
	a.lists = grown
}

// Slot returns the List for a given slot index, creating it on demand.
func (a *Array) Slot(slot int) *List {
	a.ensure(slot)
	return a.lists[slot]
}

var _ typeregistry.SlotObserver = (*Array)(nil)
