// Package observe implements the hierarchical subscription/notification
// mechanism: insertion-ordered observer lists that fan out "something
// changed" from a TSOutput to every bound input's owning node, safely
// across concurrent registration changes during fan-out.
package observe

import "github.com/sbl8/hgraph/hgtime"

// Notifiable is anything that can be told a time series it observes
// was modified at a given engine time. In this engine the concrete
// implementation is always a node's activation notifier (see package
// node), but the interface is kept narrow so observe has no dependency
// on node.
type Notifiable interface {
	NotifyModified(now hgtime.EngineTime)
	NotifyRemoved()
}

// List is an insertion-ordered set of Notifiable observers. Add/Remove
// are safe to call from within NotifyAll (a common pattern: a node
// removes itself or a peer during its own activation), implemented by
// snapshotting the slice before iterating.
type List struct {
	observers []Notifiable
	index     map[Notifiable]int
}

// NewList returns an empty, ready-to-use List.
func NewList() *List {
	return &List{index: make(map[Notifiable]int)}
}

// Add registers o if not already present. Returns false if o was
// already registered.
func (l *List) Add(o Notifiable) bool {
	if l.index == nil {
		l.index = make(map[Notifiable]int)
	}
	if _, ok := l.index[o]; ok {
		return false
	}
	l.index[o] = len(l.observers)
	l.observers = append(l.observers, o)
	return true
}

// Remove deregisters o. Returns false if o was not registered. Safe to
// call while NotifyAll is iterating a previously taken snapshot.
func (l *List) Remove(o Notifiable) bool {
	i, ok := l.index[o]
	if !ok {
		return false
	}
	copy(l.observers[i:], l.observers[i+1:])
	l.observers = l.observers[:len(l.observers)-1]
	for j := i; j < len(l.observers); j++ {
		l.index[l.observers[j]] = j
	}
	delete(l.index, o)
	return true
}

// Len reports the number of currently registered observers.
func (l *List) Len() int { return len(l.observers) }

// NotifyAll calls NotifyModified(now) on a snapshot of the currently
// registered observers. Observers added after the snapshot is taken do
// not see this notification; observers removed during iteration are
// skipped (their index map entry is gone so membership is re-checked).
func (l *List) NotifyAll(now hgtime.EngineTime) {
	snapshot := make([]Notifiable, len(l.observers))
	copy(snapshot, l.observers)
	for _, o := range snapshot {
		if _, stillRegistered := l.index[o]; stillRegistered {
			o.NotifyModified(now)
		}
	}
}

// NotifyAllRemoved calls NotifyRemoved exactly once on every still
// registered observer, then empties the list. Used when the owning
// output/slot is destroyed or a dict key is erased.
func (l *List) NotifyAllRemoved() {
	snapshot := make([]Notifiable, len(l.observers))
	copy(snapshot, l.observers)
	l.observers = nil
	l.index = make(map[Notifiable]int)
	for _, o := range snapshot {
		o.NotifyRemoved()
	}
}
