package tsvalue

import (
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/typeregistry"
)

// setValue is the runtime container for a TSS TSValue: a KeySet of
// elements with an ObserverArray tracking per-element subscribers.
type setValue struct {
	keys *typeregistry.KeySet
}

// MakeSetTSMeta builds a TSMeta for a TSS[elem] time series.
func MakeSetTSMeta(name string, elem *typeregistry.TypeMeta) *TSMeta {
	m := &TSMeta{TypeMeta: genericMetaFor(TSS, name), TSKind: TSS, Elem: elem}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid:         func(tv *TSValue) bool { return tv.Time.Valid() },
		Value: func(tv *TSValue) any {
			return tv.Value.(*setValue).keys.Keys()
		},
		DeltaValue: func(tv *TSValue) any { return tv.Delta },
		Invalidate: func(tv *TSValue) { tv.Time = hgtime.MinDT },
		ChildCount: func(tv *TSValue) int { return tv.Value.(*setValue).keys.Size() },
	}
	return m
}

// NewSet allocates an empty TSS TSValue for meta.
func NewSet(meta *TSMeta) *TSValue {
	tv := New(meta)
	sv := &setValue{keys: typeregistry.NewKeySet(meta.Elem)}
	tv.Value = sv
	tv.Slots.OnCapacity(sv.keys.Capacity())
	sv.keys.Attach(tv.Slots)
	return tv
}

// Add inserts an element, returning whether it was newly added.
func (tv *TSValue) Add(elem any, now hgtime.EngineTime) bool {
	sv := tv.Value.(*setValue)
	_, added := sv.keys.Insert(elem)
	if added {
		if tv.Delta == nil {
			tv.Delta = &Delta{}
		}
		if tv.Time != now {
			tv.Delta.Reset()
		}
		tv.Delta.Added = append(tv.Delta.Added, elem)
		tv.Time = now
		if tv.Observer != nil {
			tv.Observer.NotifyAll(now)
		}
	}
	return added
}

// Discard removes an element, returning whether it was present.
func (tv *TSValue) Discard(elem any, now hgtime.EngineTime) bool {
	sv := tv.Value.(*setValue)
	removed := sv.keys.Erase(elem)
	if removed {
		if tv.Delta == nil {
			tv.Delta = &Delta{}
		}
		if tv.Time != now {
			tv.Delta.Reset()
		}
		tv.Delta.Removed = append(tv.Delta.Removed, elem)
		tv.Time = now
		if tv.Observer != nil {
			tv.Observer.NotifyAll(now)
		}
	}
	return removed
}

// Contains reports whether elem is a current member.
func (tv *TSValue) Contains(elem any) bool {
	_, ok := tv.Value.(*setValue).keys.SlotOf(elem)
	return ok
}
