package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
)

// windowEntry is one tick's sample retained by a TSW.
type windowEntry struct {
	Time  hgtime.EngineTime
	Value any
}

// windowValue is the runtime container for a TSW TSValue: a bounded
// ring of the most recent samples, evicted by count (Capacity) once
// full. There is no duration-based eviction: the TSValue only tracks
// a count bound.
type windowValue struct {
	entries  []windowEntry
	capacity int
}

// MakeWindowTSMeta builds a TSMeta for a TSW[elem] time series. The
// capacity argument is not used; the bound on retained samples is the
// one given to NewWindow.
func MakeWindowTSMeta(name string, elem *TSMeta, capacity int) *TSMeta {
	m := &TSMeta{TypeMeta: genericMetaFor(TSW, name), TSKind: TSW, Elem: elem.TypeMeta}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid:         func(tv *TSValue) bool { return tv.Time.Valid() },
		Value: func(tv *TSValue) any {
			wv := tv.Value.(*windowValue)
			out := make([]any, len(wv.entries))
			for i, e := range wv.entries {
				out[i] = e.Value
			}
			return out
		},
		DeltaValue: func(tv *TSValue) any {
			wv := tv.Value.(*windowValue)
			if len(wv.entries) == 0 {
				return nil
			}
			return wv.entries[len(wv.entries)-1].Value
		},
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			wv := tv.Value.(*windowValue)
			wv.entries = append(wv.entries, windowEntry{Time: now, Value: v})
			if wv.capacity > 0 && len(wv.entries) > wv.capacity {
				wv.entries = wv.entries[len(wv.entries)-wv.capacity:]
			}
			tv.Time = now
			if tv.Observer != nil {
				tv.Observer.NotifyAll(now)
			}
			return nil
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			return m.Ops.SetValue(tv, delta, now)
		},
		Invalidate: func(tv *TSValue) { tv.Time = hgtime.MinDT },
		ChildCount: func(tv *TSValue) int { return len(tv.Value.(*windowValue).entries) },
		ChildAt: func(tv *TSValue, i int, now hgtime.EngineTime) (*TSValue, error) {
			return nil, fmt.Errorf("window elements are scalar samples, not child time series")
		},
	}
	return m
}

// NewWindow allocates an empty TSW TSValue bounded to capacity samples.
func NewWindow(meta *TSMeta, capacity int) *TSValue {
	tv := New(meta)
	tv.Value = &windowValue{capacity: capacity}
	return tv
}

// Entries returns the window's current samples, oldest first.
func (tv *TSValue) Entries() []struct {
	Time  hgtime.EngineTime
	Value any
} {
	wv := tv.Value.(*windowValue)
	out := make([]struct {
		Time  hgtime.EngineTime
		Value any
	}, len(wv.entries))
	for i, e := range wv.entries {
		out[i] = struct {
			Time  hgtime.EngineTime
			Value any
		}{e.Time, e.Value}
	}
	return out
}
