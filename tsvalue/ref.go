package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
)

// LinkTarget is the binding record an input copies from the output it
// binds to: the output's slot pointers (folded here into a single
// *TSValue pointer, since Go lets us share the struct directly rather
// than copying five separate raw pointers) plus whether the input is
// peered (aliases the output's storage) or owns separate storage
// updated via observer notification.
type LinkTarget struct {
	Target *TSValue
	Peered bool
}

// refValue is the runtime container for a REF TSValue: a pointer to
// whichever TSValue it currently targets.
type refValue struct {
	target *TSValue
}

// MakeRefTSMeta builds a TSMeta for a REF time series. The meta records
// no target type, and binding a REF input accepts any output without a
// check of the target's meta.
func MakeRefTSMeta(name string) *TSMeta {
	m := &TSMeta{TypeMeta: genericMetaFor(REF, name), TSKind: REF}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid:         func(tv *TSValue) bool { return tv.Time.Valid() },
		Value: func(tv *TSValue) any {
			rv := tv.Value.(*refValue)
			if rv.target == nil {
				return nil
			}
			return rv.target
		},
		DeltaValue: func(tv *TSValue) any { return tv.Value.(*refValue).target },
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			target, ok := v.(*TSValue)
			if !ok {
				return fmt.Errorf("REF set_value expects *TSValue, got %T", v)
			}
			tv.Value.(*refValue).target = target
			tv.Time = now
			return nil
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			return m.Ops.SetValue(tv, delta, now)
		},
		Invalidate: func(tv *TSValue) { tv.Time = hgtime.MinDT; tv.Value.(*refValue).target = nil },
		ChildCount: func(tv *TSValue) int { return 0 },
	}
	return m
}

// NewRef allocates an unbound REF TSValue.
func NewRef(meta *TSMeta) *TSValue {
	tv := New(meta)
	tv.Value = &refValue{}
	return tv
}

// Rebind retargets a REF TSValue at now and fires its own observers
// (the REF's *own* modification, not the ultimate target's), giving
// sampled semantics: a consumer that dereferences through this REF
// observes modified=true at the rebind tick even when the new target's
// current value happens to equal the old one (spec §3.5, scenario S6).
func (tv *TSValue) Rebind(target *TSValue, now hgtime.EngineTime) {
	tv.Value.(*refValue).target = target
	tv.Time = now
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
}

// RefTarget returns the TSValue a REF currently points to, or nil if
// unbound.
func (tv *TSValue) RefTarget() *TSValue {
	rv, ok := tv.Value.(*refValue)
	if !ok {
		return nil
	}
	return rv.target
}

// Bind attaches a (non-REF) input's LinkTarget to output, per spec
// §3.5: the input copies the output's slot data. peered selects
// pass-through aliasing versus owned storage updated by notification.
func Bind(output *TSValue, peered bool) *LinkTarget {
	return &LinkTarget{Target: output, Peered: peered}
}
