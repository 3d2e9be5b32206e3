package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/herrors"
)

// listValue is the runtime container for a TSL TSValue: a dense,
// index-addressed sequence of child time series, all of the same
// element TSMeta.
type listValue struct {
	children []*TSValue
	elemTS   func() *TSMeta
}

// MakeListTSMeta builds a TSMeta for a TSL time series of elemTS
// children.
func MakeListTSMeta(name string, elemTS func() *TSMeta) *TSMeta {
	m := &TSMeta{TypeMeta: genericMetaFor(TSL, name), TSKind: TSL}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid: func(tv *TSValue) bool {
			for _, c := range tv.Value.(*listValue).children {
				if !c.AllValid() {
					return false
				}
			}
			return true
		},
		Value: func(tv *TSValue) any {
			lv := tv.Value.(*listValue)
			out := make([]any, len(lv.children))
			for i, c := range lv.children {
				out[i] = c.Meta.Ops.Value(c)
			}
			return out
		},
		DeltaValue: func(tv *TSValue) any {
			lv := tv.Value.(*listValue)
			out := make(map[int]any, len(tv.Delta.Slots))
			for _, i := range tv.Delta.Slots {
				out[i] = lv.children[i].Meta.Ops.Value(lv.children[i])
			}
			return out
		},
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			values, ok := v.([]any)
			if !ok {
				return fmt.Errorf("%w: TSL set_value expects []any, got %T", herrors.ErrSchemaMismatch, v)
			}
			lv := tv.Value.(*listValue)
			lv.children = make([]*TSValue, len(values))
			if tv.Delta == nil {
				tv.Delta = &Delta{}
			}
			tv.Delta.Reset()
			for i, ev := range values {
				lv.children[i] = New(lv.elemTS())
				if err := lv.children[i].Meta.Ops.SetValue(lv.children[i], ev, now); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				tv.Delta.Slots = append(tv.Delta.Slots, i)
			}
			tv.Time = now
			return nil
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			patch, ok := delta.(map[int]any)
			if !ok {
				return fmt.Errorf("%w: TSL apply_delta expects map[int]any, got %T", herrors.ErrSchemaMismatch, delta)
			}
			lv := tv.Value.(*listValue)
			if tv.Delta == nil {
				tv.Delta = &Delta{}
			}
			tv.Delta.Reset()
			for i, ev := range patch {
				if i < 0 {
					return fmt.Errorf("negative list index %d", i)
				}
				for i >= len(lv.children) {
					lv.children = append(lv.children, New(lv.elemTS()))
				}
				if err := lv.children[i].Meta.Ops.SetValue(lv.children[i], ev, now); err != nil {
					return fmt.Errorf("element %d: %w", i, err)
				}
				tv.Delta.Slots = append(tv.Delta.Slots, i)
			}
			tv.Time = now
			return nil
		},
		Invalidate: func(tv *TSValue) {
			tv.Time = hgtime.MinDT
			for _, c := range tv.Value.(*listValue).children {
				c.Meta.Ops.Invalidate(c)
			}
		},
		ChildCount: func(tv *TSValue) int { return len(tv.Value.(*listValue).children) },
		ChildAt: func(tv *TSValue, i int, now hgtime.EngineTime) (*TSValue, error) {
			lv := tv.Value.(*listValue)
			if i < 0 || i >= len(lv.children) {
				return nil, fmt.Errorf("list index %d out of range", i)
			}
			return lv.children[i], nil
		},
	}
	return m
}

// NewList allocates an empty TSL TSValue whose elements are built from
// elemTS on demand.
func NewList(meta *TSMeta, elemTS func() *TSMeta) *TSValue {
	tv := New(meta)
	tv.Value = &listValue{elemTS: elemTS}
	return tv
}
