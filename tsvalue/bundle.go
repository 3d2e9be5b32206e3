package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/typeregistry"
)

// bundleValue is the runtime container for a TSB TSValue: one child
// TSValue per named field, in schema order.
type bundleValue struct {
	children []*TSValue
}

// MakeBundleTSMeta builds a TSMeta for a TSB time series whose fields
// are each themselves time series, described by fieldMetas in
// declaration order.
func MakeBundleTSMeta(name string, fieldMetas []typeregistry.NamedField, fieldTS []*TSMeta) *TSMeta {
	m := &TSMeta{
		TypeMeta: genericMetaFor(TSB, name),
		TSKind:   TSB,
		Fields:   fieldMetas,
	}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid: func(tv *TSValue) bool {
			bv := tv.Value.(*bundleValue)
			for _, c := range bv.children {
				if !c.AllValid() {
					return false
				}
			}
			return true
		},
		Value: func(tv *TSValue) any {
			bv := tv.Value.(*bundleValue)
			out := make(map[string]any, len(bv.children))
			for i, f := range fieldMetas {
				out[f.Name] = bv.children[i].Meta.Ops.Value(bv.children[i])
			}
			return out
		},
		DeltaValue: func(tv *TSValue) any {
			out := make(map[string]any)
			for _, i := range tv.Delta.Slots {
				c := tv.Value.(*bundleValue).children[i]
				out[fieldMetas[i].Name] = c.Meta.Ops.Value(c)
			}
			return out
		},
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			fields, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: TSB set_value expects map[string]any, got %T", herrors.ErrSchemaMismatch, v)
			}
			bv := tv.Value.(*bundleValue)
			if tv.Delta == nil {
				tv.Delta = &Delta{}
			}
			tv.Delta.Reset()
			for i, f := range fieldMetas {
				nv, present := fields[f.Name]
				if !present {
					continue
				}
				if err := bv.children[i].Meta.Ops.SetValue(bv.children[i], nv, now); err != nil {
					return fmt.Errorf("field %s: %w", f.Name, err)
				}
				tv.Delta.Slots = append(tv.Delta.Slots, i)
			}
			tv.Time = now
			return nil
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			return m.Ops.SetValue(tv, delta, now)
		},
		Invalidate: func(tv *TSValue) {
			tv.Time = hgtime.MinDT
			for _, c := range tv.Value.(*bundleValue).children {
				c.Meta.Ops.Invalidate(c)
			}
		},
		ChildCount: func(tv *TSValue) int { return len(fieldMetas) },
		ChildAt: func(tv *TSValue, i int, now hgtime.EngineTime) (*TSValue, error) {
			bv := tv.Value.(*bundleValue)
			if i < 0 || i >= len(bv.children) {
				return nil, fmt.Errorf("bundle child index %d out of range", i)
			}
			return bv.children[i], nil
		},
		ChildByName: func(tv *TSValue, name string, now hgtime.EngineTime) (*TSValue, error) {
			for i, f := range fieldMetas {
				if f.Name == name {
					return tv.Value.(*bundleValue).children[i], nil
				}
			}
			return nil, fmt.Errorf("bundle has no field %q", name)
		},
	}
	_ = fieldTS
	return m
}

// NewBundle allocates a zero-valued TSB TSValue whose fields are built
// from fieldTS (parallel to meta.Fields).
func NewBundle(meta *TSMeta, fieldTS []*TSMeta) *TSValue {
	tv := New(meta)
	children := make([]*TSValue, len(fieldTS))
	for i, fm := range fieldTS {
		if fm.TSKind == TS {
			children[i] = NewScalar(fm)
		} else {
			children[i] = New(fm)
		}
	}
	tv.Value = &bundleValue{children: children}
	return tv
}

// SetFieldValue marks field at index i modified at now with value v,
// notifying that field's own observers, and marks the bundle modified
// with the same timestamp, recording i in its delta. The bundle's own
// observer list is not notified.
func (tv *TSValue) SetFieldValue(i int, v any, now hgtime.EngineTime) error {
	bv, ok := tv.Value.(*bundleValue)
	if !ok {
		return fmt.Errorf("not a bundle")
	}
	if i < 0 || i >= len(bv.children) {
		return fmt.Errorf("field index %d out of range", i)
	}
	child := bv.children[i]
	if err := child.Meta.Ops.SetValue(child, v, now); err != nil {
		return err
	}
	if child.Observer != nil {
		child.Observer.NotifyAll(now)
	}
	if tv.Delta == nil {
		tv.Delta = &Delta{}
	}
	if tv.Time != now {
		tv.Delta.Reset()
	}
	tv.Delta.Slots = append(tv.Delta.Slots, i)
	tv.Time = now
	return nil
}
