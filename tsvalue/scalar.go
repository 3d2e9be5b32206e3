package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/typeregistry"
)

// MakeScalarTSMeta builds a TSMeta for a plain scalar time series
// carrying values of elem's shape.
func MakeScalarTSMeta(elem *typeregistry.TypeMeta) *TSMeta {
	m := &TSMeta{
		TypeMeta: genericMetaFor(TS, elem.Name),
		TSKind:   TS,
		Elem:     elem,
	}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid:         func(tv *TSValue) bool { return tv.Time.Valid() },
		Value:            func(tv *TSValue) any { return tv.Value },
		DeltaValue:       func(tv *TSValue) any { return tv.Value },
		SetValue: func(tv *TSValue, v any, now hgtime.EngineTime) error {
			if elem.Ops.Assignable != nil && !elem.Ops.Assignable(v) {
				return fmt.Errorf("%w: scalar %s cannot hold %T", herrors.ErrSchemaMismatch, elem.Name, v)
			}
			if elem.Ops.CopyValue != nil {
				v = elem.Ops.CopyValue(v)
			}
			tv.Value = v
			tv.Time = now
			return nil
		},
		ApplyDelta: func(tv *TSValue, delta any, now hgtime.EngineTime) error {
			// Scalars replace wholesale; apply_delta degenerates to set_value.
			return m.Ops.SetValue(tv, delta, now)
		},
		Invalidate: func(tv *TSValue) { tv.Time = hgtime.MinDT },
		ChildAt:    func(tv *TSValue, i int, now hgtime.EngineTime) (*TSValue, error) { return nil, fmt.Errorf("scalar has no children") },
		ChildCount: func(tv *TSValue) int { return 0 },
	}
	return m
}

// NewScalar allocates a scalar TSValue for meta whose value starts as
// the zero value of an int, float, bool or string element (nil for
// other element kinds).
func NewScalar(meta *TSMeta) *TSValue {
	tv := New(meta)
	if meta.Elem != nil {
		switch meta.Elem.Kind {
		case typeregistry.KindScalarInt:
			tv.Value = int64(0)
		case typeregistry.KindScalarFloat:
			tv.Value = float64(0)
		case typeregistry.KindScalarBool:
			tv.Value = false
		case typeregistry.KindScalarString:
			tv.Value = ""
		}
	}
	return tv
}

// signalElem is the element TypeMeta of a SIGNAL time series: a
// valueless tick marker whose Value is always struct{}{}.
var signalElem = &typeregistry.TypeMeta{Kind: typeregistry.KindScalarBool, Name: "signal"}

// MakeSignalTSMeta builds the TSMeta for signal (valueless) time series.
func MakeSignalTSMeta() *TSMeta {
	m := &TSMeta{TypeMeta: genericMetaFor(SIGNAL, "signal"), TSKind: SIGNAL, Elem: signalElem}
	m.Ops = TSOps{
		LastModifiedTime: func(tv *TSValue) hgtime.EngineTime { return tv.Time },
		Modified:         func(tv *TSValue, now hgtime.EngineTime) bool { return tv.Time.Modified(now) },
		Valid:            func(tv *TSValue) bool { return tv.Time.Valid() },
		AllValid:         func(tv *TSValue) bool { return tv.Time.Valid() },
		Value:            func(tv *TSValue) any { return struct{}{} },
		DeltaValue:       func(tv *TSValue) any { return struct{}{} },
		SetValue: func(tv *TSValue, _ any, now hgtime.EngineTime) error {
			tv.Time = now
			return nil
		},
		ApplyDelta: func(tv *TSValue, _ any, now hgtime.EngineTime) error {
			tv.Time = now
			return nil
		},
		Invalidate: func(tv *TSValue) { tv.Time = hgtime.MinDT },
		ChildCount: func(tv *TSValue) int { return 0 },
	}
	return m
}
