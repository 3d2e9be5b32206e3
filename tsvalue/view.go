package tsvalue

import (
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
)

// resolve walks vd.Path from vd.TV through successive ChildAt calls,
// returning the leaf TSValue the path names. An empty path resolves to
// vd.TV itself. This is the one place path-walking happens; every
// other operation dispatches through the resolved TSValue's Ops.
func (vd ViewData) resolve(now hgtime.EngineTime) (*TSValue, error) {
	cur := vd.TV
	for _, idx := range vd.Path {
		child, err := cur.Meta.Ops.ChildAt(cur, idx, now)
		if err != nil {
			return nil, err
		}
		cur = child
	}
	return cur, nil
}

// TSView is the read-side wrapper over a ViewData, dispatching every
// operation through the resolved TSValue's TSOps vtable. It is never
// specialized by TS kind at the call site; the kind-specific behavior
// lives entirely in the Ops functions installed by the Make*TSMeta
// constructors.
type TSView struct{ vd ViewData }

// NewTSView wraps vd as a TSView.
func NewTSView(vd ViewData) TSView { return TSView{vd: vd} }

func (v TSView) resolved(now hgtime.EngineTime) (*TSValue, error) { return v.vd.resolve(now) }

// LastModifiedTime returns the resolved node's last modification time.
func (v TSView) LastModifiedTime() hgtime.EngineTime {
	tv, err := v.resolved(hgtime.MinDT)
	if err != nil {
		return hgtime.MinDT
	}
	return tv.LastModifiedTime()
}

// Modified reports whether the resolved node was modified at now.
func (v TSView) Modified(now hgtime.EngineTime) bool {
	tv, err := v.resolved(now)
	if err != nil {
		return false
	}
	return tv.Modified(now)
}

// Valid reports whether the resolved node has ever been set.
func (v TSView) Valid() bool {
	tv, err := v.resolved(hgtime.MinDT)
	if err != nil {
		return false
	}
	return tv.Valid()
}

// Value returns the resolved node's current value.
func (v TSView) Value() (any, error) {
	tv, err := v.resolved(hgtime.MinDT)
	if err != nil {
		return nil, err
	}
	return tv.Meta.Ops.Value(tv), nil
}

// DeltaValue returns the resolved node's tick-scoped delta value.
func (v TSView) DeltaValue() (any, error) {
	tv, err := v.resolved(hgtime.MinDT)
	if err != nil {
		return nil, err
	}
	if tv.Meta.Ops.DeltaValue == nil {
		return nil, fmt.Errorf("TSMeta %s has no delta_value op", tv.Meta.Name)
	}
	return tv.Meta.Ops.DeltaValue(tv), nil
}

// ChildAt returns a TSView for child i of the resolved node.
func (v TSView) ChildAt(i int, now hgtime.EngineTime) (TSView, error) {
	return NewTSView(ViewData{TV: v.vd.TV, Path: append(append(ShortPath{}, v.vd.Path...), i)}), checkChild(v, i, now)
}

func checkChild(v TSView, i int, now hgtime.EngineTime) error {
	tv, err := v.resolved(now)
	if err != nil {
		return err
	}
	_, err = tv.Meta.Ops.ChildAt(tv, i, now)
	return err
}

// ChildByName returns a TSView for the named child of the resolved
// node (TSB field or TSD key).
func (v TSView) ChildByName(name string, now hgtime.EngineTime) (TSView, error) {
	tv, err := v.resolved(now)
	if err != nil {
		return TSView{}, err
	}
	if tv.Meta.Ops.ChildByName == nil {
		return TSView{}, fmt.Errorf("TSMeta %s has no child_by_name op", tv.Meta.Name)
	}
	child, err := tv.Meta.Ops.ChildByName(tv, name, now)
	if err != nil {
		return TSView{}, err
	}
	return NewTSView(child.MakeViewData(nil)), nil
}

// TSOutputView is the mutator-side wrapper over a ViewData.
type TSOutputView struct{ TSView }

// NewTSOutputView wraps vd as a TSOutputView.
func NewTSOutputView(vd ViewData) TSOutputView { return TSOutputView{NewTSView(vd)} }

// SetValue dispatches set_value per spec §4.2's contract: schema
// check, copy-assign, stamp time, observer fan-out (this method
// notifies the whole-value Observer list after Ops.SetValue returns).
func (v TSOutputView) SetValue(value any, now hgtime.EngineTime) error {
	tv, err := v.resolved(now)
	if err != nil {
		return err
	}
	if err := tv.Meta.Ops.SetValue(tv, value, now); err != nil {
		return err
	}
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
	return nil
}

// ApplyDelta dispatches apply_delta: only delta-named slots are
// touched.
func (v TSOutputView) ApplyDelta(delta any, now hgtime.EngineTime) error {
	tv, err := v.resolved(now)
	if err != nil {
		return err
	}
	if err := tv.Meta.Ops.ApplyDelta(tv, delta, now); err != nil {
		return err
	}
	if tv.Observer != nil {
		tv.Observer.NotifyAll(now)
	}
	return nil
}

// MarkInvalid resets the resolved node to "never set".
func (v TSOutputView) MarkInvalid() error {
	tv, err := v.resolved(hgtime.MinDT)
	if err != nil {
		return err
	}
	tv.Meta.Ops.Invalidate(tv)
	return nil
}

// TSInputView is the read-only, binding-aware wrapper an input exposes
// to node code. It resolves through the input's LinkTarget when
// peered, or reads its own owned TSValue otherwise.
type TSInputView struct {
	TSView
	Link *LinkTarget
}

// NewTSInputView wraps vd and an optional link as a TSInputView.
func NewTSInputView(vd ViewData, link *LinkTarget) TSInputView {
	return TSInputView{TSView: NewTSView(vd), Link: link}
}

// ConstValueView and ValueView are the narrowest read-only wrappers,
// used where only the current value (no modification bookkeeping) is
// needed, e.g. reading a const-bound input once at node construction.
type ConstValueView struct{ value any }

// NewConstValueView wraps a plain, unchanging value.
func NewConstValueView(v any) ConstValueView { return ConstValueView{value: v} }

// Value returns the wrapped constant.
func (c ConstValueView) Value() any { return c.value }

// ValueView is a read-only snapshot of a TSView's current value, taken
// once and not live-updating.
type ValueView struct{ value any }

// Snapshot takes a ValueView of v's current value.
func Snapshot(v TSView) (ValueView, error) {
	val, err := v.Value()
	if err != nil {
		return ValueView{}, err
	}
	return ValueView{value: val}, nil
}

// Value returns the snapshotted value.
func (v ValueView) Value() any { return v.value }
