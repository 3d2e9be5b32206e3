package tsvalue

import (
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/observe"
)

// ShortPath is a small index sequence giving a node-relative path to a
// nested time series (e.g. bundle field index, list element index).
type ShortPath []int

// Delta is a tick-scoped record of which slots of a collection changed
// this tick. Scalars that replace wholesale carry a nil Delta.
type Delta struct {
	// Slots holds modified child indices for TSL, or modified field
	// indices for TSB.
	Slots []int
	// Added, Removed and Modified hold changed keys for TSD/TSS.
	Added    []any
	Removed  []any
	Modified []any
}

// Reset clears a Delta for reuse at the start of a new tick.
func (d *Delta) Reset() {
	if d == nil {
		return
	}
	d.Slots = d.Slots[:0]
	d.Added = d.Added[:0]
	d.Removed = d.Removed[:0]
	d.Modified = d.Modified[:0]
}

// TSValue is the storage unit of one time-series endpoint: five
// parallel slots (value, time, observer, delta, link) plus the meta
// describing how to interpret them.
//
// Invariant: Modified(now) iff Time >= now; Valid iff Time != MinDT;
// AllValid recurses into children (delegated to Meta.Ops.AllValid).
type TSValue struct {
	Meta     *TSMeta
	Value    any
	Time     hgtime.EngineTime
	Observer *observe.List  // every kind: one list for the whole value
	Slots    *observe.Array // collection kinds: one list per child slot
	Delta    *Delta
	Link     *LinkTarget
}

// New allocates a TSValue for meta with its value pre-built and Time
// set to hgtime.MinDT (never set).
func New(meta *TSMeta) *TSValue {
	tv := &TSValue{
		Meta: meta,
		Time: hgtime.MinDT,
	}
	// Collection kinds (TSD/TSS/TSW) get both: Slots for per-key/per-
	// index subscribers, and Observer for whole-collection subscribers
	// (used by nested-graph nodes such as MapNode that must react to
	// "some key changed" without pre-registering on every key).
	switch meta.TSKind {
	case TSD, TSS, TSW:
		tv.Slots = observe.NewArray()
		tv.Observer = observe.NewList()
	default:
		tv.Observer = observe.NewList()
	}
	return tv
}

// ViewData is a non-owning handle naming a TSValue plus the
// node-relative path that produced it. It is the pod passed around by
// value; TSView and its specializations wrap it to provide the typed
// read/write API.
type ViewData struct {
	TV   *TSValue
	Path ShortPath
}

// MakeViewData returns a ViewData bound to tv's slots at path.
func (tv *TSValue) MakeViewData(path ShortPath) ViewData {
	return ViewData{TV: tv, Path: path}
}

// LastModifiedTime dispatches through Meta.Ops.
func (tv *TSValue) LastModifiedTime() hgtime.EngineTime {
	if tv.Meta.Ops.LastModifiedTime != nil {
		return tv.Meta.Ops.LastModifiedTime(tv)
	}
	return tv.Time
}

// Modified dispatches through Meta.Ops, falling back to the universal
// invariant time >= now.
func (tv *TSValue) Modified(now hgtime.EngineTime) bool {
	if tv.Meta.Ops.Modified != nil {
		return tv.Meta.Ops.Modified(tv, now)
	}
	return tv.Time.Modified(now)
}

// Valid reports whether the value has ever been set.
func (tv *TSValue) Valid() bool {
	if tv.Meta.Ops.Valid != nil {
		return tv.Meta.Ops.Valid(tv)
	}
	return tv.Time.Valid()
}

// AllValid recurses into children via Meta.Ops.
func (tv *TSValue) AllValid() bool {
	if tv.Meta.Ops.AllValid != nil {
		return tv.Meta.Ops.AllValid(tv)
	}
	return tv.Valid()
}
