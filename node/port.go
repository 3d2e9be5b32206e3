package node

import (
	"fmt"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/observe"
	"github.com/sbl8/hgraph/tsvalue"
)

// Output is a node's mutator-side port: a TSValue plus the bookkeeping
// needed to avoid re-notifying dependents twice within the same tick
// when a node's compute body touches the output more than once.
type Output struct {
	TV               *tsvalue.TSValue
	view             tsvalue.TSOutputView
	hasLastNotified  bool
	lastNotifiedTick hgtime.EngineTime
}

// NewOutput wraps tv as an Output.
func NewOutput(tv *tsvalue.TSValue) *Output {
	return &Output{TV: tv, view: tsvalue.NewTSOutputView(tv.MakeViewData(nil))}
}

// SetValue replaces the output's value wholesale at now.
func (o *Output) SetValue(v any, now hgtime.EngineTime) error {
	return o.view.SetValue(v, now)
}

// ApplyResult is the push-source entry point: a dequeued message is
// applied to the output exactly as a wholesale set_value. Kept as a
// distinct method name from SetValue because node authors call it from
// a different contract (message application, §6 push-source sender
// interface) even though the underlying dispatch is identical.
func (o *Output) ApplyResult(v any, now hgtime.EngineTime) error {
	return o.SetValue(v, now)
}

// ApplyDelta patches only the delta-named slots at now.
func (o *Output) ApplyDelta(delta any, now hgtime.EngineTime) error {
	return o.view.ApplyDelta(delta, now)
}

// MarkModified stamps now and fans out to this output's own observer
// list without touching the value slot, for nodes whose compute body
// mutates TV's container in place (e.g. through a child view) and must
// signal "something under here changed" once, per spec §4.4's
// no-duplicate-fan-out-within-a-tick rule.
func (o *Output) MarkModified(now hgtime.EngineTime) {
	if o.hasLastNotified && o.lastNotifiedTick == now {
		return
	}
	o.hasLastNotified = true
	o.lastNotifiedTick = now
	o.TV.Time = now
	if o.TV.Observer != nil {
		o.TV.Observer.NotifyAll(now)
	}
}

// MarkModifiedChildren records slots as the tick's delta and marks the
// output modified at now.
func (o *Output) MarkModifiedChildren(slots []int, now hgtime.EngineTime) {
	if o.TV.Delta == nil {
		o.TV.Delta = &tsvalue.Delta{}
	}
	if o.TV.Time != now {
		o.TV.Delta.Reset()
	}
	o.TV.Delta.Slots = append(o.TV.Delta.Slots, slots...)
	o.MarkModified(now)
}

// MarkInvalid resets the output to "never set" without recursing into
// children (a shallow reset, distinct from Invalidate).
func (o *Output) MarkInvalid() {
	o.TV.Time = hgtime.MinDT
}

// Invalidate recursively invalidates the output and every child.
func (o *Output) Invalidate() {
	o.TV.Meta.Ops.Invalidate(o.TV)
}

// Clear invalidates the output and drops any pending delta.
func (o *Output) Clear() {
	o.Invalidate()
	if o.TV.Delta != nil {
		o.TV.Delta.Reset()
	}
}

// Value returns the output's current value.
func (o *Output) Value() (any, error) { return o.view.Value() }

// LastModifiedTime returns the output's last modification time.
func (o *Output) LastModifiedTime() hgtime.EngineTime { return o.TV.LastModifiedTime() }

// Modified reports whether the output was modified at now.
func (o *Output) Modified(now hgtime.EngineTime) bool { return o.TV.Modified(now) }

// Input is a node's read-side port. Per the peered-by-default design
// (see DESIGN.md), every non-REF input aliases its bound output's
// storage directly rather than owning a separate copy kept in sync by
// notification: single-threaded cooperative scheduling makes the two
// strategies behaviorally identical here, so the raw-pointer-aliasing
// optimization the spec's original heritage cared about has no
// counterpart worth building in Go.
type Input struct {
	owner  *Node
	name   string
	meta   *tsvalue.TSMeta
	active bool

	link  *tsvalue.LinkTarget // nil until bound, for non-REF inputs
	refTV *tsvalue.TSValue    // owned storage for REF-kind inputs only
}

// NewInput allocates an unbound input named name on owner, typed meta.
func NewInput(owner *Node, name string, meta *tsvalue.TSMeta) *Input {
	in := &Input{owner: owner, name: name, meta: meta}
	if meta.TSKind == tsvalue.REF {
		in.refTV = tsvalue.NewRef(meta)
	}
	return in
}

// Name returns the input's declared name.
func (in *Input) Name() string { return in.name }

// resolveTV returns the TSValue this input currently reads through.
func (in *Input) resolveTV() *tsvalue.TSValue {
	if in.refTV != nil {
		return in.refTV
	}
	if in.link == nil {
		return nil
	}
	return in.link.Target
}

// BindOutput binds in to out at now. For a REF input this rebinds the
// REF's target with sampled semantics (spec §3.5); for every other kind
// it checks meta identity and installs a peered LinkTarget.
func (in *Input) BindOutput(out *Output, now hgtime.EngineTime) error {
	if in.refTV != nil {
		in.refTV.Rebind(out.TV, now)
		if in.active {
			in.owner.registerOn(out.TV.Observer)
		}
		return nil
	}
	if in.meta != out.TV.Meta {
		return fmt.Errorf("input %q: %w: expected %s, got %s", in.name, herrors.ErrSchemaMismatch, in.meta.Name, out.TV.Meta.Name)
	}
	in.UnbindOutput()
	in.link = tsvalue.Bind(out.TV, true)
	if in.active {
		in.owner.registerOn(out.TV.Observer)
	}
	return nil
}

// UnbindOutput detaches in from whatever output it is bound to,
// deregistering the owning node's notifier first.
func (in *Input) UnbindOutput() {
	tv := in.resolveTV()
	if tv != nil && in.active && tv.Observer != nil {
		tv.Observer.Remove(in.owner)
	}
	if in.refTV == nil {
		in.link = nil
	}
}

// MakeActive marks in as an active input: only active inputs cause
// node activation on modification.
func (in *Input) MakeActive() {
	if in.active {
		return
	}
	in.active = true
	if tv := in.resolveTV(); tv != nil && tv.Observer != nil {
		in.owner.registerOn(tv.Observer)
	}
}

// MakePassive marks in passive, deregistering the owning node's
// notifier from the bound output (if any).
func (in *Input) MakePassive() {
	if !in.active {
		return
	}
	in.active = false
	if tv := in.resolveTV(); tv != nil && tv.Observer != nil {
		tv.Observer.Remove(in.owner)
	}
}

// Active reports whether in currently causes node activation.
func (in *Input) Active() bool { return in.active }

// View returns a TSInputView over the currently bound target.
func (in *Input) View() tsvalue.TSInputView {
	tv := in.resolveTV()
	if tv == nil {
		return tsvalue.TSInputView{}
	}
	return tsvalue.NewTSInputView(tv.MakeViewData(nil), in.link)
}

// Value returns the current value of whatever in is bound to.
func (in *Input) Value() (any, error) {
	tv := in.resolveTV()
	if tv == nil {
		return nil, fmt.Errorf("input %q is unbound", in.name)
	}
	return tsvalue.NewTSView(tv.MakeViewData(nil)).Value()
}

// TSValue returns the raw TSValue in currently reads through, or nil if
// unbound. Exposed for callers (nested-graph nodes) that need
// collection-specific operations (TSD/TSS delta inspection, keys,
// size) beyond the generic View API.
func (in *Input) TSValue() *tsvalue.TSValue { return in.resolveTV() }

// Modified reports whether the bound target was modified at now.
func (in *Input) Modified(now hgtime.EngineTime) bool {
	tv := in.resolveTV()
	if tv == nil {
		return false
	}
	return tv.Modified(now)
}

// registerOn adds owner as a Notifiable to list, used both by Input
// activation and REF rebinding.
func (n *Node) registerOn(list *observe.List) {
	if list != nil {
		list.Add(n)
	}
}
