package node

import (
	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/hgtime"
)

// Activator is the scheduler-facing half of activation: a node tells
// its graph's Activator that it has work at a given engine time,
// either because an active input was modified or because its
// NodeScheduler fired a future wake-up. schedule.Scheduler implements
// this; node does not import schedule to avoid a cycle.
type Activator interface {
	Activate(nodeIndex int, at hgtime.EngineTime)
}

// EvalFunc is a node's compute body, dispatched by function pointer
// rather than a method on a concrete per-kind type: an opcode-dispatch-
// table idiom, here generalized to graph nodes instead of byte-buffer
// kernels.
type EvalFunc func(n *Node, now hgtime.EngineTime) error

// LifecycleFunc is an optional start/stop hook.
type LifecycleFunc func(n *Node) error

// NodeScheduler maps future engine times to opaque tags for one node,
// spec §4.5's "scheduled wake-ups": on wake, DoEval inspects the tag(s)
// queued for now.
type NodeScheduler struct {
	owner     *Node
	entries   map[hgtime.EngineTime][]any
	activator Activator
}

func newNodeScheduler(owner *Node) *NodeScheduler {
	return &NodeScheduler{owner: owner, entries: make(map[hgtime.EngineTime][]any)}
}

// ScheduleAt queues tag for delivery when the owning graph reaches at,
// and tells the activator the owning node has work at that time.
func (ns *NodeScheduler) ScheduleAt(at hgtime.EngineTime, tag any) {
	ns.entries[at] = append(ns.entries[at], tag)
	if ns.activator != nil {
		ns.activator.Activate(ns.owner.Index, at)
	}
}

// TagsAt pops and returns the tags queued for exactly now, if any.
func (ns *NodeScheduler) TagsAt(now hgtime.EngineTime) []any {
	tags, ok := ns.entries[now]
	if !ok {
		return nil
	}
	delete(ns.entries, now)
	return tags
}

// HasEntryAt reports whether a wake-up is queued for exactly now,
// without consuming it (spec invariant 1(b): "n.scheduler has an entry
// at t").
func (ns *NodeScheduler) HasEntryAt(now hgtime.EngineTime) bool {
	_, ok := ns.entries[now]
	return ok
}

// Node is one vertex of a graph: an index, the owning graph's id path,
// a name/kind pair standing in for the spec's NodeSignature, its
// inputs and outputs, a NodeScheduler for self-scheduled wake-ups, and
// the life-cycle guard flags from spec §3.6.
type Node struct {
	Index     int
	GraphPath GraphID
	Name      string
	Kind      string

	Inputs      map[string]*Input
	MainOutput  *Output
	ErrorOutput *Output
	StateOutput *Output

	Scheduler *NodeScheduler
	Eval      EvalFunc
	OnStart   LifecycleFunc
	OnStop    LifecycleFunc

	activator Activator

	isStarted  bool
	isStarting bool
	isStopping bool
}

// NewNode allocates a Node at index within the graph whose id path is
// graphPath, initialised by InitNode.
func NewNode(index int, graphPath GraphID, name, kind string) *Node {
	n := &Node{}
	InitNode(n, index, graphPath, name, kind)
	return n
}

// InitNode initialises an already-allocated Node in place, letting a
// caller (the builder's arena) own the Node's backing storage as part
// of a larger contiguous slab rather than a one-off heap allocation.
func InitNode(n *Node, index int, graphPath GraphID, name, kind string) {
	n.Index = index
	n.GraphPath = graphPath
	n.Name = name
	n.Kind = kind
	n.Inputs = make(map[string]*Input)
	n.Scheduler = newNodeScheduler(n)
}

// SetActivator wires n (and its NodeScheduler) to a, called once by
// the builder/graph when the owning graph's scheduler is known.
func (n *Node) SetActivator(a Activator) {
	n.activator = a
	n.Scheduler.activator = a
}

// NotifyModified implements observe.Notifiable: an active input of n
// was modified at now, so n has work at now.
func (n *Node) NotifyModified(now hgtime.EngineTime) {
	if n.activator != nil {
		n.activator.Activate(n.Index, now)
	}
}

// NotifyRemoved implements observe.Notifiable. A node does not react to
// the removal of an output it observes, so this is a no-op.
func (n *Node) NotifyRemoved() {}

// Start transitions created/stopped -> started, idempotent-guarded per
// spec §3.6.
func (n *Node) Start() error {
	if n.isStarted {
		return herrors.ErrAlreadyStarted
	}
	n.isStarting = true
	defer func() { n.isStarting = false }()
	if n.OnStart != nil {
		if err := n.OnStart(n); err != nil {
			return err
		}
	}
	n.isStarted = true
	return nil
}

// Stop transitions started -> stopped.
func (n *Node) Stop() error {
	if !n.isStarted {
		return herrors.ErrNotStarted
	}
	n.isStopping = true
	defer func() { n.isStopping = false }()
	if n.OnStop != nil {
		if err := n.OnStop(n); err != nil {
			return err
		}
	}
	n.isStarted = false
	return nil
}

// IsStarted, IsStarting, IsStopping expose the life-cycle guard flags.
func (n *Node) IsStarted() bool  { return n.isStarted }
func (n *Node) IsStarting() bool { return n.isStarting }
func (n *Node) IsStopping() bool { return n.isStopping }

// DoEval invokes the node's compute body at now, if any (nodes such as
// pure routing stubs may have none).
func (n *Node) DoEval(now hgtime.EngineTime) error {
	if n.Eval == nil {
		return nil
	}
	return n.Eval(n, now)
}
