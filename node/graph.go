package node

import (
	"strconv"
	"strings"

	"github.com/sbl8/hgraph/herrors"
)

// GraphID is an ordered sequence of ints: empty for the root graph,
// with nested graphs appending their owning node's index and a
// sub-graph tag.
type GraphID []int

// String renders id as dot-separated integers, e.g. "2.0" for the
// first child graph of node 2. Used for logging/tracing.
func (id GraphID) String() string {
	parts := make([]string, len(id))
	for i, v := range id {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Child returns a new GraphID extending id with tag.
func (id GraphID) Child(tag int) GraphID {
	child := make(GraphID, len(id)+1)
	copy(child, id)
	child[len(id)] = tag
	return child
}

// Graph is one instance of a node graph: a root graph (Parent == nil)
// or a nested graph owned by a NestedNode. Nodes evaluate in Nodes
// index order, the order the builder imposes during construction
// (spec §4.5's "Ordering guarantees").
type Graph struct {
	ID     GraphID
	Parent *Node
	Nodes  []*Node
	Traits *Traits

	PushSourceNodes []int
	PullSourceNodes []int

	started  bool
	starting bool
	stopping bool
}

// NewGraph allocates an empty graph with the given id and parent
// (nil for a root graph). traits is inherited (parent-chained) from
// the owning graph's Traits, or nil to start a fresh root.
func NewGraph(id GraphID, parent *Node, traits *Traits) *Graph {
	t := traits
	if t == nil {
		t = NewTraits(nil)
	}
	return &Graph{ID: id, Parent: parent, Traits: t}
}

// AddNode appends n to the graph, assigning n.Index to its position.
func (g *Graph) AddNode(n *Node) {
	n.Index = len(g.Nodes)
	n.GraphPath = g.ID
	g.Nodes = append(g.Nodes, n)
}

// IsStarted, IsStarting, IsStopping expose the graph's life-cycle
// guard flags.
func (g *Graph) IsStarted() bool  { return g.started }
func (g *Graph) IsStarting() bool { return g.starting }
func (g *Graph) IsStopping() bool { return g.stopping }

// Start starts every node in index order, idempotent-guarded.
func (g *Graph) Start() error { return g.StartObserved(nil, nil) }

// StartObserved is Start with optional before/after hooks run around each
// node's Start, for a graph executor's per-node life-cycle callbacks
// (spec §6's life-cycle observer). Either hook may be nil.
func (g *Graph) StartObserved(before, after func(*Node) error) error {
	if g.started {
		return herrors.ErrAlreadyStarted
	}
	g.starting = true
	defer func() { g.starting = false }()
	for _, n := range g.Nodes {
		if before != nil {
			if err := before(n); err != nil {
				return err
			}
		}
		if err := n.Start(); err != nil {
			return err
		}
		if after != nil {
			if err := after(n); err != nil {
				return err
			}
		}
	}
	g.started = true
	return nil
}

// Stop stops every node in reverse index order.
func (g *Graph) Stop() error { return g.StopObserved(nil, nil) }

// StopObserved is Stop with optional before/after hooks run around each
// node's Stop.
func (g *Graph) StopObserved(before, after func(*Node) error) error {
	if !g.started {
		return herrors.ErrNotStarted
	}
	g.stopping = true
	defer func() { g.stopping = false }()
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		n := g.Nodes[i]
		if before != nil {
			if err := before(n); err != nil {
				return err
			}
		}
		if err := n.Stop(); err != nil {
			return err
		}
		if after != nil {
			if err := after(n); err != nil {
				return err
			}
		}
	}
	g.started = false
	return nil
}
