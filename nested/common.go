// Package nested implements the nested-graph node family: nodes that
// own one or more child graphs and drive them in-line as part of their
// own do_eval, per spec §4.6. Generalizes the sub-graph-of-sub-graphs
// composition pattern (building a larger graph out of smaller ones) to
// runtime-dynamic child graphs rather than compile-time-fixed ones.
//
// Every nested node follows the same three-step eval contract: apply
// input changes into the child graphs' stub source nodes (which, via
// ordinary SetValue notification, activates the right child nodes on
// that child's own scheduler), drive each live child's scheduler to a
// quiescent state for now, then copy each child's designated output
// back into the owner's own output. Values cross the parent/child arena
// boundary by copy, never by aliasing a LinkTarget across graphs,
// because spec §5 reserves arena ownership to one root executor per
// graph — a nested graph's TSValues are never directly reachable from
// the parent's.
package nested

import (
	"context"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/schedule"
)

// ChildGraphBuilder constructs the child graph for one key (or, for
// ComponentNode, the single unconditional child), wired and ready to
// Start. id is the child graph's path (the owner's GraphID extended
// with the owner's node index and a sub-graph tag); parent is the
// nested node that owns the new graph.
type ChildGraphBuilder func(id node.GraphID, parent *node.Node) (*node.Graph, error)

// ChildGraphEnumerator is implemented by every nested-graph node so a
// life-cycle observer can enumerate live child graphs on request (spec
// §4.6's closing sentence).
type ChildGraphEnumerator interface {
	ChildGraphs() []*node.Graph
}

// childGraph pairs one child graph with the scheduler driving it and,
// for MeshNode, its current rank.
type childGraph struct {
	key   any
	graph *node.Graph
	sched *schedule.Scheduler
	rank  int
}

func newChildGraph(key any, g *node.Graph) *childGraph {
	return &childGraph{key: key, graph: g, sched: schedule.New(g, nil)}
}

// driveTo advances the child's scheduler through now, implementing spec
// §4.6(c): "drive the nested evaluation engine... until the child
// reaches a quiescent state for now."
func (cg *childGraph) driveTo(ctx context.Context, now hgtime.EngineTime) error {
	return cg.sched.Advance(ctx, now, schedule.Simulation)
}

func (cg *childGraph) start() error { return cg.graph.Start() }
func (cg *childGraph) stop() error  { return cg.graph.Stop() }
