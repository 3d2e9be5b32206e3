package nested

import (
	"context"
	"fmt"
	"sort"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
)

// NonAssociativeReduceNode maintains a linear chain of combiner child
// graphs, per spec §4.6: element 0's lhs is the zero value, each
// subsequent element's lhs is the previous element's output. Used for
// operators where combine(a, combine(b, c)) != combine(combine(a, b), c)
// and the evaluation order must be a single deterministic chain rather
// than ReduceNode's balanced tree.
type NonAssociativeReduceNode struct {
	Owner          *node.Node
	KeyInputName   string
	CombineBuilder CombinerBuilder
	Zero           any

	chain []*childGraph // index i combines chain output (i-1) with leaf i
}

// NewNonAssociativeReduceNode wires owner's Eval/OnStop to drive the
// chain.
func NewNonAssociativeReduceNode(owner *node.Node, keyInputName string, build CombinerBuilder, zero any) *NonAssociativeReduceNode {
	rn := &NonAssociativeReduceNode{Owner: owner, KeyInputName: keyInputName, CombineBuilder: build, Zero: zero}
	owner.Eval = rn.doEval
	owner.OnStop = rn.onStop
	return rn
}

func (rn *NonAssociativeReduceNode) doEval(n *node.Node, now hgtime.EngineTime) error {
	in, ok := n.Inputs[rn.KeyInputName]
	if !ok {
		return fmt.Errorf("nested: non-associative reduce node %q has no key input %q", n.Name, rn.KeyInputName)
	}
	tv := in.TSValue()
	if tv == nil || !tv.Modified(now) {
		return nil
	}

	keys := tv.Keys()
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })

	if err := rn.resize(n, len(keys)); err != nil {
		return err
	}

	acc := rn.Zero
	for i, key := range keys {
		v, err := leafValue(tv, key, now)
		if err != nil {
			return err
		}
		cg := rn.chain[i]
		if err := cg.graph.Nodes[0].MainOutput.SetValue(acc, now); err != nil {
			return err
		}
		if err := cg.graph.Nodes[1].MainOutput.SetValue(v, now); err != nil {
			return err
		}
		if err := cg.driveTo(context.Background(), now); err != nil {
			return err
		}
		out := cg.graph.Nodes[2].MainOutput
		if out == nil {
			return fmt.Errorf("nested: non-associative reduce node %q: chain link %d has no main output", n.Name, i)
		}
		acc, err = out.Value()
		if err != nil {
			return err
		}
	}

	if n.MainOutput != nil {
		return n.MainOutput.SetValue(acc, now)
	}
	return nil
}

// resize grows or shrinks the chain to exactly n links, tearing down
// any surplus links from the tail (the chain is ordered, so only the
// tail can become stale when the key count shrinks).
func (rn *NonAssociativeReduceNode) resize(owner *node.Node, n int) error {
	for len(rn.chain) > n {
		last := rn.chain[len(rn.chain)-1]
		if err := last.stop(); err != nil {
			return err
		}
		rn.chain = rn.chain[:len(rn.chain)-1]
	}
	for len(rn.chain) < n {
		id := owner.GraphPath.Child(owner.Index).Child(len(rn.chain))
		g, err := rn.CombineBuilder(id, owner)
		if err != nil {
			return fmt.Errorf("nested: non-associative reduce node %q: building chain link %d: %w", owner.Name, len(rn.chain), err)
		}
		if len(g.Nodes) < 3 {
			return fmt.Errorf("nested: non-associative reduce node %q: combiner graph must have 3 nodes (lhs, rhs, combine)", owner.Name)
		}
		cg := newChildGraph(len(rn.chain), g)
		if err := cg.start(); err != nil {
			return err
		}
		rn.chain = append(rn.chain, cg)
	}
	return nil
}

func (rn *NonAssociativeReduceNode) onStop(n *node.Node) error {
	for len(rn.chain) > 0 {
		last := rn.chain[len(rn.chain)-1]
		if err := last.stop(); err != nil {
			return err
		}
		rn.chain = rn.chain[:len(rn.chain)-1]
	}
	return nil
}

// ChildGraphs implements ChildGraphEnumerator.
func (rn *NonAssociativeReduceNode) ChildGraphs() []*node.Graph {
	out := make([]*node.Graph, 0, len(rn.chain))
	for _, cg := range rn.chain {
		out = append(out, cg.graph)
	}
	return out
}
