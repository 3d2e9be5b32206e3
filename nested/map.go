package nested

import (
	"context"
	"fmt"
	"sort"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
)

// KeyChildBuilder builds the child graph for one key, wiring a stub
// source node (at index 0 by convention) that exposes the key's
// per-key value and whatever named child nodes compute from it.
type KeyChildBuilder func(id node.GraphID, parent *node.Node, key any) (*node.Graph, error)

// MapNode maintains one child graph per key of a TSD input, per spec
// §4.6's MapNode/TsdMapNode: on each key added/removed it builds or
// destroys that child graph, forwards the key's per-key input value
// through a stub source node every tick it changes, drives every live
// child to quiescence, and mirrors each child's designated output back
// into Owner.MainOutput (itself a TSD, keyed the same way).
type MapNode struct {
	Owner *node.Node
	// KeyInputName is the name of Owner's TSD input supplying keys.
	KeyInputName string
	Build        KeyChildBuilder
	// StubNodeIndex is the child node index whose MainOutput receives
	// the per-key value every tick the key's input slot changes.
	StubNodeIndex int
	// OutputNodeIndex is the child node index whose MainOutput is
	// copied into Owner.MainOutput's matching key slot.
	OutputNodeIndex int

	children map[any]*childGraph
}

// TsdMapNode is an alias naming the spec's "TsdMapNode" concretely: a
// MapNode keyed by a TSD input (the only key source this port
// implements, since no other collection kind supplies a keyed map of
// independent sub-series).
type TsdMapNode = MapNode

// NewMapNode wires owner's Eval/OnStop to drive per-key child graphs.
func NewMapNode(owner *node.Node, keyInputName string, build KeyChildBuilder, stubNodeIndex, outputNodeIndex int) *MapNode {
	mn := &MapNode{
		Owner:           owner,
		KeyInputName:    keyInputName,
		Build:           build,
		StubNodeIndex:   stubNodeIndex,
		OutputNodeIndex: outputNodeIndex,
		children:        make(map[any]*childGraph),
	}
	owner.Eval = mn.doEval
	owner.OnStop = mn.onStop
	return mn
}

func (mn *MapNode) doEval(n *node.Node, now hgtime.EngineTime) error {
	in, ok := n.Inputs[mn.KeyInputName]
	if !ok {
		return fmt.Errorf("nested: map node %q has no key input %q", n.Name, mn.KeyInputName)
	}
	tv := in.TSValue()
	if tv == nil {
		return nil
	}

	if tv.Modified(now) && tv.Delta != nil {
		for _, key := range tv.Delta.Removed {
			if err := mn.destroyChild(key); err != nil {
				return err
			}
		}
		for _, key := range tv.Delta.Added {
			if err := mn.buildChild(n, key, now); err != nil {
				return err
			}
		}
		for _, key := range tv.Delta.Modified {
			if err := mn.forwardKeyValue(tv, key, now); err != nil {
				return err
			}
		}
	}

	// Drive every live child in a stable order so evaluation is
	// deterministic across runs with the same key set.
	keys := make([]any, 0, len(mn.children))
	for k := range mn.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })

	for _, key := range keys {
		cg := mn.children[key]
		if err := cg.driveTo(context.Background(), now); err != nil {
			return err
		}
		if err := mn.collectOutput(key, cg, now); err != nil {
			return err
		}
	}
	return nil
}

func (mn *MapNode) buildChild(owner *node.Node, key any, now hgtime.EngineTime) error {
	if _, exists := mn.children[key]; exists {
		return nil
	}
	id := owner.GraphPath.Child(owner.Index).Child(len(mn.children))
	g, err := mn.Build(id, owner, key)
	if err != nil {
		return fmt.Errorf("nested: map node %q: building child for key %v: %w", owner.Name, key, err)
	}
	cg := newChildGraph(key, g)
	if err := cg.start(); err != nil {
		return err
	}
	mn.children[key] = cg
	in, ok := owner.Inputs[mn.KeyInputName]
	if ok {
		if tv := in.TSValue(); tv != nil {
			return mn.forwardKeyValue(tv, key, now)
		}
	}
	return nil
}

func (mn *MapNode) destroyChild(key any) error {
	cg, ok := mn.children[key]
	if !ok {
		return nil
	}
	delete(mn.children, key)
	return cg.stop()
}

// forwardKeyValue copies the parent TSD's per-key child value into
// that key's child graph stub source node, the mechanism spec §4.6
// names as "the key is made available to the child through a stub
// source node bound to the key."
func (mn *MapNode) forwardKeyValue(tv *tsvalue.TSValue, key any, now hgtime.EngineTime) error {
	cg, ok := mn.children[key]
	if !ok {
		return nil
	}
	child, err := tv.Meta.Ops.ChildByKey(tv, key, now)
	if err != nil {
		return fmt.Errorf("nested: map node %q: looking up key %v: %w", mn.Owner.Name, key, err)
	}
	v := child.Meta.Ops.Value(child)
	if mn.StubNodeIndex < 0 || mn.StubNodeIndex >= len(cg.graph.Nodes) {
		return fmt.Errorf("nested: stub node index %d out of range", mn.StubNodeIndex)
	}
	stub := cg.graph.Nodes[mn.StubNodeIndex]
	if stub.MainOutput == nil {
		return fmt.Errorf("nested: map node %q stub node %q has no main output", mn.Owner.Name, stub.Name)
	}
	return stub.MainOutput.SetValue(v, now)
}

// ChildGraphs implements ChildGraphEnumerator.
func (mn *MapNode) ChildGraphs() []*node.Graph {
	out := make([]*node.Graph, 0, len(mn.children))
	for _, cg := range mn.children {
		out = append(out, cg.graph)
	}
	return out
}

func (mn *MapNode) onStop(n *node.Node) error {
	for key := range mn.children {
		if err := mn.destroyChild(key); err != nil {
			return err
		}
	}
	return nil
}

func (mn *MapNode) collectOutput(key any, cg *childGraph, now hgtime.EngineTime) error {
	if mn.OutputNodeIndex < 0 || mn.OutputNodeIndex >= len(cg.graph.Nodes) {
		return fmt.Errorf("nested: output projection references out-of-range child node %d", mn.OutputNodeIndex)
	}
	out := cg.graph.Nodes[mn.OutputNodeIndex].MainOutput
	if out == nil || mn.Owner.MainOutput == nil || !out.Modified(now) {
		return nil
	}
	v, err := out.Value()
	if err != nil {
		return err
	}
	return mn.Owner.MainOutput.TV.SetKeyValue(key, v, now)
}
