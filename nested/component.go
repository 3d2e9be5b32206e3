package nested

import (
	"context"
	"fmt"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
)

// InputProjection names the child-graph node that one of the owner's
// inputs feeds, by index into the child's node list (spec §6's
// input_node_ids: input name -> sink node index). ComponentNode writes
// the value into that node's MainOutput; ChildInputName is not read.
type InputProjection struct {
	ChildNodeIndex int
	ChildInputName string
}

// ComponentNode owns exactly one child graph, built from a
// ChildGraphBuilder at start and torn down at stop, with named input
// projections and one output projection (spec §4.6's ComponentNode).
type ComponentNode struct {
	Owner *node.Node
	Build ChildGraphBuilder

	// InputProjections maps one of Owner's input names to where that
	// value is forwarded inside the child graph.
	InputProjections map[string]InputProjection
	// OutputNodeIndex names the child node whose MainOutput is copied
	// back into Owner.MainOutput every tick it changes (spec §6's
	// output_node_id).
	OutputNodeIndex int

	child *childGraph
}

// NewComponentNode wires owner's Eval/OnStart/OnStop to drive a single
// child graph built by build.
func NewComponentNode(owner *node.Node, build ChildGraphBuilder, inputProjections map[string]InputProjection, outputNodeIndex int) *ComponentNode {
	cn := &ComponentNode{Owner: owner, Build: build, InputProjections: inputProjections, OutputNodeIndex: outputNodeIndex}
	owner.OnStart = cn.onStart
	owner.OnStop = cn.onStop
	owner.Eval = cn.doEval
	return cn
}

func (cn *ComponentNode) onStart(n *node.Node) error {
	g, err := cn.Build(n.GraphPath.Child(n.Index).Child(0), n)
	if err != nil {
		return fmt.Errorf("nested: component %q: building child graph: %w", n.Name, err)
	}
	cn.child = newChildGraph(nil, g)
	return cn.child.start()
}

func (cn *ComponentNode) onStop(n *node.Node) error {
	if cn.child == nil {
		return nil
	}
	err := cn.child.stop()
	cn.child = nil
	return err
}

func (cn *ComponentNode) doEval(n *node.Node, now hgtime.EngineTime) error {
	if cn.child == nil {
		return nil
	}
	for name, proj := range cn.InputProjections {
		in, ok := n.Inputs[name]
		if !ok || !in.Modified(now) {
			continue
		}
		v, err := in.Value()
		if err != nil {
			return err
		}
		if err := cn.projectInto(proj, v, now); err != nil {
			return err
		}
	}
	if err := cn.child.driveTo(context.Background(), now); err != nil {
		return err
	}
	return cn.collectOutput(now)
}

func (cn *ComponentNode) projectInto(proj InputProjection, v any, now hgtime.EngineTime) error {
	if proj.ChildNodeIndex < 0 || proj.ChildNodeIndex >= len(cn.child.graph.Nodes) {
		return fmt.Errorf("nested: input projection references out-of-range child node %d", proj.ChildNodeIndex)
	}
	childNode := cn.child.graph.Nodes[proj.ChildNodeIndex]
	if childNode.MainOutput == nil {
		return fmt.Errorf("nested: child node %q has no main output to project into", childNode.Name)
	}
	return childNode.MainOutput.SetValue(v, now)
}

func (cn *ComponentNode) collectOutput(now hgtime.EngineTime) error {
	if cn.OutputNodeIndex < 0 || cn.OutputNodeIndex >= len(cn.child.graph.Nodes) {
		return fmt.Errorf("nested: output projection references out-of-range child node %d", cn.OutputNodeIndex)
	}
	out := cn.child.graph.Nodes[cn.OutputNodeIndex].MainOutput
	if out == nil || cn.Owner.MainOutput == nil || !out.Modified(now) {
		return nil
	}
	v, err := out.Value()
	if err != nil {
		return err
	}
	return cn.Owner.MainOutput.SetValue(v, now)
}

// ChildGraphs implements ChildGraphEnumerator.
func (cn *ComponentNode) ChildGraphs() []*node.Graph {
	if cn.child == nil {
		return nil
	}
	return []*node.Graph{cn.child.graph}
}
