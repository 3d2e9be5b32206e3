package nested_test

import (
	"testing"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/nested"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

func intValueTS() *tsvalue.TSMeta { return tsvalue.MakeScalarTSMeta(typeregistry.Int) }

// buildDoublerChild builds a 2-node child graph: node 0 is a stub
// source exposing the per-key value, node 1 doubles it.
func buildDoublerChild(id node.GraphID, parent *node.Node, key any) (*node.Graph, error) {
	g := node.NewGraph(id, parent, nil)
	meta := intValueTS()

	stub := node.NewNode(0, g.ID, "stub", "source")
	stub.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(stub)

	compute := node.NewNode(1, g.ID, "double", "compute")
	compute.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	in := node.NewInput(compute, "in", meta)
	compute.Inputs["in"] = in
	in.MakeActive()
	compute.Eval = func(n *node.Node, now hgtime.EngineTime) error {
		v, err := n.Inputs["in"].Value()
		if err != nil {
			return err
		}
		return n.MainOutput.SetValue(v.(int64)*2, now)
	}
	g.AddNode(compute)

	if err := in.BindOutput(stub.MainOutput, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// S3 Map add/remove, adapted to a MapNode doubling each key's value.
func TestMapNodeBuildsAndDestroysChildGraphsOnKeyChanges(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	keyMeta := tsvalue.MakeDictTSMeta("keys", typeregistry.String, intValueTS)

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewDict(keyMeta, intValueTS))
	g.AddNode(src)

	owner := node.NewNode(1, g.ID, "mapper", "map")
	outMeta := tsvalue.MakeDictTSMeta("out", typeregistry.String, intValueTS)
	owner.MainOutput = node.NewOutput(tsvalue.NewDict(outMeta, intValueTS))
	in := node.NewInput(owner, "keys", keyMeta)
	owner.Inputs = map[string]*node.Input{"keys": in}
	in.MakeActive()
	g.AddNode(owner)

	mn := nested.NewMapNode(owner, "keys", buildDoublerChild, 0, 1)

	require.NoError(t, in.BindOutput(src.MainOutput, 0))
	require.NoError(t, g.Start())

	require.NoError(t, src.MainOutput.TV.SetKeyValue("x", int64(5), 1))
	require.NoError(t, owner.DoEval(1))

	require.Len(t, mn.ChildGraphs(), 1)
	v, err := owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(10), v.(map[any]any)["x"])

	require.NoError(t, src.MainOutput.TV.SetKeyValue("x", int64(9), 2))
	require.NoError(t, owner.DoEval(2))
	v, err = owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(18), v.(map[any]any)["x"])

	_, err = src.MainOutput.TV.RemoveKey("x", 3)
	require.NoError(t, err)
	require.NoError(t, owner.DoEval(3))
	require.Empty(t, mn.ChildGraphs())
}
