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

// buildAdderCombiner builds the 3-node combiner convention ReduceNode
// and NonAssociativeReduceNode require: node 0 and node 1 are lhs/rhs
// stub sources, node 2 sums them.
func buildAdderCombiner(id node.GraphID, parent *node.Node) (*node.Graph, error) {
	g := node.NewGraph(id, parent, nil)
	meta := intValueTS()

	lhs := node.NewNode(0, g.ID, "lhs", "source")
	lhs.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(lhs)

	rhs := node.NewNode(1, g.ID, "rhs", "source")
	rhs.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(rhs)

	sum := node.NewNode(2, g.ID, "sum", "compute")
	sum.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	lhsIn := node.NewInput(sum, "lhs", meta)
	rhsIn := node.NewInput(sum, "rhs", meta)
	sum.Inputs["lhs"] = lhsIn
	sum.Inputs["rhs"] = rhsIn
	lhsIn.MakeActive()
	rhsIn.MakeActive()
	sum.Eval = func(n *node.Node, now hgtime.EngineTime) error {
		a, err := n.Inputs["lhs"].Value()
		if err != nil {
			return err
		}
		b, err := n.Inputs["rhs"].Value()
		if err != nil {
			return err
		}
		return n.MainOutput.SetValue(a.(int64)+b.(int64), now)
	}
	g.AddNode(sum)

	if err := lhsIn.BindOutput(lhs.MainOutput, 0); err != nil {
		return nil, err
	}
	if err := rhsIn.BindOutput(rhs.MainOutput, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// S5 Reduce grow: TSD[int,int] reduce with operator +, zero=0.
func TestReduceNodeGrowsAndAggregates(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	keyMeta := tsvalue.MakeDictTSMeta("keys", typeregistry.Int, intValueTS)

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewDict(keyMeta, intValueTS))
	g.AddNode(src)

	owner := node.NewNode(1, g.ID, "reducer", "reduce")
	owner.MainOutput = node.NewOutput(tsvalue.NewScalar(intValueTS()))
	in := node.NewInput(owner, "keys", keyMeta)
	owner.Inputs["keys"] = in
	in.MakeActive()
	g.AddNode(owner)

	nested.NewReduceNode(owner, "keys", buildAdderCombiner, int64(0))

	require.NoError(t, in.BindOutput(src.MainOutput, 0))
	require.NoError(t, g.Start())

	require.NoError(t, src.MainOutput.TV.SetKeyValue(int64(1), int64(10), 1))
	require.NoError(t, owner.DoEval(1))
	v, err := owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(10), v)

	require.NoError(t, src.MainOutput.TV.SetKeyValue(int64(2), int64(20), 2))
	require.NoError(t, owner.DoEval(2))
	v, err = owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(30), v)

	require.NoError(t, src.MainOutput.TV.SetKeyValue(int64(3), int64(30), 3))
	require.NoError(t, owner.DoEval(3))
	v, err = owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(60), v)
}

func TestNonAssociativeReduceNodeChainsInKeyOrder(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	keyMeta := tsvalue.MakeDictTSMeta("keys", typeregistry.Int, intValueTS)

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewDict(keyMeta, intValueTS))
	g.AddNode(src)

	owner := node.NewNode(1, g.ID, "chain", "non-assoc-reduce")
	owner.MainOutput = node.NewOutput(tsvalue.NewScalar(intValueTS()))
	in := node.NewInput(owner, "keys", keyMeta)
	owner.Inputs["keys"] = in
	in.MakeActive()
	g.AddNode(owner)

	nested.NewNonAssociativeReduceNode(owner, "keys", buildAdderCombiner, int64(0))

	require.NoError(t, in.BindOutput(src.MainOutput, 0))
	require.NoError(t, g.Start())

	require.NoError(t, src.MainOutput.TV.SetKeyValue(int64(1), int64(5), 1))
	require.NoError(t, src.MainOutput.TV.SetKeyValue(int64(2), int64(7), 1))
	require.NoError(t, owner.DoEval(1))

	v, err := owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(12), v)
}
