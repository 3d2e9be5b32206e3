package builder_test

import (
	"testing"

	"github.com/sbl8/hgraph/builder"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

func TestBuildWiresTwoNodeEdge(t *testing.T) {
	meta := tsvalue.MakeScalarTSMeta(typeregistry.Int)

	descs := []builder.NodeDescriptor{
		{
			Name:           "src",
			Kind:           "push",
			MakeMainOutput: func() *tsvalue.TSValue { return tsvalue.NewScalar(meta) },
		},
		{
			Name:         "double",
			Kind:         "compute",
			Inputs:       map[string]*tsvalue.TSMeta{"in": meta},
			ActiveInputs: []string{"in"},
			MakeMainOutput: func() *tsvalue.TSValue {
				return tsvalue.NewScalar(meta)
			},
			Eval: func(n *node.Node, now hgtime.EngineTime) error {
				v, err := n.Inputs["in"].Value()
				if err != nil {
					return err
				}
				return n.MainOutput.SetValue(v.(int64)*2, now)
			},
		},
	}

	edges := []builder.EdgeDescriptor{
		{SrcNode: 0, SrcOutput: builder.MainOutput, DstNode: 1, DstInput: "in"},
	}

	g, arena, err := builder.Build(descs, edges, node.GraphID{}, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, arena)
	require.Len(t, g.Nodes, 2)

	require.True(t, g.Nodes[1].Inputs["in"].Active())

	require.NoError(t, g.Nodes[0].MainOutput.SetValue(int64(21), 1))
	require.NoError(t, g.Nodes[1].DoEval(1))

	v, err := g.Nodes[1].MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestBuildRejectsSchemaMismatch(t *testing.T) {
	intMeta := tsvalue.MakeScalarTSMeta(typeregistry.Int)
	stringMeta := tsvalue.MakeScalarTSMeta(typeregistry.String)

	descs := []builder.NodeDescriptor{
		{
			Name:           "src",
			Kind:           "push",
			MakeMainOutput: func() *tsvalue.TSValue { return tsvalue.NewScalar(intMeta) },
		},
		{
			Name:   "sink",
			Kind:   "compute",
			Inputs: map[string]*tsvalue.TSMeta{"in": stringMeta},
		},
	}
	edges := []builder.EdgeDescriptor{
		{SrcNode: 0, SrcOutput: builder.MainOutput, DstNode: 1, DstInput: "in"},
	}

	_, _, err := builder.Build(descs, edges, node.GraphID{}, nil, nil)
	require.Error(t, err)
}

func TestBuildRejectsUnknownActiveInput(t *testing.T) {
	descs := []builder.NodeDescriptor{
		{Name: "n", Kind: "compute", ActiveInputs: []string{"missing"}},
	}
	_, _, err := builder.Build(descs, nil, node.GraphID{}, nil, nil)
	require.Error(t, err)
}
