package nested_test

import (
	"testing"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/nested"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

// S4 Mesh rank/cycle: keys A, B, C added, then B depends on A and C
// depends on B giving ranks 0,1,2, then declaring A depends on C must
// be rejected as a cycle without disturbing the existing ranks.
func TestMeshNodeRanksDependenciesAndRejectsCycles(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	keyMeta := tsvalue.MakeDictTSMeta("keys", typeregistry.String, intValueTS)

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewDict(keyMeta, intValueTS))
	g.AddNode(src)

	owner := node.NewNode(1, g.ID, "mesh", "mesh")
	outMeta := tsvalue.MakeDictTSMeta("out", typeregistry.String, intValueTS)
	owner.MainOutput = node.NewOutput(tsvalue.NewDict(outMeta, intValueTS))
	in := node.NewInput(owner, "keys", keyMeta)
	owner.Inputs = map[string]*node.Input{"keys": in}
	in.MakeActive()
	g.AddNode(owner)

	mesh := nested.NewMeshNode(owner, "keys", buildDoublerChild, 0, 1)

	require.NoError(t, in.BindOutput(src.MainOutput, 0))
	require.NoError(t, g.Start())

	require.NoError(t, src.MainOutput.TV.SetKeyValue("A", int64(1), 1))
	require.NoError(t, src.MainOutput.TV.SetKeyValue("B", int64(2), 1))
	require.NoError(t, src.MainOutput.TV.SetKeyValue("C", int64(3), 1))
	require.NoError(t, owner.DoEval(1))
	require.Len(t, mesh.ChildGraphs(), 3)

	require.NoError(t, mesh.DeclareDependency("B", "A"))
	require.NoError(t, mesh.DeclareDependency("C", "B"))

	require.Equal(t, 0, mesh.Rank("A"))
	require.Equal(t, 1, mesh.Rank("B"))
	require.Equal(t, 2, mesh.Rank("C"))

	err := mesh.DeclareDependency("A", "C")
	require.ErrorIs(t, err, herrors.ErrDependencyCycle)

	// rejected declaration must leave prior ranks untouched
	require.Equal(t, 0, mesh.Rank("A"))
	require.Equal(t, 1, mesh.Rank("B"))
	require.Equal(t, 2, mesh.Rank("C"))

	require.NoError(t, owner.DoEval(2))
	v, err := owner.MainOutput.Value()
	require.NoError(t, err)
	require.Equal(t, int64(2), v.(map[any]any)["A"])
}
