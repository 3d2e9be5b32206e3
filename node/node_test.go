package node_test

import (
	"testing"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

type recordingActivator struct {
	calls []struct {
		idx int
		at  hgtime.EngineTime
	}
}

func (r *recordingActivator) Activate(nodeIndex int, at hgtime.EngineTime) {
	r.calls = append(r.calls, struct {
		idx int
		at  hgtime.EngineTime
	}{nodeIndex, at})
}

func intMeta() *tsvalue.TSMeta { return tsvalue.MakeScalarTSMeta(typeregistry.Int) }

func TestActiveInputActivatesOwnerOnBoundOutputModification(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	act := &recordingActivator{}
	meta := intMeta()

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(src)

	consumer := node.NewNode(1, g.ID, "consumer", "compute")
	consumer.SetActivator(act)
	in := node.NewInput(consumer, "in", meta)
	consumer.Inputs["in"] = in
	g.AddNode(consumer)

	in.MakeActive()
	require.NoError(t, in.BindOutput(src.MainOutput, 0))

	require.NoError(t, src.MainOutput.SetValue(int64(7), 5))
	require.Len(t, act.calls, 1)
	require.Equal(t, 1, act.calls[0].idx)
	require.Equal(t, hgtime.EngineTime(5), act.calls[0].at)

	v, err := in.Value()
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
}

func TestPassiveInputDoesNotActivateOwner(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	act := &recordingActivator{}
	meta := intMeta()

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(src)

	consumer := node.NewNode(1, g.ID, "consumer", "compute")
	consumer.SetActivator(act)
	in := node.NewInput(consumer, "in", meta)
	consumer.Inputs["in"] = in
	g.AddNode(consumer)

	require.NoError(t, in.BindOutput(src.MainOutput, 0))
	require.NoError(t, src.MainOutput.SetValue(int64(1), 1))
	require.Empty(t, act.calls)
}

func TestNodeLifecycleGuardsReentry(t *testing.T) {
	n := node.NewNode(0, node.GraphID{}, "n", "compute")
	require.NoError(t, n.Start())
	require.ErrorIs(t, n.Start(), herrors.ErrAlreadyStarted)
	require.NoError(t, n.Stop())
	require.ErrorIs(t, n.Stop(), herrors.ErrNotStarted)
}

func TestGraphStartsAndStopsNodesInOrder(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	var order []int
	for i := 0; i < 3; i++ {
		idx := i
		n := node.NewNode(idx, g.ID, "n", "compute")
		n.OnStart = func(n *node.Node) error { order = append(order, n.Index); return nil }
		g.AddNode(n)
	}
	require.NoError(t, g.Start())
	require.Equal(t, []int{0, 1, 2}, order)

	order = nil
	for _, n := range g.Nodes {
		n.OnStop = func(n *node.Node) error { order = append(order, n.Index); return nil }
	}
	require.NoError(t, g.Stop())
	require.Equal(t, []int{2, 1, 0}, order)
}

func TestNodeSchedulerFutureWakeUp(t *testing.T) {
	act := &recordingActivator{}
	n := node.NewNode(3, node.GraphID{}, "n", "compute")
	n.SetActivator(act)

	n.Scheduler.ScheduleAt(10, "tick")
	require.Len(t, act.calls, 1)
	require.Equal(t, 3, act.calls[0].idx)
	require.Equal(t, hgtime.EngineTime(10), act.calls[0].at)
	require.True(t, n.Scheduler.HasEntryAt(10))

	tags := n.Scheduler.TagsAt(10)
	require.Equal(t, []any{"tick"}, tags)
	require.False(t, n.Scheduler.HasEntryAt(10))
}
