package engine_test

import (
	"context"
	"testing"

	"github.com/sbl8/hgraph/engine"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/pushsource"
	"github.com/sbl8/hgraph/schedule"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/sbl8/hgraph/typeregistry"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	engine.NopObserver
	events []string
}

func (r *recordingObserver) BeforeGraphStart(*node.Graph) { r.events = append(r.events, "before-start") }
func (r *recordingObserver) AfterGraphStart(*node.Graph)  { r.events = append(r.events, "after-start") }
func (r *recordingObserver) BeforeNodeEval(n *node.Node, now hgtime.EngineTime) {
	r.events = append(r.events, "before-eval")
}
func (r *recordingObserver) AfterNodeEval(n *node.Node, now hgtime.EngineTime, err error) {
	r.events = append(r.events, "after-eval")
}
func (r *recordingObserver) BeforeGraphStop(*node.Graph) { r.events = append(r.events, "before-stop") }
func (r *recordingObserver) AfterGraphStop(*node.Graph)  { r.events = append(r.events, "after-stop") }

func TestExecutorRunDispatchesLifecycleCallbacks(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	meta := tsvalue.MakeScalarTSMeta(typeregistry.Int)

	src := node.NewNode(0, g.ID, "src", "push")
	src.MainOutput = node.NewOutput(tsvalue.NewScalar(meta))
	g.AddNode(src)

	obs := &recordingObserver{}
	ex := engine.NewExecutor(g, obs, nil)

	queue := pushsource.NewQueue(0, pushsource.DropOldest)
	sender := pushsource.NewSender(queue)
	ex.RegisterPushSource(schedule.PushNode{Node: src, Queue: queue})
	require.NoError(t, sender.EnqueueAt(1, int64(7)))

	require.NoError(t, ex.Run(context.Background(), 0, 5, engine.Simulation))

	require.Contains(t, obs.events, "before-start")
	require.Contains(t, obs.events, "after-start")
	require.Contains(t, obs.events, "before-stop")
	require.Contains(t, obs.events, "after-stop")
	require.False(t, g.IsStarted())
}

func TestExecutorRequestStopHaltsBeforeEndTime(t *testing.T) {
	g := node.NewGraph(node.GraphID{}, nil, nil)
	n := node.NewNode(0, g.ID, "n", "compute")
	g.AddNode(n)

	ex := engine.NewExecutor(g, nil, nil)

	var evals []hgtime.EngineTime
	n.Eval = func(n *node.Node, now hgtime.EngineTime) error {
		evals = append(evals, now)
		ex.RequestStop()
		return nil
	}
	ex.Scheduler.Activate(0, 1)
	ex.Scheduler.Activate(0, 2)

	require.NoError(t, ex.Run(context.Background(), 0, 10, engine.Simulation))
	require.Equal(t, []hgtime.EngineTime{1}, evals)
	require.False(t, g.IsStarted())
}
