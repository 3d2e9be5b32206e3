package tsvalue_test

import (
	"testing"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/tsvalue"
	"github.com/stretchr/testify/require"
)

// S6 REF rebinding sampling: a REF input bound to output O1 at t=0
// (value=5); at t=2 rebind to O2 (value=5, same). Expected: consumer
// sees modified=true at t=2 even though the value did not change.
func TestRefRebindingIsModifiedEvenWhenValueUnchangedScenarioS6(t *testing.T) {
	scalarMeta := intTS()

	o1 := tsvalue.NewScalar(scalarMeta)
	require.NoError(t, tsvalue.NewTSOutputView(o1.MakeViewData(nil)).SetValue(int64(5), 0))

	o2 := tsvalue.NewScalar(scalarMeta)
	require.NoError(t, tsvalue.NewTSOutputView(o2.MakeViewData(nil)).SetValue(int64(5), 0))

	refMeta := tsvalue.MakeRefTSMeta("ref<int>")
	ref := tsvalue.NewRef(refMeta)

	ref.Rebind(o1, 0)
	require.True(t, ref.Modified(0))
	require.False(t, ref.Modified(1))
	require.Equal(t, o1, ref.RefTarget())

	ref.Rebind(o2, 2)
	require.True(t, ref.Modified(2), "rebinding must be observed as modified at the rebind tick")
	require.Equal(t, o2, ref.RefTarget())

	v1, _ := tsvalue.NewTSView(o1.MakeViewData(nil)).Value()
	v2, _ := tsvalue.NewTSView(o2.MakeViewData(nil)).Value()
	require.Equal(t, v1, v2, "the two targets carry the same underlying value")
}

func TestRefObserverFiresOnRebind(t *testing.T) {
	refMeta := tsvalue.MakeRefTSMeta("ref<int>")
	ref := tsvalue.NewRef(refMeta)

	var notified []hgtime.EngineTime
	n := &captureNotifiable{fn: func(now hgtime.EngineTime) { notified = append(notified, now) }}
	ref.Observer.Add(n)

	target := tsvalue.NewScalar(intTS())
	ref.Rebind(target, 3)
	require.Equal(t, []hgtime.EngineTime{3}, notified)
}

type captureNotifiable struct{ fn func(hgtime.EngineTime) }

func (c *captureNotifiable) NotifyModified(now hgtime.EngineTime) { c.fn(now) }
func (c *captureNotifiable) NotifyRemoved()                       {}
