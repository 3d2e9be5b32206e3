package observe_test

import (
	"testing"

	"github.com/sbl8/hgraph/observe"
	"github.com/stretchr/testify/require"
)

func TestArrayOnCapacityGrowsAndSlotPersists(t *testing.T) {
	a := observe.NewArray()
	a.OnCapacity(4)
	p := &probe{}
	a.Slot(2).Add(p)

	a.OnCapacity(8)
	require.Equal(t, 1, a.Slot(2).Len(), "growing capacity must not drop existing slot observers")
}

func TestArrayOnEraseNotifiesSlotObserversRemoved(t *testing.T) {
	a := observe.NewArray()
	a.OnCapacity(2)
	p := &probe{}
	a.Slot(0).Add(p)

	a.OnErase(0)
	require.Equal(t, 1, p.removed)
	require.Equal(t, 0, a.Slot(0).Len())
}

func TestArrayOnClearNotifiesAllSlotsRemoved(t *testing.T) {
	a := observe.NewArray()
	a.OnCapacity(2)
	p0, p1 := &probe{}, &probe{}
	a.Slot(0).Add(p0)
	a.Slot(1).Add(p1)

	a.OnClear()
	require.Equal(t, 1, p0.removed)
	require.Equal(t, 1, p1.removed)
}
