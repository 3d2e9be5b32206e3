package observe_test

import (
	"testing"

	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/observe"
	"github.com/stretchr/testify/require"
)

type probe struct {
	id       int
	modified []hgtime.EngineTime
	removed  int
	onNotify func()
}

func (p *probe) NotifyModified(now hgtime.EngineTime) {
	p.modified = append(p.modified, now)
	if p.onNotify != nil {
		p.onNotify()
	}
}
func (p *probe) NotifyRemoved() { p.removed++ }

func TestListNotifyAllCallsEveryRegisteredObserverOnce(t *testing.T) {
	l := observe.NewList()
	a, b := &probe{id: 1}, &probe{id: 2}
	require.True(t, l.Add(a))
	require.True(t, l.Add(b))
	require.False(t, l.Add(a), "re-adding an already registered observer is a no-op")

	l.NotifyAll(5)
	require.Equal(t, []hgtime.EngineTime{5}, a.modified)
	require.Equal(t, []hgtime.EngineTime{5}, b.modified)
}

func TestListRemoveDuringNotifyAllIsSafe(t *testing.T) {
	l := observe.NewList()
	a := &probe{id: 1}
	b := &probe{id: 2}
	a.onNotify = func() { l.Remove(b) }
	require.True(t, l.Add(a))
	require.True(t, l.Add(b))

	require.NotPanics(t, func() { l.NotifyAll(1) })
	require.Equal(t, 1, l.Len())
}

func TestListNotifyAllRemovedFiresExactlyOncePerObserverThenClears(t *testing.T) {
	l := observe.NewList()
	a, b := &probe{}, &probe{}
	l.Add(a)
	l.Add(b)

	l.NotifyAllRemoved()
	require.Equal(t, 1, a.removed)
	require.Equal(t, 1, b.removed)
	require.Equal(t, 0, l.Len())

	l.NotifyAllRemoved()
	require.Equal(t, 1, a.removed, "a second call over an already-empty list must not re-notify")
}

func TestListRemoveReturnsFalseForUnregisteredObserver(t *testing.T) {
	l := observe.NewList()
	a := &probe{}
	require.False(t, l.Remove(a))
}
