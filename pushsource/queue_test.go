package pushsource_test

import (
	"testing"

	"github.com/sbl8/hgraph/pushsource"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOWithExplicitTimes(t *testing.T) {
	q := pushsource.NewQueue(0, pushsource.DropOldest)
	s := pushsource.NewSender(q)
	require.NoError(t, s.EnqueueAt(1, 5))
	require.NoError(t, s.EnqueueAt(3, 7))

	at, ok := q.PeekTime(0)
	require.True(t, ok)
	require.EqualValues(t, 1, at)

	msg, ok := q.Dequeue(0)
	require.True(t, ok)
	require.EqualValues(t, 1, msg.At)
	require.Equal(t, 5, msg.Value)

	msg, ok = q.Dequeue(0)
	require.True(t, ok)
	require.EqualValues(t, 3, msg.At)
	require.Equal(t, 7, msg.Value)

	_, ok = q.Dequeue(0)
	require.False(t, ok)
}

func TestQueueDropOldestPolicyEvictsHeadOnOverflow(t *testing.T) {
	q := pushsource.NewQueue(2, pushsource.DropOldest)
	s := pushsource.NewSender(q)
	require.NoError(t, s.EnqueueAt(1, "a"))
	require.NoError(t, s.EnqueueAt(2, "b"))
	require.NoError(t, s.EnqueueAt(3, "c"))
	require.Equal(t, 2, q.Len())

	msg, _ := q.Dequeue(0)
	require.Equal(t, "b", msg.Value)
}

func TestQueueDropNewestPolicySilentlyDiscards(t *testing.T) {
	q := pushsource.NewQueue(1, pushsource.DropNewest)
	s := pushsource.NewSender(q)
	require.NoError(t, s.EnqueueAt(1, "a"))
	require.NoError(t, s.EnqueueAt(2, "b"))
	require.Equal(t, 1, q.Len())
	msg, _ := q.Dequeue(0)
	require.Equal(t, "a", msg.Value)
}

func TestQueueRaisePolicyReturnsErrorOnOverflow(t *testing.T) {
	q := pushsource.NewQueue(1, pushsource.Raise)
	s := pushsource.NewSender(q)
	require.NoError(t, s.EnqueueAt(1, "a"))
	require.Error(t, s.EnqueueAt(2, "b"))
}
