// Package pushsource implements the one legal cross-thread entry point
// into a running graph: a bounded multi-producer/single-consumer queue
// of externally originated messages, polled by the engine's own
// goroutine once per outer scheduling iteration (spec §4.5's
// "push-source ingestion" and §5's concurrency boundary).
package pushsource

import (
	"sync"
	"time"

	"github.com/sbl8/hgraph/herrors"
	"github.com/sbl8/hgraph/hgtime"
)

var errPushQueueOverflow = herrors.ErrPushQueueOverflow

// Policy selects what happens when Enqueue is attempted against a full
// bounded queue. The default, per the spec's resolved open question, is
// DropOldest.
type Policy int

const (
	DropOldest Policy = iota
	DropNewest
	Raise
)

// Message is one push-source event: a value and, when HasAt is true,
// the engine time it must be applied at. Sender.EnqueueAt sets an
// explicit time and Sender.Enqueue sets the wall-clock time of the
// enqueue; a message pushed with HasAt false is stamped with the
// scheduler's current engine time by PeekTime/Dequeue.
type Message struct {
	At    hgtime.EngineTime
	HasAt bool
	Value any
}

// Queue is the MPSC buffer backing one push-source node. Producer
// threads call Enqueue without ever touching engine-owned state; only
// the engine's own goroutine calls Dequeue/PeekTime.
type Queue struct {
	mu       sync.Mutex
	buf      []Message
	capacity int
	policy   Policy
}

// NewQueue returns a Queue bounded to capacity (0 means unbounded)
// enforcing policy on overflow.
func NewQueue(capacity int, policy Policy) *Queue {
	return &Queue{capacity: capacity, policy: policy}
}

func (q *Queue) push(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity > 0 && len(q.buf) >= q.capacity {
		switch q.policy {
		case DropOldest:
			q.buf = q.buf[1:]
		case DropNewest:
			return nil
		case Raise:
			return errPushQueueOverflow
		}
	}
	q.buf = append(q.buf, msg)
	return nil
}

// PeekTime reports the engine time of the oldest queued message without
// removing it. For a message with HasAt == false, now is returned as
// the engine time it would be stamped with if dequeued immediately.
func (q *Queue) PeekTime(now hgtime.EngineTime) (hgtime.EngineTime, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0, false
	}
	if q.buf[0].HasAt {
		return q.buf[0].At, true
	}
	return now, true
}

// Dequeue removes and returns the oldest queued message, stamping it
// with now if it carried no explicit time.
func (q *Queue) Dequeue(now hgtime.EngineTime) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return Message{}, false
	}
	msg := q.buf[0]
	q.buf = q.buf[1:]
	if !msg.HasAt {
		msg.At = now
		msg.HasAt = true
	}
	return msg, true
}

// Len reports the number of currently queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Sender is the producer-facing handle for a push-source node's queue,
// matching spec §6's "producer calls enqueue(message)" interface.
type Sender struct{ q *Queue }

// NewSender wraps q as a Sender.
func NewSender(q *Queue) Sender { return Sender{q: q} }

// Enqueue stamps value with the current wall-clock time, for real-time
// producers that have no simulation-time concept.
func (s Sender) Enqueue(value any) error {
	return s.q.push(Message{At: hgtime.EngineTime(time.Now().UnixNano()), HasAt: true, Value: value})
}

// EnqueueAt stamps value with an explicit engine time, for
// deterministic-simulation producers (tests, replay harnesses).
func (s Sender) EnqueueAt(at hgtime.EngineTime, value any) error {
	return s.q.push(Message{At: at, HasAt: true, Value: value})
}
