// Package schedule implements the per-graph evaluation scheduler: an
// ordered multimap from engine time to the set of nodes with pending
// work, drained one tick at a time in graph index order (spec §4.5).
package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/google/btree"
	"github.com/sbl8/hgraph/hgtime"
	"github.com/sbl8/hgraph/hlog"
	"github.com/sbl8/hgraph/node"
	"github.com/sbl8/hgraph/pushsource"
)

// timeSlot is one bucket of the ordered multimap: every node index with
// pending work at exactly At, deduplicated (a node evaluates at most
// once per tick regardless of how many of its active inputs fired).
type timeSlot struct {
	at   hgtime.EngineTime
	seen map[int]bool
}

func slotLess(a, b *timeSlot) bool { return a.at < b.at }

// PushNode pairs a push-source node with the queue it drains, the unit
// Scheduler polls once per outer iteration (spec §4.5's
// "push-source ingestion").
type PushNode struct {
	Node  *node.Node
	Queue *pushsource.Queue
}

// TickObserver receives the per-tick life-cycle callbacks a graph
// executor dispatches (spec §6's 14 callback points; the graph
// start/stop half lives on node.Graph's *Observed methods, the
// per-tick half lives here since Scheduler is what drives ticks).
// Every method is optional to implement meaningfully; embed a struct
// with no-op bodies for the ones an observer doesn't care about.
type TickObserver interface {
	BeforeGraphEval(now hgtime.EngineTime)
	AfterGraphEval(now hgtime.EngineTime)
	BeforePushDrain(now hgtime.EngineTime)
	AfterPushDrain(now hgtime.EngineTime, ingested int)
	BeforeNodeEval(n *node.Node, now hgtime.EngineTime)
	AfterNodeEval(n *node.Node, now hgtime.EngineTime, err error)
}

// Scheduler is the evaluation engine for one graph: the ordered
// multimap described above, backed by a B-tree (chosen per the design
// note in spec §9 over a hand-rolled red-black tree) for O(log N)
// pop-min under frequent cancellation from NodeScheduler retractions.
type Scheduler struct {
	graph      *node.Graph
	tree       *btree.BTreeG[*timeSlot]
	pushNodes  []PushNode
	log        *hlog.Logger
	stopSignal bool

	// Observer, when non-nil, receives the per-tick life-cycle
	// callbacks described by TickObserver. Set directly by a graph
	// executor; left nil for scheduler-only use (as in this package's
	// own tests).
	Observer TickObserver
}

// New wires s to every node in g (each node's Activator becomes s) and
// returns the scheduler ready to drive g.
func New(g *node.Graph, log *hlog.Logger) *Scheduler {
	s := &Scheduler{
		graph: g,
		tree:  btree.NewG(32, slotLess),
		log:   log,
	}
	for _, n := range g.Nodes {
		n.SetActivator(s)
	}
	return s
}

// RegisterPushSource adds pn to the set of push queues polled once per
// outer scheduling iteration.
func (s *Scheduler) RegisterPushSource(pn PushNode) {
	s.pushNodes = append(s.pushNodes, pn)
}

// Activate implements node.Activator: nodeIndex has pending work at at.
func (s *Scheduler) Activate(nodeIndex int, at hgtime.EngineTime) {
	slot := s.slotFor(at)
	slot.seen[nodeIndex] = true
}

func (s *Scheduler) slotFor(at hgtime.EngineTime) *timeSlot {
	probe := &timeSlot{at: at}
	if found, ok := s.tree.Get(probe); ok {
		return found
	}
	probe.seen = make(map[int]bool)
	s.tree.ReplaceOrInsert(probe)
	return probe
}

// nextScheduledTime returns the earliest time with pending node work,
// folding in the earliest pending push-source message, if any.
func (s *Scheduler) nextScheduledTime(now hgtime.EngineTime) (hgtime.EngineTime, bool) {
	var best hgtime.EngineTime
	min, found := s.tree.Min()
	if found {
		best = min.at
	}
	for _, pn := range s.pushNodes {
		if at, ok := pn.Queue.PeekTime(now); ok {
			if !found || at < best {
				best, found = at, true
			}
		}
	}
	return best, found
}

// RequestStop asks Advance to stop at the next tick boundary or between
// same-tick pops, per spec §4.8.
func (s *Scheduler) RequestStop() { s.stopSignal = true }

// StopRequested reports whether RequestStop has been called.
func (s *Scheduler) StopRequested() bool { return s.stopSignal }

// ingestPushSources applies at most one message per push node whose
// earliest message is due at now, adding the owning node to the
// current tick's set. Returns the number of messages ingested.
func (s *Scheduler) ingestPushSources(now hgtime.EngineTime) int {
	ingested := 0
	for _, pn := range s.pushNodes {
		at, ok := pn.Queue.PeekTime(now)
		if !ok || at != now {
			continue
		}
		msg, ok := pn.Queue.Dequeue(now)
		if !ok {
			continue
		}
		if pn.Node.MainOutput != nil {
			if err := pn.Node.MainOutput.ApplyResult(msg.Value, now); err != nil {
				if s.log != nil {
					s.log.Errorw("push-source apply failed", "node", pn.Node.Name, "err", err)
				}
				continue
			}
		}
		s.Activate(pn.Node.Index, now)
		ingested++
	}
	return ingested
}

// drainAt removes and returns, in graph index order, every node index
// pending at exactly now. Returns nil if nothing is pending at now.
func (s *Scheduler) drainAt(now hgtime.EngineTime) []int {
	probe := &timeSlot{at: now}
	slot, ok := s.tree.Get(probe)
	if !ok {
		return nil
	}
	s.tree.Delete(probe)
	indices := make([]int, 0, len(slot.seen))
	for idx := range slot.seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// Advance runs one full scheduling pass from whatever work is already
// pending through endTime, per spec §4.5 steps 1-5 and §4.8's run
// modes. It returns when no more work is scheduled at or before
// endTime, or when a stop has been requested and observed at a tick
// boundary.
func (s *Scheduler) Advance(ctx context.Context, endTime hgtime.EngineTime, mode Mode) error {
	var lastNow hgtime.EngineTime
	hasLastNow := false
	for {
		if s.stopSignal {
			return nil
		}
		now, ok := s.nextScheduledTime(zeroOrAfter(lastNow, hasLastNow))
		if !ok || now > endTime {
			return nil
		}
		if mode == RealTime {
			if err := s.sleepUntilWallClock(ctx, now); err != nil {
				return err
			}
		}
		if s.Observer != nil {
			s.Observer.BeforeGraphEval(now)
		}
		for {
			if s.stopSignal {
				return nil
			}
			if s.Observer != nil {
				s.Observer.BeforePushDrain(now)
			}
			ingested := s.ingestPushSources(now)
			if s.Observer != nil {
				s.Observer.AfterPushDrain(now, ingested)
			}
			indices := s.drainAt(now)
			if len(indices) == 0 && ingested == 0 {
				break
			}
			for _, idx := range indices {
				if s.stopSignal {
					return nil
				}
				n := s.graph.Nodes[idx]
				if s.Observer != nil {
					s.Observer.BeforeNodeEval(n, now)
				}
				err := n.DoEval(now)
				if s.Observer != nil {
					s.Observer.AfterNodeEval(n, now, err)
				}
				if err != nil {
					return err
				}
			}
		}
		if s.Observer != nil {
			s.Observer.AfterGraphEval(now)
		}
		lastNow, hasLastNow = now, true
	}
}

func zeroOrAfter(last hgtime.EngineTime, has bool) hgtime.EngineTime {
	if !has {
		return hgtime.MinDT
	}
	return last
}

// sleepUntilWallClock blocks until wall-clock time reaches the point
// engine time `at` represents (at is nanoseconds since the same epoch
// time.Now().UnixNano() uses), or ctx is done.
func (s *Scheduler) sleepUntilWallClock(ctx context.Context, at hgtime.EngineTime) error {
	target := time.Unix(0, int64(at))
	d := time.Until(target)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Mode selects how Advance paces engine time against wall-clock time.
type Mode int

const (
	// Simulation jumps engine time directly to the next scheduled
	// entry regardless of wall clock.
	Simulation Mode = iota
	// RealTime sleeps until wall-clock time reaches the next scheduled
	// entry, or ctx is done. A push message enqueued during the sleep
	// does not end it early; it is picked up once the sleep returns.
	RealTime
)
