package simulation

import "container/heap"

// eventKind discriminates the entries of the simulation event queue.
type eventKind int

const (
	evRelease eventKind = iota // a new unit enters the line
	evFinish                   // a station finishes processing a unit
)

// event is one entry of the time-ordered queue. seq breaks time ties so
// identical configs always pop events in the same order.
type event struct {
	time       float64
	seq        int64
	kind       eventKind
	unit       *unit
	stationIdx int
	duration   float64
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// scheduler owns the queue and hands out sequence numbers.
type scheduler struct {
	queue eventQueue
	seq   int64
}

func newScheduler() *scheduler {
	s := &scheduler{}
	heap.Init(&s.queue)
	return s
}

func (s *scheduler) push(ev *event) {
	ev.seq = s.seq
	s.seq++
	heap.Push(&s.queue, ev)
}

func (s *scheduler) pop() *event {
	if len(s.queue) == 0 {
		return nil
	}
	return heap.Pop(&s.queue).(*event)
}

func (s *scheduler) empty() bool { return len(s.queue) == 0 }
