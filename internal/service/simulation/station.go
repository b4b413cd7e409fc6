package simulation

import (
	"sort"

	"github.com/plantops/capaplan/internal/domain/models"
)

// unitState tracks a simulated unit through the line.
type unitState int

const (
	unitWaiting unitState = iota
	unitInProcess
	unitComplete
	unitScrapped
)

// unit is one piece flowing through the routing of its product.
type unit struct {
	id         int
	product    string
	routeIdx   int // index into the product's station sequence
	reworks    int
	releasedAt float64
	state      unitState
}

// station hosts one operation row. Slot count is the operation's
// operators_required plus whatever the floating pool currently grants.
type station struct {
	op         models.Operation
	key        string
	tl         *timeline
	floatSlots int
	busy       int
	queue      []*unit

	busyMinutes     float64
	unitsProcessed  int
	reworks         int
	defectivePassed int
}

func (st *station) slots() int {
	base := st.op.OperatorsRequired
	if base < 1 {
		base = 1
	}
	return base + st.floatSlots
}

func (st *station) enqueue(u *unit) {
	u.state = unitWaiting
	st.queue = append(st.queue, u)
}

func (st *station) dequeue() *unit {
	u := st.queue[0]
	st.queue = st.queue[1:]
	return u
}

// poolAssignment computes how a floating pool of size n is split across
// stations: one operator at a time to the station with the longest pending
// queue, ties broken by station key. It is a pure function of the queue
// lengths so repeated evaluation at the same state yields the same split.
func poolAssignment(queueLens map[string]int, n int) map[string]int {
	if n <= 0 || len(queueLens) == 0 {
		return nil
	}
	keys := make([]string, 0, len(queueLens))
	for k := range queueLens {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pending := make(map[string]int, len(queueLens))
	for k, v := range queueLens {
		pending[k] = v
	}

	out := make(map[string]int, len(queueLens))
	for i := 0; i < n; i++ {
		best := ""
		for _, k := range keys {
			if pending[k] <= 0 {
				continue
			}
			if best == "" || pending[k] > pending[best] {
				best = k
			}
		}
		if best == "" {
			break
		}
		out[best]++
		pending[best]--
	}
	return out
}
