package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
)

// DefaultReworkRetryCap bounds how often a unit may loop through the same
// station before it is force-routed to scrap.
const DefaultReworkRetryCap = 3

// Service runs stochastic discrete-event simulations of an assembly line.
type Service struct {
	spread   float64
	retryCap int
	logger   *zap.Logger
}

// NewService wires a new simulator.
func NewService(spread float64, retryCap int, logger *zap.Logger) *Service {
	if spread <= 0 {
		spread = DefaultTriangularSpread
	}
	if retryCap <= 0 {
		retryCap = DefaultReworkRetryCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{spread: spread, retryCap: retryCap, logger: logger}
}

// run carries the mutable state of one simulation. The event loop is
// strictly single-threaded: globally ordered event processing is what makes
// identical config and seed reproduce identical results.
type run struct {
	svc      *Service
	cfg      models.SimulationConfig
	rng      *rand.Rand
	sched    *scheduler
	stations []*station
	routes   map[string][]int // product -> station indices in step order
	horizon  float64

	introduced int
	completed  int
	scrapped   int
	cycleTimes []float64
}

// Run executes one simulation over the configured horizon. The config is
// validated first; identical config and seed always yield identical results.
func (s *Service) Run(ctx context.Context, cfg models.SimulationConfig) (*models.SimulationResult, error) {
	report := s.ValidateConfig(cfg)
	if !report.OK() {
		return nil, &models.ValidationError{Issues: report.Errors}
	}

	r, err := s.prepare(cfg)
	if err != nil {
		return nil, err
	}
	if err := r.loop(ctx); err != nil {
		return nil, err
	}
	result, err := r.results()
	if err != nil {
		return nil, err
	}

	s.logger.Info("simulation completed",
		zap.Int("horizon_days", cfg.HorizonDays),
		zap.Int64("seed", cfg.RandomSeed),
		zap.Int("introduced", result.UnitsIntroduced),
		zap.Int("completed", result.UnitsCompleted),
		zap.Int("scrapped", result.UnitsScrapped))
	return result, nil
}

// prepare resolves every input before the loop starts: station timelines,
// realized breakdown intervals and the full release schedule. No I/O or
// randomness source other than the seeded generator is touched afterwards.
func (s *Service) prepare(cfg models.SimulationConfig) (*run, error) {
	r := &run{
		svc:     s,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.RandomSeed)),
		sched:   newScheduler(),
		routes:  make(map[string][]int),
		horizon: float64(cfg.HorizonDays) * minutesPerDay,
	}

	windows := shiftWindows(cfg.Calendar, cfg.HorizonDays)
	downs := drawBreakdowns(cfg.Breakdowns, windows, r.rng)

	ops := append([]models.Operation{}, cfg.Operations...)
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Product != ops[j].Product {
			return ops[i].Product < ops[j].Product
		}
		return ops[i].Step < ops[j].Step
	})
	for _, op := range ops {
		st := &station{
			op:  op,
			key: models.StationKey(op.Product, op.Step),
			tl:  &timeline{open: subtractIntervals(windows, downs[op.MachineTool])},
		}
		r.routes[op.Product] = append(r.routes[op.Product], len(r.stations))
		r.stations = append(r.stations, st)
	}

	r.scheduleReleases(windows)
	return r, nil
}

// scheduleReleases spreads each product's per-day demand evenly across the
// open windows of every working day.
func (r *run) scheduleReleases(windows []interval) {
	demands := append([]models.Demand{}, r.cfg.Demands...)
	sort.Slice(demands, func(i, j int) bool { return demands[i].Product < demands[j].Product })

	nextID := 1
	for _, dem := range demands {
		rate := dem.UnitsPerDay(r.cfg.Mode, r.cfg.TotalDailyDemand, r.cfg.Calendar.WorkDaysPerWeek)
		if rate <= 0 || len(r.routes[dem.Product]) == 0 {
			continue
		}
		for w, win := range windows {
			count := int(math.Floor(rate*float64(w+1)+1e-9)) - int(math.Floor(rate*float64(w)+1e-9))
			if count <= 0 {
				continue
			}
			gap := win.length() / float64(count)
			for i := 0; i < count; i++ {
				u := &unit{id: nextID, product: dem.Product}
				nextID++
				r.sched.push(&event{time: win.start + float64(i)*gap, kind: evRelease, unit: u})
			}
		}
	}
}

// loop pops events in global time order until the queue drains or the
// horizon is exhausted. Cancellation is cooperative, checked between pops.
func (r *run) loop(ctx context.Context) error {
	for !r.sched.empty() {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := r.sched.pop()
		if ev.time > r.horizon {
			// Past the horizon: whatever the event would have produced
			// stays in the system and is reported as WIP.
			continue
		}

		switch ev.kind {
		case evRelease:
			r.introduced++
			u := ev.unit
			u.releasedAt = ev.time
			r.stations[r.routes[u.product][0]].enqueue(u)
		case evFinish:
			r.finish(ev)
		}

		r.rebalancePool()
		r.startAll(ev.time)
	}
	return nil
}

// finish settles one completed service: accrue busy time, then route the
// unit by a single uniform draw across rework / defective-passed / advance.
func (r *run) finish(ev *event) {
	st := r.stations[ev.stationIdx]
	st.busy--
	st.busyMinutes += ev.duration
	st.unitsProcessed++

	u := ev.unit
	reworkCut := st.op.ReworkPct / 100
	fpdCut := reworkCut + st.op.FPDPct/100
	draw := r.rng.Float64()

	switch {
	case draw < reworkCut:
		if u.reworks >= r.svc.retryCap {
			// Retry budget exhausted: force-route to scrap so the unit
			// cannot loop forever.
			u.state = unitScrapped
			r.scrapped++
			return
		}
		u.reworks++
		st.reworks++
		st.enqueue(u)
	case draw < fpdCut:
		st.defectivePassed++
		r.advance(u, ev.time)
	default:
		r.advance(u, ev.time)
	}
}

func (r *run) advance(u *unit, now float64) {
	route := r.routes[u.product]
	u.routeIdx++
	if u.routeIdx >= len(route) {
		u.state = unitComplete
		r.completed++
		r.cycleTimes = append(r.cycleTimes, now-u.releasedAt)
		return
	}
	r.stations[route[u.routeIdx]].enqueue(u)
}

// rebalancePool recomputes the floating-pool split from current queue
// lengths. The assignment is a pure function of the queues, re-evaluated at
// every event rather than stored and drifted.
func (r *run) rebalancePool() {
	if r.cfg.FloatingPoolSize <= 0 {
		return
	}
	queueLens := make(map[string]int, len(r.stations))
	for _, st := range r.stations {
		queueLens[st.key] = len(st.queue)
	}
	extra := poolAssignment(queueLens, r.cfg.FloatingPoolSize)
	for _, st := range r.stations {
		st.floatSlots = extra[st.key]
	}
}

// startAll pulls queued units into any station with a free slot, in fixed
// station order for determinism.
func (r *run) startAll(now float64) {
	for idx, st := range r.stations {
		for st.busy < st.slots() && len(st.queue) > 0 {
			if _, ok := st.tl.nextOpen(now); !ok {
				break // no open time left in the horizon; units wait as WIP
			}
			u := st.dequeue()
			dur := cycleTime(st.op, r.svc.spread, r.rng)
			finish, ok := st.tl.advance(now, dur)
			if !ok {
				st.queue = append([]*unit{u}, st.queue...)
				break
			}
			u.state = unitInProcess
			st.busy++
			r.sched.push(&event{time: finish, kind: evFinish, unit: u, stationIdx: idx, duration: dur})
		}
	}
}

// results assembles the output and enforces the conservation invariant.
func (r *run) results() (*models.SimulationResult, error) {
	inSystem := 0
	res := &models.SimulationResult{
		HorizonDays:     r.cfg.HorizonDays,
		UnitsIntroduced: r.introduced,
		UnitsCompleted:  r.completed,
		UnitsScrapped:   r.scrapped,
	}

	maxUtil := 0.0
	for _, st := range r.stations {
		avail := st.tl.totalOpen()
		util := 0.0
		if avail > 0 {
			util = st.busyMinutes / avail
		}
		if util > maxUtil {
			maxUtil = util
		}
		wip := len(st.queue) + st.busy
		inSystem += wip
		res.Stations = append(res.Stations, models.StationStats{
			Station:          st.key,
			Product:          st.op.Product,
			Step:             st.op.Step,
			Operation:        st.op.Name,
			MachineTool:      st.op.MachineTool,
			BusyMinutes:      st.busyMinutes,
			AvailableMinutes: avail,
			Utilization:      util,
			UnitsProcessed:   st.unitsProcessed,
			Reworks:          st.reworks,
			DefectivePassed:  st.defectivePassed,
			WIPAtEnd:         wip,
		})
	}
	res.UnitsInSystem = inSystem

	if r.introduced != r.completed+r.scrapped+inSystem {
		return nil, &models.DivergenceError{
			Invariant: "unit conservation",
			Detail: fmt.Sprintf("introduced=%d completed=%d scrapped=%d in_system=%d",
				r.introduced, r.completed, r.scrapped, inSystem),
		}
	}

	if r.cfg.HorizonDays > 0 {
		res.ThroughputPerDay = float64(r.completed) / float64(r.cfg.HorizonDays)
	}
	for _, stStat := range res.Stations {
		if maxUtil > 0 && math.Abs(stStat.Utilization-maxUtil) < 1e-9 {
			res.Bottlenecks = append(res.Bottlenecks, stStat.Station)
		}
	}
	res.CycleTime = cycleStats(r.cycleTimes)
	return res, nil
}

func cycleStats(times []float64) models.CycleTimeStats {
	if len(times) == 0 {
		return models.CycleTimeStats{}
	}
	sorted := append([]float64{}, times...)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}
	percentile := func(p float64) float64 {
		idx := int(p * float64(len(sorted)-1))
		return sorted[idx]
	}
	return models.CycleTimeStats{
		Avg: sum / float64(len(sorted)),
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		P50: percentile(0.5),
		P90: percentile(0.9),
	}
}
