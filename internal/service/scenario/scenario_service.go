package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/service/simulation"
)

// DefaultWorkers bounds how many scenario simulations run concurrently.
const DefaultWorkers = 4

// Service re-runs the simulator under parameter deltas and tabulates the
// differences against a baseline.
type Service struct {
	simSvc  *simulation.Service
	workers int
	logger  *zap.Logger
}

// NewService wires a new scenario comparator.
func NewService(simSvc *simulation.Service, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{simSvc: simSvc, workers: workers, logger: logger}
}

// Compare runs the baseline, then every scenario with the baseline's seed so
// parameter effects are isolated from random variation. Scenario runs are
// independent and fan out over a bounded worker pool; each gets its own
// generator and event queue. Zero scenarios is a no-op returning the
// baseline alone. Per-scenario failures are annotated, never abort the
// batch.
func (s *Service) Compare(ctx context.Context, clientID string, baseline models.SimulationConfig, scenarios []models.Scenario) (*models.ScenarioRun, error) {
	baseResult, err := s.simSvc.Run(ctx, baseline)
	if err != nil {
		return nil, err
	}

	comparison := &models.ScenarioRun{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Baseline:  *baseResult,
		CreatedAt: time.Now().UTC(),
	}
	if len(scenarios) == 0 {
		return comparison, nil
	}

	results := make([]models.ScenarioResult, len(scenarios))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc models.Scenario) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := models.ScenarioResult{Name: sc.Name, Type: sc.Type}
			cfg := applyOverrides(baseline, sc.Overrides)
			simResult, err := s.simSvc.Run(ctx, cfg)
			if err != nil {
				s.logger.Warn("scenario run failed",
					zap.String("scenario", sc.Name), zap.Error(err))
				res.Err = err.Error()
			} else {
				res.Result = *simResult
				res.Deltas = deltas(baseResult, simResult)
			}
			results[i] = res
		}(i, sc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comparison.Scenarios = results

	s.logger.Info("scenario comparison completed",
		zap.String("client_id", clientID),
		zap.Int("scenarios", len(scenarios)),
		zap.Int64("seed", baseline.RandomSeed))
	return comparison, nil
}

// applyOverrides deep-merges a scenario's sparse deltas onto a copy of the
// baseline. The baseline itself is never mutated.
func applyOverrides(base models.SimulationConfig, ov models.ScenarioOverrides) models.SimulationConfig {
	cfg := base
	cfg.Operations = append([]models.Operation{}, base.Operations...)
	cfg.Demands = append([]models.Demand{}, base.Demands...)
	cfg.Breakdowns = append([]models.Breakdown{}, base.Breakdowns...)

	if ov.EnabledShifts != nil {
		cfg.Calendar.EnabledShifts = *ov.EnabledShifts
	}
	if ov.ShiftHours != nil {
		cfg.Calendar.ShiftHours = *ov.ShiftHours
	}
	if ov.WeekdayOvertime != nil {
		cfg.Calendar.WeekdayOvertime = *ov.WeekdayOvertime
	}
	if ov.WeekdayOvertimeHours != nil {
		cfg.Calendar.WeekdayOvertimeHours = *ov.WeekdayOvertimeHours
	}
	if ov.WeekendOvertime != nil {
		cfg.Calendar.WeekendOvertime = *ov.WeekendOvertime
	}
	if ov.WeekendOvertimeHours != nil {
		cfg.Calendar.WeekendOvertimeHours = *ov.WeekendOvertimeHours
	}
	if ov.FloatingPoolSize != nil {
		cfg.FloatingPoolSize = *ov.FloatingPoolSize
	}
	if ov.HorizonDays != nil {
		cfg.HorizonDays = *ov.HorizonDays
	}
	if ov.WorkersPerStation != nil {
		for i := range cfg.Operations {
			cfg.Operations[i].OperatorsRequired = *ov.WorkersPerStation
		}
	}
	for i := range cfg.Operations {
		key := models.StationKey(cfg.Operations[i].Product, cfg.Operations[i].Step)
		if n, ok := ov.OperatorsByStation[key]; ok {
			cfg.Operations[i].OperatorsRequired = n
		}
	}
	return cfg
}

// deltas tabulates scenario-minus-baseline differences.
func deltas(base, got *models.SimulationResult) models.ScenarioDeltas {
	d := models.ScenarioDeltas{
		Throughput:           got.ThroughputPerDay - base.ThroughputPerDay,
		UtilizationByStation: make(map[string]float64),
		Bottlenecks:          got.Bottlenecks,
	}
	if base.ThroughputPerDay > 0 {
		d.ThroughputPct = d.Throughput / base.ThroughputPerDay * 100
	}

	baseUtil := make(map[string]float64, len(base.Stations))
	for _, st := range base.Stations {
		baseUtil[st.Station] = st.Utilization
	}
	for _, st := range got.Stations {
		d.UtilizationByStation[st.Station] = st.Utilization - baseUtil[st.Station]
	}

	d.BottleneckMoved = !sameStations(base.Bottlenecks, got.Bottlenecks)
	return d
}

func sameStations(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
