package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/config"
	"github.com/plantops/capaplan/internal/repository/mongodb"
	"github.com/plantops/capaplan/pkg/clients/notify"
)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	repo     mongodb.Repository
	notifier notify.Client
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.Config, repo mongodb.Repository, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New()

	return &Scheduler{
		cron:     c,
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler",
		zap.String("digest_schedule", s.cfg.Digest.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Digest.CronSchedule, s.sendAtRiskDigest)
	if err != nil {
		s.logger.Error("failed to schedule at-risk digest", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) sendAtRiskDigest() {
	s.logger.Info("generating at-risk digest")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	schedules, err := s.repo.ListAtRiskSchedules(ctx)
	if err != nil {
		s.logger.Error("failed to load at-risk schedules", zap.Error(err))
		return
	}
	if len(schedules) == 0 {
		s.logger.Info("no at-risk schedules, skipping digest")
		return
	}

	var sb strings.Builder
	for _, sched := range schedules {
		atRisk := 0
		var shortfall float64
		for _, a := range sched.Assignments {
			if a.AtRisk {
				atRisk++
				shortfall += a.ShortfallMinutes
			}
		}
		fmt.Fprintf(&sb, "%s (%s): %d at-risk orders, %.0f minutes short\n",
			sched.Name, sched.ClientID, atRisk, shortfall)
	}

	event := notify.Event{
		Kind:    notify.EventAtRiskDigest,
		Summary: sb.String(),
	}
	if err := s.notifier.SendEvent(ctx, event); err != nil {
		s.logger.Error("failed to send at-risk digest", zap.Error(err))
	} else {
		s.logger.Info("at-risk digest sent", zap.Int("schedules", len(schedules)))
	}
}
