package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/config"
	"github.com/plantops/capaplan/internal/repository/mongodb"
	"github.com/plantops/capaplan/internal/scheduler"
	"github.com/plantops/capaplan/internal/server/handlers"
	"github.com/plantops/capaplan/internal/server/router"
	bomsvc "github.com/plantops/capaplan/internal/service/bom"
	capacitysvc "github.com/plantops/capaplan/internal/service/capacity"
	plannersvc "github.com/plantops/capaplan/internal/service/planner"
	scenariosvc "github.com/plantops/capaplan/internal/service/scenario"
	shortagesvc "github.com/plantops/capaplan/internal/service/shortage"
	simulationsvc "github.com/plantops/capaplan/internal/service/simulation"
	"github.com/plantops/capaplan/pkg/clients/notify"
	"github.com/plantops/capaplan/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	bomSvc := bomsvc.NewService(cfg.Planning.BOMMaxDepth, baseLogger.Named("svc.bom"))
	shortageSvc := shortagesvc.NewService(bomSvc, baseLogger.Named("svc.shortage"))
	capacitySvc := capacitysvc.NewService(cfg.Planning.WarnThreshold, baseLogger.Named("svc.capacity"))
	plannerSvc := plannersvc.NewService(baseLogger.Named("svc.planner"))
	simulationSvc := simulationsvc.NewService(cfg.Planning.TriangularSpread, cfg.Planning.ReworkRetryCap, baseLogger.Named("svc.simulation"))
	scenarioSvc := scenariosvc.NewService(simulationSvc, cfg.Planning.ScenarioWorkers, baseLogger.Named("svc.scenario"))

	notifier := notify.NewClient(cfg.Callback)
	if cfg.Callback.WebhookURL == "" {
		baseLogger.Warn("callback webhook url missing, completion events disabled")
	}

	planningHandler := handlers.NewPlanningHandler(bomSvc, shortageSvc, capacitySvc, plannerSvc, mongoRepo, notifier, baseLogger.Named("handlers.planning"))
	simulationHandler := handlers.NewSimulationHandler(simulationSvc, scenarioSvc, mongoRepo, notifier, baseLogger.Named("handlers.simulation"))
	engine := router.New(planningHandler, simulationHandler, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(*cfg, mongoRepo, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
