package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/repository/mongodb"
	"github.com/plantops/capaplan/internal/service/scenario"
	"github.com/plantops/capaplan/internal/service/simulation"
	"github.com/plantops/capaplan/pkg/clients/notify"
)

// SimulationHandler serves the stochastic line simulator and the scenario
// comparator built on top of it.
type SimulationHandler struct {
	simSvc      *simulation.Service
	scenarioSvc *scenario.Service
	repo        mongodb.Repository
	notifier    notify.Client
	logger      *zap.Logger
}

// NewSimulationHandler constructs the HTTP handler adapter.
func NewSimulationHandler(simSvc *simulation.Service, scenarioSvc *scenario.Service, repo mongodb.Repository, notifier notify.Client, logger *zap.Logger) *SimulationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationHandler{
		simSvc:      simSvc,
		scenarioSvc: scenarioSvc,
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Run executes one simulation over the posted config.
func (h *SimulationHandler) Run(c *gin.Context) {
	var cfg models.SimulationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Warn("invalid simulation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.simSvc.Run(c.Request.Context(), cfg)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Validate runs the structural checks without simulating. The report itself
// is always a 200; findings live inside it.
func (h *SimulationHandler) Validate(c *gin.Context) {
	var cfg models.SimulationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Warn("invalid validation payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.simSvc.ValidateConfig(cfg))
}

// CompareScenariosRequest runs a baseline plus named what-if cases.
type CompareScenariosRequest struct {
	ClientID  string                  `json:"client_id"`
	Baseline  models.SimulationConfig `json:"baseline"`
	Scenarios []models.Scenario       `json:"scenarios"`
}

// Compare runs the scenario comparator and persists the outcome.
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req CompareScenariosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid comparison payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	run, err := h.scenarioSvc.Compare(c.Request.Context(), req.ClientID, req.Baseline, req.Scenarios)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if err := h.repo.SaveScenarioRun(c.Request.Context(), *run); err != nil {
		writeError(c, h.logger, err)
		return
	}

	if h.notifier != nil {
		event := notify.Event{
			Kind:       notify.EventScenarioCompleted,
			ClientID:   run.ClientID,
			ResourceID: run.ID,
			Summary:    "scenario comparison completed",
		}
		if err := h.notifier.SendEvent(c.Request.Context(), event); err != nil {
			h.logger.Warn("comparison callback failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, run)
}
