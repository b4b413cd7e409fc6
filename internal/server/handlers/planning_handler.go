package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
	"github.com/plantops/capaplan/internal/repository/mongodb"
	"github.com/plantops/capaplan/internal/service/bom"
	"github.com/plantops/capaplan/internal/service/capacity"
	"github.com/plantops/capaplan/internal/service/planner"
	"github.com/plantops/capaplan/internal/service/shortage"
	"github.com/plantops/capaplan/pkg/clients/notify"
)

// PlanningHandler serves the deterministic planning pipeline: BOM explosion,
// component checks, capacity analysis and schedule generation.
type PlanningHandler struct {
	bomSvc      *bom.Service
	shortageSvc *shortage.Service
	capacitySvc *capacity.Service
	plannerSvc  *planner.Service
	repo        mongodb.Repository
	notifier    notify.Client
	logger      *zap.Logger
}

// NewPlanningHandler constructs the HTTP handler adapter.
func NewPlanningHandler(bomSvc *bom.Service, shortageSvc *shortage.Service, capacitySvc *capacity.Service, plannerSvc *planner.Service, repo mongodb.Repository, notifier notify.Client, logger *zap.Logger) *PlanningHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningHandler{
		bomSvc:      bomSvc,
		shortageSvc: shortageSvc,
		capacitySvc: capacitySvc,
		plannerSvc:  plannerSvc,
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
	}
}

// ExplodeBOMRequest asks for the component demand of one parent item.
type ExplodeBOMRequest struct {
	Dataset    models.PlanningDataset `json:"dataset"`
	ParentItem string                 `json:"parent_item"`
	Quantity   decimal.Decimal        `json:"quantity"`
}

// ExplodeBOM resolves a parent item into leaf component demand.
func (h *PlanningHandler) ExplodeBOM(c *gin.Context) {
	var req ExplodeBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid explode payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	components, err := h.bomSvc.Explode(c.Request.Context(), &req.Dataset, req.ParentItem, req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"components": components})
}

// CheckComponentsRequest asks for component coverage of a set of orders.
type CheckComponentsRequest struct {
	Dataset  models.PlanningDataset `json:"dataset"`
	OrderIDs []string               `json:"order_ids"`
}

// CheckComponents nets order component demand against available stock.
func (h *PlanningHandler) CheckComponents(c *gin.Context) {
	var req CheckComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid component check payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.shortageSvc.CheckComponents(c.Request.Context(), &req.Dataset, req.OrderIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeCapacityRequest asks for line loading over a date range.
type AnalyzeCapacityRequest struct {
	Dataset models.PlanningDataset `json:"dataset"`
	Start   time.Time              `json:"start"`
	End     time.Time              `json:"end"`
	LineIDs []string               `json:"line_ids"`
}

// AnalyzeCapacity computes required versus available minutes per line per day.
func (h *PlanningHandler) AnalyzeCapacity(c *gin.Context) {
	var req AnalyzeCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid capacity payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	analysis, err := h.capacitySvc.Analyze(c.Request.Context(), &req.Dataset, req.Start, req.End, req.LineIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GenerateScheduleRequest asks the planner to place orders on lines.
type GenerateScheduleRequest struct {
	Dataset  models.PlanningDataset `json:"dataset"`
	Name     string                 `json:"name"`
	Start    time.Time              `json:"start"`
	End      time.Time              `json:"end"`
	OrderIDs []string               `json:"order_ids"`
}

// GenerateSchedule builds and persists a draft capacity schedule.
func (h *PlanningHandler) GenerateSchedule(c *gin.Context) {
	var req GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid schedule payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	schedule, err := h.plannerSvc.Generate(c.Request.Context(), &req.Dataset, req.Name, req.Start, req.End, req.OrderIDs)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if err := h.repo.SaveSchedule(c.Request.Context(), *schedule); err != nil {
		writeError(c, h.logger, err)
		return
	}

	if h.notifier != nil {
		event := notify.Event{
			Kind:       notify.EventScheduleCreated,
			ClientID:   schedule.ClientID,
			ResourceID: schedule.ID,
			Summary:    schedule.Name,
		}
		if err := h.notifier.SendEvent(c.Request.Context(), event); err != nil {
			h.logger.Warn("creation callback failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, schedule)
}

// GetSchedule fetches a stored schedule by ID.
func (h *PlanningHandler) GetSchedule(c *gin.Context) {
	schedule, err := h.repo.GetSchedule(c.Request.Context(), c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// CommitScheduleRequest freezes a schedule with its KPI targets.
type CommitScheduleRequest struct {
	Commitments models.KPICommitments `json:"commitments"`
}

// CommitSchedule marks a stored schedule as committed and notifies listeners.
func (h *PlanningHandler) CommitSchedule(c *gin.Context) {
	var req CommitScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid commit payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	schedule, err := h.repo.GetSchedule(c.Request.Context(), c.Param("id"))
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if schedule.Committed {
		c.JSON(http.StatusConflict, gin.H{"error": "schedule already committed"})
		return
	}

	committed := h.plannerSvc.Commit(schedule, req.Commitments)
	if err := h.repo.ReplaceSchedule(c.Request.Context(), *committed); err != nil {
		writeError(c, h.logger, err)
		return
	}

	if h.notifier != nil {
		event := notify.Event{
			Kind:       notify.EventScheduleCommitted,
			ClientID:   committed.ClientID,
			ResourceID: committed.ID,
			Summary:    committed.Name,
		}
		if err := h.notifier.SendEvent(c.Request.Context(), event); err != nil {
			h.logger.Warn("commit callback failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, committed)
}
