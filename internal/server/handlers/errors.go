package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/domain/models"
)

// statusClientClosedRequest mirrors nginx's non-standard code for requests
// abandoned by the caller.
const statusClientClosedRequest = 499

// writeError maps domain errors onto HTTP responses. Input problems are
// 422 so callers can distinguish them from malformed JSON (400).
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		vErr *models.ValidationError
		cErr *models.CycleError
		dErr *models.DivergenceError
	)
	switch {
	case errors.Is(err, context.Canceled):
		c.JSON(statusClientClosedRequest, gin.H{"error": "request cancelled"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "issues": vErr.Issues})
	case errors.As(err, &cErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cycle detected", "path": cErr.Path})
	case errors.Is(err, models.ErrExplosionTooDeep):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &dErr):
		logger.Error("invariant violated", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
