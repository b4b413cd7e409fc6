package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/plantops/capaplan/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(planning *handlers.PlanningHandler, simulation *handlers.SimulationHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/bom/explode", planning.ExplodeBOM)
		v1.POST("/components/check", planning.CheckComponents)
		v1.POST("/capacity/analyze", planning.AnalyzeCapacity)

		v1.POST("/schedules", planning.GenerateSchedule)
		v1.GET("/schedules/:id", planning.GetSchedule)
		v1.POST("/schedules/:id/commit", planning.CommitSchedule)

		v1.POST("/simulations/run", simulation.Run)
		v1.POST("/simulations/validate", simulation.Validate)
		v1.POST("/scenarios/compare", simulation.Compare)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
