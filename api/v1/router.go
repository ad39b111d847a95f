package v1

import (
	"time"

	"certhub/api/v1/admin"
	"certhub/api/v1/auth"
	"certhub/api/v1/certificates"
	"certhub/api/v1/middleware"
	"certhub/api/v1/reports"
	"certhub/internal/config"
	"certhub/internal/httpx"
	"certhub/internal/issuance"
	"certhub/internal/report"
	"certhub/internal/stats"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the API surface needs.
type Deps struct {
	Config       *config.Config
	Orchestrator *issuance.Orchestrator
	Store        *issuance.Store
	Stats        stats.Recorder
	Reports      report.Sender
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	r.GET("/health", healthHandler(deps.Config))

	v1 := r.Group("/api/v1")
	{
		// Certificate issuance routes (public)
		certHandler := certificates.NewHandler(deps.Orchestrator)
		certGroup := v1.Group("/certificates")
		{
			certGroup.POST("/request", certHandler.Request)
			certGroup.POST("/validate/:requestId", certHandler.Validate)
			certGroup.GET("/status/:requestId", certHandler.Status)
		}

		// Issue reports (public)
		v1.POST("/report", reports.NewHandler(deps.Reports).Submit)

		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(deps.Config))
		}

		// Protected routes (authentication required)
		protected := v1.Group("/admin")
		protected.Use(middleware.AuthRequired())
		{
			adminHandler := admin.NewHandler(deps.Stats, deps.Store)
			protected.GET("/stats", adminHandler.Stats)
		}
	}
}

// healthHandler reports process liveness and the ACME directory in use
func healthHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		httpx.OK(c, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"acme":      cfg.ACME.DirectoryURL,
		})
	}
}
