package v1

import (
	"log/slog"
	"net/http"

	"portfolio-email-service/config"
	"portfolio-email-service/internal/delivery/http/middleware"
	"portfolio-email-service/internal/delivery/http/response"
	"portfolio-email-service/internal/domain"
	"portfolio-email-service/pkg/audit"
	"portfolio-email-service/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  domain.HealthUsecase
	Config    *config.Config
	Audit     *audit.Logger
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Log receives the development request log. Defaults to logger.Log.
	Log *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if deps.Log == nil {
		deps.Log = logger.Log
	}

	r := gin.New()

	// Global Middlewares
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Log.Error("Panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
		c.Abort()
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	if !cfg.IsProduction() {
		r.Use(middleware.RequestLogger(deps.Log))
	}
	r.Use(middleware.CORSMiddleware(middleware.NewOriginPolicy(cfg.CORSOrigins, cfg.CORSPreviewSuffix), deps.Audit))
	r.Use(middleware.ErrorHandler(!cfg.IsProduction()))
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	api := r.Group("/api")

	NewHealthHandler(r, api, deps.HealthUC)
	NewContactHandler(api, deps.ContactUC)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
