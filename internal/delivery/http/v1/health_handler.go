package v1

import (
	"net/http"
	"time"

	"portfolio-email-service/internal/domain"
	"portfolio-email-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
	now      func() time.Time
}

func NewHealthHandler(r *gin.Engine, api *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC, now: time.Now}

	r.GET("/", handler.Describe)
	api.GET("/health", handler.Health)
	r.NoRoute(handler.NotFound)
}

// Health godoc
// @Summary      Health Check
// @Description  Reports that the process is up. Does not touch the mail provider.
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.HealthStatus
// @Router       /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthUC.Check(h.now()))
}

// Describe godoc
// @Summary      Service Descriptor
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.ServiceDescriptor
// @Router       / [get]
func (h *HealthHandler) Describe(c *gin.Context) {
	c.JSON(http.StatusOK, h.healthUC.Describe())
}

func (h *HealthHandler) NotFound(c *gin.Context) {
	_ = c.Error(apperror.NotFound(MsgEndpointNotFound, c.Request.URL.Path))
}
