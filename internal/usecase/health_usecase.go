package usecase

import (
	"time"

	"portfolio-email-service/internal/domain"
)

const (
	ServiceName    = "Portfolio Email Service"
	ServiceVersion = "1.0.0"
)

// isoMillis matches JavaScript's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthUsecase struct{}

func NewHealthUsecase() domain.HealthUsecase {
	return &healthUsecase{}
}

func (u *healthUsecase) Check(now time.Time) domain.HealthStatus {
	return domain.HealthStatus{
		Status:    "ok",
		Message:   "Server is running",
		Timestamp: now.UTC().Format(isoMillis),
	}
}

func (u *healthUsecase) Describe() domain.ServiceDescriptor {
	return domain.ServiceDescriptor{
		Name:    ServiceName,
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"contact": "POST /api/contact",
			"health":  "GET /api/health",
			"test":    "POST /api/email/test",
		},
	}
}
