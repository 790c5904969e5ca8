package domain

import "time"

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ServiceDescriptor is the body of GET /.
type ServiceDescriptor struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthUsecase reports process liveness. It has no dependencies and cannot fail.
type HealthUsecase interface {
	Check(now time.Time) HealthStatus
	Describe() ServiceDescriptor
}
