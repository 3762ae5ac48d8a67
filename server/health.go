package server

import (
	"time"

	"linkedin_post_generator/generator"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthInput is everything ReportHealth looks at.
type HealthInput struct {
	HasAPIKey   bool
	APIKeyVar   string
	LastCall    generator.CallStatus
	Provider    string
	Model       string
	Environment string
	Now         time.Time
}

type ModelInfo struct {
	ModelName string `json:"model_name"`
	Provider  string `json:"provider"`
}

// HealthStatus is the payload served at /?health.
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	App         string    `json:"app"`
	Version     string    `json:"version"`
	Environment string    `json:"environment,omitempty"`
	AgentStatus string    `json:"agent_status"`
	Message     string    `json:"message,omitempty"`
	ModelInfo   ModelInfo `json:"model_info"`
}

// ReportHealth derives the service status. It makes no network calls: a
// missing key is unhealthy, a failed last model call is degraded.
func ReportHealth(in HealthInput) HealthStatus {
	h := HealthStatus{
		Timestamp:   in.Now.UTC(),
		App:         AppName,
		Version:     Version,
		Environment: in.Environment,
		ModelInfo:   ModelInfo{ModelName: in.Model, Provider: in.Provider},
	}
	switch {
	case !in.HasAPIKey:
		h.Status = StatusUnhealthy
		h.AgentStatus = "not_configured"
		h.Message = in.APIKeyVar + " is not set"
	case in.LastCall.Attempted && !in.LastCall.OK:
		h.Status = StatusDegraded
		h.AgentStatus = "error"
		h.Message = in.LastCall.Err
	default:
		h.Status = StatusHealthy
		h.AgentStatus = "ready"
	}
	return h
}
