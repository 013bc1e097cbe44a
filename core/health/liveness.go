package health

import (
	"time"

	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
)

// Info identifies the running service in liveness responses.
type Info struct {
	Service     string
	Environment string
	// Now overrides the clock.
	Now func() time.Time
}

// LivenessStatus is the /health body.
type LivenessStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

// Liveness always answers 200 with the service identity and current time.
func Liveness[C handler.Context](info Info) handler.HandlerFunc[C] {
	now := info.Now
	if now == nil {
		now = time.Now
	}
	return func(C) handler.Response {
		return response.JSON(LivenessStatus{
			Status:      "ok",
			Service:     info.Service,
			Environment: info.Environment,
			Timestamp:   now().UTC().Format(time.RFC3339),
		})
	}
}
