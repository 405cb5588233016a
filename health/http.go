package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Probe paths served by this package. Transports exempt these from
// credential enforcement.
const (
	LivenessPath  = "/healthz"
	ReadinessPath = "/readyz"
)

// DefaultPaths returns the probe paths for transport exempt lists.
func DefaultPaths() []string {
	return []string{LivenessPath, ReadinessPath}
}

// LivenessHandler returns an HTTP handler for liveness probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// readinessResponse is the JSON body of the readiness endpoint.
type readinessResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]checkResponse `json:"checks,omitempty"`
}

type checkResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ReadinessHandler returns an HTTP handler that runs all checks and reports
// them as JSON. Unhealthy yields 503.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		response := readinessResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]checkResponse, len(results)),
		}
		for name, result := range results {
			check := checkResponse{
				Status:  result.Status.String(),
				Message: result.Message,
				Details: result.Details,
			}
			if result.Error != nil {
				check.Error = result.Error.Error()
			}
			response.Checks[name] = check
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}
