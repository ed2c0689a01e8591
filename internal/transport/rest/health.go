package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

const serviceName = "admin-management"

type healthResponse struct {
	Service   string                 `json:"service"`
	Status    string                 `json:"status"`
	CheckedAt time.Time              `json:"checked_at"`
	Checks    map[string]healthCheck `json:"checks"`
}

type healthCheck struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// pingHandler only confirms the process is accepting requests.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"service": serviceName, "status": "ok"})
}

// healthCheckHandler also verifies the admin database is reachable.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	check := healthCheck{
		Status:     "up",
		DurationMs: time.Since(start).Milliseconds(),
	}
	status := "healthy"
	statusCode := http.StatusOK

	if err != nil {
		check.Status = "down"
		check.Error = err.Error()
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	resp := healthResponse{
		Service:   serviceName,
		Status:    status,
		CheckedAt: time.Now(),
		Checks:    map[string]healthCheck{"postgres": check},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
