package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// SchedulerProbe reports when a scheduled task runs next.
type SchedulerProbe interface {
	NextRun(name string) (time.Time, bool)
}

type HealthHandler struct {
	db        *sql.DB
	scheduler SchedulerProbe
	taskName  string
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// WithScheduler adds the recompute schedule to the readiness report.
func (h *HealthHandler) WithScheduler(probe SchedulerProbe, taskName string) *HealthHandler {
	h.scheduler = probe
	h.taskName = taskName
	return h
}

// Ping is the liveness probe.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Health is the readiness probe; it fails when the database does not answer.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]CheckEntry{"database": h.checkDatabase(ctx)}
	if h.scheduler != nil {
		components["scheduler"] = h.checkScheduler()
	}

	status := HealthHealthy
	for _, c := range components {
		if c.Status == HealthUnhealthy {
			status = HealthUnhealthy
		}
	}

	statusCode := http.StatusOK
	if status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:     status,
		CheckedAt:  time.Now().UTC(),
		Components: components,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	start := time.Now()
	err := h.db.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now().UTC(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}

func (h *HealthHandler) checkScheduler() CheckEntry {
	entry := CheckEntry{Status: HealthHealthy, CheckedAt: time.Now().UTC()}
	next, ok := h.scheduler.NextRun(h.taskName)
	if !ok {
		entry.Message = "task not scheduled"
		return entry
	}
	entry.Details = map[string]any{"task": h.taskName, "next_run": next.UTC()}
	return entry
}
