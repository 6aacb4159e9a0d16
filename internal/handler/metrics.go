package handler

import (
	"fmt"
	"net/http"

	"github.com/useradmin/useradmin/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "useradmin_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "useradmin_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "useradmin_users_deleted_total %d\n", snap.UsersDeleted)

	writeMetric(w, "useradmin_validation_failures_total{op=\"create\"} %d\n", snap.CreateValidationFailed)
	writeMetric(w, "useradmin_validation_failures_total{op=\"update\"} %d\n", snap.UpdateValidationFailed)

	writeMetric(w, "useradmin_password_hash_duration_seconds_count %d\n", snap.PasswordHashCount)
	writeMetric(w, "useradmin_password_hash_duration_seconds_sum %.6f\n", float64(snap.PasswordHashTotalNs)/1e9)

	writeMetric(w, "useradmin_rate_limited_total %d\n", snap.RateLimitedSubmissions)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
