// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Operations passed to IncValidationFailed.
const (
	OpCreate = "create"
	OpUpdate = "update"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User management metrics
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()
	IncValidationFailed(op string) // op: "create" or "update"

	// Password hashing
	ObservePasswordHash(duration time.Duration)

	// Form submissions rejected by the rate limiter
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
