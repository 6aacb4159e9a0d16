package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated           uint64
	UsersUpdated           uint64
	UsersDeleted           uint64
	CreateValidationFailed uint64
	UpdateValidationFailed uint64
	PasswordHashCount      uint64
	PasswordHashTotalNs    int64
	RateLimitedSubmissions uint64
}

// InMemoryRecorder keeps counters in process memory. It backs /metrics.
type InMemoryRecorder struct {
	usersCreated           uint64
	usersUpdated           uint64
	usersDeleted           uint64
	createValidationFailed uint64
	updateValidationFailed uint64
	passwordHashCount      uint64
	passwordHashTotalNs    int64
	rateLimited            uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersCreated:           atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:           atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:           atomic.LoadUint64(&m.usersDeleted),
		CreateValidationFailed: atomic.LoadUint64(&m.createValidationFailed),
		UpdateValidationFailed: atomic.LoadUint64(&m.updateValidationFailed),
		PasswordHashCount:      atomic.LoadUint64(&m.passwordHashCount),
		PasswordHashTotalNs:    atomic.LoadInt64(&m.passwordHashTotalNs),
		RateLimitedSubmissions: atomic.LoadUint64(&m.rateLimited),
	}
}

// IncUserCreated increments the created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncValidationFailed counts a rejected submission for op.
func (m *InMemoryRecorder) IncValidationFailed(op string) {
	switch op {
	case OpCreate:
		atomic.AddUint64(&m.createValidationFailed, 1)
	case OpUpdate:
		atomic.AddUint64(&m.updateValidationFailed, 1)
	}
}

// ObservePasswordHash records hash duration.
func (m *InMemoryRecorder) ObservePasswordHash(duration time.Duration) {
	atomic.AddUint64(&m.passwordHashCount, 1)
	atomic.AddInt64(&m.passwordHashTotalNs, duration.Nanoseconds())
}

// IncRateLimited increments the rate limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
