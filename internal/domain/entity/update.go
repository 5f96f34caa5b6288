package entity

import "time"

// UpdatePhase is the per-listing price-change state machine. Owned by the
// update coordinator; everyone else reads.
type UpdatePhase string

const (
	UpdateIdle       UpdatePhase = "idle"
	UpdateSubmitting UpdatePhase = "submitting"
	UpdateVerifying  UpdatePhase = "verifying"
	UpdateSucceeded  UpdatePhase = "succeeded"
	UpdateFailed     UpdatePhase = "failed"
)

type UpdateState struct {
	Phase UpdatePhase

	// Verified distinguishes a confirmed re-fetch from the best-effort
	// partial merge used when verification exhausts its retries. Both end
	// in UpdateSucceeded, but only one is trustworthy for diagnostics.
	Verified bool

	LastUpdatedAt time.Time
	LastError     string
}

func (s UpdateState) InFlight() bool {
	return s.Phase == UpdateSubmitting || s.Phase == UpdateVerifying
}
