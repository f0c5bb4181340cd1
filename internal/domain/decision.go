package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentResult is the outcome of one enrollment capture attempt.
type EnrollmentResult struct {
	Accepted     bool            `json:"accepted"`
	SubjectRef   string          `json:"subject_ref,omitempty"`
	CaptureCount int             `json:"capture_count"`
	State        EnrollmentState `json:"state"`
}

// LoginResult is the outcome of a 1:1 verification attempt. Confidence stays
// internal: the handler only surfaces Accepted and VerificationStatus.
type LoginResult struct {
	Accepted           bool               `json:"accepted"`
	UserID             uuid.UUID          `json:"user_id"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	Confidence         float64            `json:"-"`
	DuplicateFlagged   bool               `json:"-"`
}

// DuplicateCheck is the duplicate guard's verdict. ConflictingIdentifier is
// already masked; Score is internal.
type DuplicateCheck struct {
	IsDuplicate           bool    `json:"is_duplicate"`
	ConflictingIdentifier string  `json:"conflicting_identifier,omitempty"`
	Score                 float64 `json:"-"`
}

// Attempt is the audit record of a verification attempt.
type Attempt struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Identifier string     `json:"identifier"`
	Accepted   bool       `json:"accepted"`
	Reason     string     `json:"reason,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	LatencyMs  int64      `json:"latency_ms"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ReviewFlag marks a duplicate-enrollment signal observed during login for
// administrative review. It never changes the login outcome by itself.
type ReviewFlag struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	ClaimedIdentifier string    `json:"claimed_identifier"`
	SuspectIdentifier string    `json:"suspect_identifier"`
	Score             float64   `json:"score"`
	Resolved          bool      `json:"resolved"`
	CreatedAt         time.Time `json:"created_at"`
}
