package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus gates final application access. It is independent of
// face match success: both gates must pass.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// EnrollmentState is the per-identity capture state machine.
type EnrollmentState string

const (
	EnrollmentNoFace    EnrollmentState = "no_face"
	EnrollmentEnrolling EnrollmentState = "enrolling"
	EnrollmentEnrolled  EnrollmentState = "enrolled"
)

// Identity is the per-user record in the identity store. SubjectRef is the
// oracle's own handle for the enrolled face; it is only ever written after
// the enrollment decision has confirmed the registration actually persisted
// in the oracle's registry.
type Identity struct {
	UserID             uuid.UUID          `json:"user_id"`
	ClaimedEmail       string             `json:"claimed_email,omitempty"`
	ClaimedPhone       string             `json:"claimed_phone,omitempty"`
	SubjectRef         *string            `json:"subject_ref,omitempty"`
	CaptureCount       int                `json:"capture_count"`
	SignupCompleted    bool               `json:"signup_completed"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Enrolled reports whether a confirmed subject reference is attached.
func (i *Identity) Enrolled() bool {
	return i.SubjectRef != nil && *i.SubjectRef != ""
}

// State derives the enrollment state machine position.
func (i *Identity) State() EnrollmentState {
	switch {
	case !i.Enrolled():
		return EnrollmentNoFace
	case !i.SignupCompleted:
		return EnrollmentEnrolling
	default:
		return EnrollmentEnrolled
	}
}

// Identifier returns the normalized identifier used as the oracle label:
// the claimed email when present, otherwise the claimed phone. At least one
// is guaranteed non-empty by the signup flow.
func (i *Identity) Identifier() string {
	if i.ClaimedEmail != "" {
		return NormalizeIdentifier(i.ClaimedEmail)
	}
	return NormalizeIdentifier(i.ClaimedPhone)
}
