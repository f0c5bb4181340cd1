// Package oracle defines the contract with the remote face-recognition
// service. The engine treats it as an opaque black box: images go in,
// labels, scores, and subject handles come out. Every score crossing this
// boundary is already normalized to [0,1].
package oracle

import (
	"context"
	"errors"
)

// FaceOracle is the capability surface of the remote service. Compare and
// Liveness are optional on some service tiers; implementations return
// ErrCapabilityUnavailable for them and report the probed availability via
// Capabilities, decided once at construction rather than per call.
type FaceOracle interface {
	// Enroll registers the face in the image under the given label and
	// returns the service's subject handle. The label is the normalized
	// identifier; callers must not pass raw user input.
	Enroll(ctx context.Context, label string, image []byte) (subjectID string, err error)

	// Search ranks enrolled subjects against the image. Scores are
	// normalized; labels are the strings passed to Enroll.
	Search(ctx context.Context, image []byte) ([]Candidate, error)

	// Compare scores the image against a single enrolled subject (1:1).
	Compare(ctx context.Context, subjectID string, image []byte) (float64, error)

	// Liveness estimates whether the image shows a live person.
	Liveness(ctx context.Context, image []byte) (*LivenessResult, error)

	// GetSubject fetches one subject from the registry, used for the
	// post-write confirmation and the pre-login existence check.
	GetSubject(ctx context.Context, subjectID string) (*Subject, error)

	// ListSubjects enumerates the registry.
	ListSubjects(ctx context.Context) ([]Subject, error)

	// DeleteSubject removes a subject and all its face samples.
	DeleteSubject(ctx context.Context, subjectID string) error

	// Capabilities reports which optional operations this backend/tier
	// actually provides.
	Capabilities() Capabilities
}

// Candidate is one ranked match from Search.
type Candidate struct {
	SubjectID string  `json:"subject_id"`
	Label     string  `json:"label"`
	Score     float64 `json:"score"`
}

// Subject is a registry entry.
type Subject struct {
	SubjectID string `json:"subject_id"`
	Label     string `json:"label"`
	FaceCount int    `json:"face_count"`
}

// LivenessResult is the liveness verdict for an image.
type LivenessResult struct {
	Real  bool    `json:"real"`
	Score float64 `json:"score"`
}

// Capabilities reports optional operations supported by a backend.
type Capabilities struct {
	Compare  bool `json:"compare"`
	Liveness bool `json:"liveness"`
}

var (
	// ErrCapabilityUnavailable means the operation is not provisioned on
	// this backend or service tier. It is not evidence of anything about
	// the face; callers fall back or skip the check.
	ErrCapabilityUnavailable = errors.New("oracle capability unavailable")

	// ErrSubjectNotFound means the subject handle is absent from the
	// registry.
	ErrSubjectNotFound = errors.New("subject not found in oracle registry")

	// ErrNoFaceInImage means the service found no usable face.
	ErrNoFaceInImage = errors.New("no face found in image")

	// ErrUnavailable wraps transport failures and timeouts.
	ErrUnavailable = errors.New("oracle unavailable")
)
