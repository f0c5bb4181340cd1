package compreface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

const searchLimit = 10

// Oracle implements oracle.FaceOracle against a CompreFace installation.
// The verify (1:1) endpoint and the liveness plugin are optional; their
// availability is probed once at construction and cached for the lifetime
// of the instance, instead of retrying endpoint variants per call.
type Oracle struct {
	client *Client
	caps   oracle.Capabilities
}

var _ oracle.FaceOracle = (*Oracle)(nil)

// NewOracle creates the CompreFace oracle and probes optional capabilities.
func NewOracle(ctx context.Context, config Config) (*Oracle, error) {
	client := NewClient(config)

	compare, err := client.Probe(ctx, http.MethodPost, "/api/v1/recognition/verify/probe")
	if err != nil {
		return nil, fmt.Errorf("probe verify capability: %w", wrapTransport(err))
	}

	liveness, err := client.Probe(ctx, http.MethodPost, "/api/v1/liveness")
	if err != nil {
		return nil, fmt.Errorf("probe liveness capability: %w", wrapTransport(err))
	}

	return &Oracle{
		client: client,
		caps: oracle.Capabilities{
			Compare:  compare,
			Liveness: liveness,
		},
	}, nil
}

func (o *Oracle) Capabilities() oracle.Capabilities {
	return o.caps
}

func (o *Oracle) Enroll(ctx context.Context, label string, image []byte) (string, error) {
	resp, err := o.client.Enroll(ctx, label, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		return "", fmt.Errorf("enroll subject: %w", wrapTransport(err))
	}
	if resp.SubjectID == "" {
		return "", fmt.Errorf("enroll subject: %w", ErrInvalidResponse)
	}
	return resp.SubjectID, nil
}

func (o *Oracle) Search(ctx context.Context, image []byte) ([]oracle.Candidate, error) {
	resp, err := o.client.Recognize(ctx, base64.StdEncoding.EncodeToString(image), searchLimit)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", wrapTransport(err))
	}

	if len(resp.Result) == 0 {
		return nil, oracle.ErrNoFaceInImage
	}

	// One face per capture; the first result carries the ranked subjects.
	matches := resp.Result[0].Subjects
	candidates := make([]oracle.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, oracle.Candidate{
			SubjectID: m.SubjectID,
			Label:     m.Subject,
			Score:     oracle.NormalizeScore(m.Similarity),
		})
	}

	return candidates, nil
}

func (o *Oracle) Compare(ctx context.Context, subjectID string, image []byte) (float64, error) {
	if !o.caps.Compare {
		return 0, oracle.ErrCapabilityUnavailable
	}

	resp, err := o.client.Verify(ctx, subjectID, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.status == http.StatusNotFound || se.status == http.StatusMethodNotAllowed) {
			// The tier changed under us; treat as unavailable, not as a
			// mismatch.
			return 0, oracle.ErrCapabilityUnavailable
		}
		return 0, fmt.Errorf("verify subject %s: %w", subjectID, wrapTransport(err))
	}

	return oracle.NormalizeScore(resp.Similarity), nil
}

func (o *Oracle) Liveness(ctx context.Context, image []byte) (*oracle.LivenessResult, error) {
	if !o.caps.Liveness {
		return nil, oracle.ErrCapabilityUnavailable
	}

	resp, err := o.client.Liveness(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.status == http.StatusNotFound || se.status == http.StatusMethodNotAllowed) {
			return nil, oracle.ErrCapabilityUnavailable
		}
		return nil, fmt.Errorf("liveness: %w", wrapTransport(err))
	}

	return &oracle.LivenessResult{
		Real:  resp.Result == "real",
		Score: oracle.NormalizeScore(resp.Probability),
	}, nil
}

func (o *Oracle) GetSubject(ctx context.Context, subjectID string) (*oracle.Subject, error) {
	entry, err := o.client.GetSubject(ctx, subjectID)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return nil, oracle.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject %s: %w", subjectID, wrapTransport(err))
	}

	return &oracle.Subject{
		SubjectID: entry.SubjectID,
		Label:     entry.Subject,
		FaceCount: entry.FaceCount,
	}, nil
}

func (o *Oracle) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	resp, err := o.client.ListSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", wrapTransport(err))
	}

	subjects := make([]oracle.Subject, 0, len(resp.Subjects))
	for _, e := range resp.Subjects {
		subjects = append(subjects, oracle.Subject{
			SubjectID: e.SubjectID,
			Label:     e.Subject,
			FaceCount: e.FaceCount,
		})
	}
	return subjects, nil
}

func (o *Oracle) DeleteSubject(ctx context.Context, subjectID string) error {
	if err := o.client.DeleteSubject(ctx, subjectID); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.status == http.StatusNotFound {
			return oracle.ErrSubjectNotFound
		}
		return fmt.Errorf("delete subject %s: %w", subjectID, wrapTransport(err))
	}
	return nil
}

// wrapTransport folds service-unavailable errors into the shared oracle
// sentinel so the decision layer can apply its fail-open/fail-closed rules
// without knowing the backend.
func wrapTransport(err error) error {
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", oracle.ErrUnavailable, err)
	}
	return err
}
