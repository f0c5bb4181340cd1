package local

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

const searchLimit = 10

// Oracle is the self-hosted backend: embeddings come from an external
// represent service and subjects live in the pgvector registry. Compare
// works through stored embeddings; there is no liveness check.
type Oracle struct {
	client   *Client
	registry *Registry
}

var _ oracle.FaceOracle = (*Oracle)(nil)

// NewOracle creates the self-hosted oracle.
func NewOracle(cfg Config, pool PgxPool) *Oracle {
	return &Oracle{
		client:   NewClient(cfg),
		registry: NewRegistry(pool),
	}
}

func (o *Oracle) Capabilities() oracle.Capabilities {
	return oracle.Capabilities{Compare: true}
}

// embed runs the represent service on the image and returns the single
// face embedding.
func (o *Oracle) embed(ctx context.Context, image []byte) ([]float64, error) {
	resp, err := o.client.Represent(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		if errors.Is(err, ErrRepresentUnavailable) {
			return nil, fmt.Errorf("%w: %v", oracle.ErrUnavailable, err)
		}
		return nil, err
	}

	if len(resp.Results) == 0 || len(resp.Results[0].Embedding) == 0 {
		return nil, oracle.ErrNoFaceInImage
	}

	return resp.Results[0].Embedding, nil
}

func (o *Oracle) Enroll(ctx context.Context, label string, image []byte) (string, error) {
	embedding, err := o.embed(ctx, image)
	if err != nil {
		return "", err
	}

	subjectID, err := o.registry.EnsureSubject(ctx, label)
	if err != nil {
		return "", err
	}

	if err := o.registry.AddFace(ctx, subjectID, embedding); err != nil {
		return "", err
	}

	return subjectID.String(), nil
}

func (o *Oracle) Search(ctx context.Context, image []byte) ([]oracle.Candidate, error) {
	embedding, err := o.embed(ctx, image)
	if err != nil {
		return nil, err
	}

	matches, err := o.registry.Search(ctx, embedding, searchLimit)
	if err != nil {
		return nil, err
	}

	candidates := make([]oracle.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, oracle.Candidate{
			SubjectID: m.SubjectID.String(),
			Label:     m.Label,
			Score:     oracle.NormalizeScore(m.Similarity),
		})
	}
	return candidates, nil
}

func (o *Oracle) Compare(ctx context.Context, subjectID string, image []byte) (float64, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return 0, fmt.Errorf("parse subject id %q: %w", subjectID, oracle.ErrSubjectNotFound)
	}

	embedding, err := o.embed(ctx, image)
	if err != nil {
		return 0, err
	}

	similarity, err := o.registry.BestSimilarity(ctx, id, embedding)
	if err != nil {
		return 0, err
	}

	return oracle.NormalizeScore(similarity), nil
}

func (o *Oracle) Liveness(ctx context.Context, image []byte) (*oracle.LivenessResult, error) {
	return nil, oracle.ErrCapabilityUnavailable
}

func (o *Oracle) GetSubject(ctx context.Context, subjectID string) (*oracle.Subject, error) {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, fmt.Errorf("parse subject id %q: %w", subjectID, oracle.ErrSubjectNotFound)
	}
	return o.registry.GetSubject(ctx, id)
}

func (o *Oracle) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	return o.registry.ListSubjects(ctx)
}

func (o *Oracle) DeleteSubject(ctx context.Context, subjectID string) error {
	id, err := uuid.Parse(subjectID)
	if err != nil {
		return fmt.Errorf("parse subject id %q: %w", subjectID, oracle.ErrSubjectNotFound)
	}
	return o.registry.DeleteSubject(ctx, id)
}
