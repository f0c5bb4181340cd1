package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

const embeddingDimension = 512

// Oracle is an in-memory oracle for tests and development. Embeddings
// are deterministic hashes of the image bytes, so the same image always
// matches itself with similarity 1.0 and different images score low.
type Oracle struct {
	mu       sync.RWMutex
	subjects map[string]*subject
}

type subject struct {
	id         string
	label      string
	embeddings [][]float64
}

var _ oracle.FaceOracle = (*Oracle)(nil)

// New creates an empty mock oracle.
func New() *Oracle {
	return &Oracle{subjects: make(map[string]*subject)}
}

func (o *Oracle) Capabilities() oracle.Capabilities {
	return oracle.Capabilities{Compare: true, Liveness: true}
}

func (o *Oracle) Enroll(ctx context.Context, label string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", oracle.ErrNoFaceInImage
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range o.subjects {
		if s.label == label {
			s.embeddings = append(s.embeddings, generateEmbedding(image))
			return s.id, nil
		}
	}

	id := uuid.New().String()
	o.subjects[id] = &subject{
		id:         id,
		label:      label,
		embeddings: [][]float64{generateEmbedding(image)},
	}
	return id, nil
}

func (o *Oracle) Search(ctx context.Context, image []byte) ([]oracle.Candidate, error) {
	if len(image) == 0 {
		return nil, oracle.ErrNoFaceInImage
	}

	probe := generateEmbedding(image)

	o.mu.RLock()
	defer o.mu.RUnlock()

	candidates := make([]oracle.Candidate, 0, len(o.subjects))
	for _, s := range o.subjects {
		candidates = append(candidates, oracle.Candidate{
			SubjectID: s.id,
			Label:     s.label,
			Score:     oracle.NormalizeScore(bestSimilarity(s, probe)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates, nil
}

func (o *Oracle) Compare(ctx context.Context, subjectID string, image []byte) (float64, error) {
	if len(image) == 0 {
		return 0, oracle.ErrNoFaceInImage
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	s, ok := o.subjects[subjectID]
	if !ok {
		return 0, oracle.ErrSubjectNotFound
	}

	return oracle.NormalizeScore(bestSimilarity(s, generateEmbedding(image))), nil
}

func (o *Oracle) Liveness(ctx context.Context, image []byte) (*oracle.LivenessResult, error) {
	if len(image) == 0 {
		return nil, oracle.ErrNoFaceInImage
	}
	return &oracle.LivenessResult{Real: true, Score: 0.95}, nil
}

func (o *Oracle) GetSubject(ctx context.Context, subjectID string) (*oracle.Subject, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	s, ok := o.subjects[subjectID]
	if !ok {
		return nil, oracle.ErrSubjectNotFound
	}

	return &oracle.Subject{
		SubjectID: s.id,
		Label:     s.label,
		FaceCount: len(s.embeddings),
	}, nil
}

func (o *Oracle) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	subjects := make([]oracle.Subject, 0, len(o.subjects))
	for _, s := range o.subjects {
		subjects = append(subjects, oracle.Subject{
			SubjectID: s.id,
			Label:     s.label,
			FaceCount: len(s.embeddings),
		})
	}
	return subjects, nil
}

func (o *Oracle) DeleteSubject(ctx context.Context, subjectID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.subjects[subjectID]; !ok {
		return oracle.ErrSubjectNotFound
	}
	delete(o.subjects, subjectID)
	return nil
}

func bestSimilarity(s *subject, probe []float64) float64 {
	best := 0.0
	for _, emb := range s.embeddings {
		if sim := cosineSimilarity(emb, probe); sim > best {
			best = sim
		}
	}
	return best
}

// generateEmbedding derives a unit vector from the image hash.
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		embedding[i] = (float64(hash[i%hashLen])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
