package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

// PgxPool is the subset of pgxpool.Pool the registry uses.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Registry is the subject store backing the self-hosted oracle. It keeps
// each subject's embeddings in pgvector and answers similarity queries
// with cosine distance.
type Registry struct {
	pool PgxPool
}

// NewRegistry creates a registry on the given pool.
func NewRegistry(pool PgxPool) *Registry {
	return &Registry{pool: pool}
}

// match is one subject hit from a similarity search.
type match struct {
	SubjectID  uuid.UUID
	Label      string
	Similarity float64
}

// EnsureSubject returns the subject ID for a label, creating the subject
// if it does not exist yet.
func (r *Registry) EnsureSubject(ctx context.Context, label string) (uuid.UUID, error) {
	query := `
		INSERT INTO oracle_subjects (id, label, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id
	`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, uuid.New(), label).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("ensure subject: %w", err)
	}
	return id, nil
}

// AddFace stores one embedding under a subject.
func (r *Registry) AddFace(ctx context.Context, subjectID uuid.UUID, embedding []float64) error {
	query := `
		INSERT INTO oracle_faces (id, subject_id, embedding, created_at)
		VALUES ($1, $2, $3, NOW())
	`

	_, err := r.pool.Exec(ctx, query, uuid.New(), subjectID, toVector(embedding))
	if err != nil {
		return fmt.Errorf("add face: %w", err)
	}
	return nil
}

// Search returns the best-matching subjects for an embedding, one row per
// subject, ordered by similarity.
func (r *Registry) Search(ctx context.Context, embedding []float64, limit int) ([]match, error) {
	query := `
		SELECT subject_id, label, similarity FROM (
			SELECT DISTINCT ON (s.id)
				s.id AS subject_id,
				s.label,
				1 - (f.embedding <=> $1) AS similarity
			FROM oracle_faces f
			JOIN oracle_subjects s ON s.id = f.subject_id
			ORDER BY s.id, f.embedding <=> $1
		) best
		ORDER BY similarity DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, toVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search faces: %w", err)
	}
	defer rows.Close()

	var matches []match
	for rows.Next() {
		var m match
		if err := rows.Scan(&m.SubjectID, &m.Label, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// BestSimilarity returns the highest similarity between an embedding and
// the stored faces of one subject.
func (r *Registry) BestSimilarity(ctx context.Context, subjectID uuid.UUID, embedding []float64) (float64, error) {
	query := `
		SELECT 1 - (embedding <=> $1) AS similarity
		FROM oracle_faces
		WHERE subject_id = $2
		ORDER BY embedding <=> $1
		LIMIT 1
	`

	var similarity float64
	err := r.pool.QueryRow(ctx, query, toVector(embedding), subjectID).Scan(&similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oracle.ErrSubjectNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("best similarity: %w", err)
	}
	return similarity, nil
}

// GetSubject fetches one subject with its face count.
func (r *Registry) GetSubject(ctx context.Context, subjectID uuid.UUID) (*oracle.Subject, error) {
	query := `
		SELECT s.id, s.label, COUNT(f.id)
		FROM oracle_subjects s
		LEFT JOIN oracle_faces f ON f.subject_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.label
	`

	var (
		id        uuid.UUID
		label     string
		faceCount int
	)
	err := r.pool.QueryRow(ctx, query, subjectID).Scan(&id, &label, &faceCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oracle.ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	return &oracle.Subject{
		SubjectID: id.String(),
		Label:     label,
		FaceCount: faceCount,
	}, nil
}

// ListSubjects enumerates the registry.
func (r *Registry) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	query := `
		SELECT s.id, s.label, COUNT(f.id)
		FROM oracle_subjects s
		LEFT JOIN oracle_faces f ON f.subject_id = s.id
		GROUP BY s.id, s.label
		ORDER BY s.created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []oracle.Subject
	for rows.Next() {
		var (
			id        uuid.UUID
			label     string
			faceCount int
		)
		if err := rows.Scan(&id, &label, &faceCount); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, oracle.Subject{
			SubjectID: id.String(),
			Label:     label,
			FaceCount: faceCount,
		})
	}
	return subjects, rows.Err()
}

// DeleteSubject removes a subject and all of its faces.
func (r *Registry) DeleteSubject(ctx context.Context, subjectID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM oracle_subjects WHERE id = $1`, subjectID)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if result.RowsAffected() == 0 {
		return oracle.ErrSubjectNotFound
	}
	return nil
}

func toVector(embedding []float64) pgvector.Vector {
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	return pgvector.NewVector(floats)
}
