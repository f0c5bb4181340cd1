package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

type AttemptRepository struct {
	pool PgxPool
}

func NewAttemptRepository(pool PgxPool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.Attempt) error {
	query := `
		INSERT INTO verification_attempts (id, user_id, identifier, accepted, reason, confidence, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.Identifier,
		attempt.Accepted,
		attempt.Reason,
		attempt.Confidence,
		attempt.LatencyMs,
	).Scan(&attempt.CreatedAt)

	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}

	return nil
}

func (r *AttemptRepository) ListByIdentifier(ctx context.Context, identifier string, since time.Time) ([]domain.Attempt, error) {
	query := `
		SELECT id, user_id, identifier, accepted, reason, confidence, latency_ms, created_at
		FROM verification_attempts
		WHERE identifier = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, domain.NormalizeIdentifier(identifier), since)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		var a domain.Attempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.Identifier, &a.Accepted, &a.Reason, &a.Confidence, &a.LatencyMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
