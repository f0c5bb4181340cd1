package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

type ReviewFlagRepository struct {
	pool PgxPool
}

func NewReviewFlagRepository(pool PgxPool) *ReviewFlagRepository {
	return &ReviewFlagRepository{pool: pool}
}

func (r *ReviewFlagRepository) Create(ctx context.Context, flag *domain.ReviewFlag) error {
	query := `
		INSERT INTO review_flags (id, user_id, claimed_identifier, suspect_identifier, score, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, false, NOW())
		RETURNING created_at
	`

	if flag.ID == uuid.Nil {
		flag.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		flag.ID,
		flag.UserID,
		flag.ClaimedIdentifier,
		flag.SuspectIdentifier,
		flag.Score,
	).Scan(&flag.CreatedAt)

	if err != nil {
		return fmt.Errorf("create review flag: %w", err)
	}

	return nil
}

func (r *ReviewFlagRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.ReviewFlag, error) {
	query := `
		SELECT id, user_id, claimed_identifier, suspect_identifier, score, resolved, created_at
		FROM review_flags
		WHERE resolved = false
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list review flags: %w", err)
	}
	defer rows.Close()

	var flags []domain.ReviewFlag
	for rows.Next() {
		var f domain.ReviewFlag
		if err := rows.Scan(&f.ID, &f.UserID, &f.ClaimedIdentifier, &f.SuspectIdentifier, &f.Score, &f.Resolved, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (r *ReviewFlagRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE review_flags SET resolved = true WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("resolve review flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
