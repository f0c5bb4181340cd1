package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// LockoutRepository persists failed-verification counters per identifier
// with a fixed window, so a lockout survives process restarts and holds
// across replicas.
type LockoutRepository struct {
	pool   PgxPool
	window time.Duration
}

func NewLockoutRepository(pool PgxPool, window time.Duration) *LockoutRepository {
	return &LockoutRepository{pool: pool, window: window}
}

// RecordFailure atomically increments the counter for an identifier and
// returns the new count. A counter whose window has expired restarts at 1.
func (r *LockoutRepository) RecordFailure(ctx context.Context, identifier string) (int, error) {
	now := time.Now()
	windowEnd := now.Add(r.window)

	query := `
		WITH current_count AS (
			INSERT INTO lockout_counters (identifier, count, window_start, window_end)
			VALUES ($1, 1, $2, $3)
			ON CONFLICT (identifier)
			DO UPDATE SET
				count = CASE
					WHEN lockout_counters.window_end < $2 THEN 1
					ELSE lockout_counters.count + 1
				END,
				window_start = CASE
					WHEN lockout_counters.window_end < $2 THEN $2
					ELSE lockout_counters.window_start
				END,
				window_end = CASE
					WHEN lockout_counters.window_end < $2 THEN $3
					ELSE lockout_counters.window_end
				END
			RETURNING count
		)
		SELECT count FROM current_count
	`

	var count int
	err := r.pool.QueryRow(ctx, query, domain.NormalizeIdentifier(identifier), now, windowEnd).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}

	return count, nil
}

// FailureCount returns the active counter for an identifier. An expired or
// missing counter reads as zero.
func (r *LockoutRepository) FailureCount(ctx context.Context, identifier string) (int, error) {
	query := `
		SELECT count
		FROM lockout_counters
		WHERE identifier = $1 AND window_end >= $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, domain.NormalizeIdentifier(identifier), time.Now()).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failure count: %w", err)
	}

	return count, nil
}

// Reset clears the counter after a successful verification.
func (r *LockoutRepository) Reset(ctx context.Context, identifier string) error {
	query := `DELETE FROM lockout_counters WHERE identifier = $1`

	if _, err := r.pool.Exec(ctx, query, domain.NormalizeIdentifier(identifier)); err != nil {
		return fmt.Errorf("reset lockout: %w", err)
	}
	return nil
}

// CleanupExpired removes stale counters (run periodically).
func (r *LockoutRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM lockout_counters WHERE window_end < NOW() - INTERVAL '1 hour'`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup lockout counters: %w", err)
	}
	return result.RowsAffected(), nil
}
