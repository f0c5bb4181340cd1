package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// IdentityRepositoryInterface defines operations on the identity store.
type IdentityRepositoryInterface interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Identity, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error)
	AttachSubjectRef(ctx context.Context, userID uuid.UUID, subjectRef string, captureCount int) error
	ClearSubjectRef(ctx context.Context, userID uuid.UUID) error
	MarkSignupCompleted(ctx context.Context, userID uuid.UUID) error
	SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error
}

// LockoutRepositoryInterface defines the persisted failure counters.
type LockoutRepositoryInterface interface {
	RecordFailure(ctx context.Context, identifier string) (int, error)
	FailureCount(ctx context.Context, identifier string) (int, error)
	Reset(ctx context.Context, identifier string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// AttemptRepositoryInterface defines the verification attempt audit log.
type AttemptRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.Attempt) error
	ListByIdentifier(ctx context.Context, identifier string, since time.Time) ([]domain.Attempt, error)
}

// ReviewFlagRepositoryInterface defines duplicate-signal flags raised for
// administrative review.
type ReviewFlagRepositoryInterface interface {
	Create(ctx context.Context, flag *domain.ReviewFlag) error
	ListUnresolved(ctx context.Context, limit int) ([]domain.ReviewFlag, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}
