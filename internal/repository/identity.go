package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

type IdentityRepository struct {
	pool PgxPool
}

func NewIdentityRepository(pool PgxPool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

const identityColumns = `user_id, claimed_email, claimed_phone, subject_ref, capture_count, signup_completed, verification_status, created_at, updated_at`

// Create inserts a new identity. Identifiers are canonicalized before the
// write so the normalized lookups in GetByIdentifier always match and the
// unique indexes cannot be bypassed with case or punctuation variants.
func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO identities (user_id, claimed_email, claimed_phone, subject_ref, capture_count, signup_completed, verification_status, created_at, updated_at)
		VALUES ($1, $2, $3, NULL, 0, false, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if identity.UserID == uuid.Nil {
		identity.UserID = uuid.New()
	}
	if identity.VerificationStatus == "" {
		identity.VerificationStatus = domain.VerificationPending
	}
	identity.ClaimedEmail = domain.NormalizeIdentifier(identity.ClaimedEmail)
	identity.ClaimedPhone = domain.NormalizeIdentifier(identity.ClaimedPhone)

	err := r.pool.QueryRow(ctx, query,
		identity.UserID,
		identity.ClaimedEmail,
		identity.ClaimedPhone,
		identity.VerificationStatus,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdentityExists
		}
		return fmt.Errorf("create identity: %w", err)
	}

	return nil
}

func (r *IdentityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE user_id = $1`

	return r.scanIdentity(r.pool.QueryRow(ctx, query, userID))
}

// GetByIdentifier looks up an identity by normalized email or phone.
func (r *IdentityRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE claimed_email = $1 OR claimed_phone = $1`

	return r.scanIdentity(r.pool.QueryRow(ctx, query, domain.NormalizeIdentifier(identifier)))
}

// AttachSubjectRef records a confirmed oracle registration. The guard on
// subject_ref keeps a stored reference from silently switching to a
// different oracle subject.
func (r *IdentityRepository) AttachSubjectRef(ctx context.Context, userID uuid.UUID, subjectRef string, captureCount int) error {
	query := `
		UPDATE identities
		SET subject_ref = $2, capture_count = $3, updated_at = NOW()
		WHERE user_id = $1 AND (subject_ref IS NULL OR subject_ref = $2)
	`

	result, err := r.pool.Exec(ctx, query, userID, subjectRef, captureCount)
	if err != nil {
		return fmt.Errorf("attach subject ref: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSubjectMismatch
	}
	return nil
}

// ClearSubjectRef detaches the face enrollment, returning the identity to
// the unenrolled state.
func (r *IdentityRepository) ClearSubjectRef(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE identities
		SET subject_ref = NULL, capture_count = 0, signup_completed = false, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("clear subject ref: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *IdentityRepository) MarkSignupCompleted(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE identities
		SET signup_completed = true, updated_at = NOW()
		WHERE user_id = $1 AND subject_ref IS NOT NULL
	`

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("mark signup completed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrFaceNotEnrolled
	}
	return nil
}

func (r *IdentityRepository) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error {
	query := `
		UPDATE identities
		SET verification_status = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.pool.Exec(ctx, query, userID, status)
	if err != nil {
		return fmt.Errorf("set verification status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *IdentityRepository) scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var identity domain.Identity

	err := row.Scan(
		&identity.UserID,
		&identity.ClaimedEmail,
		&identity.ClaimedPhone,
		&identity.SubjectRef,
		&identity.CaptureCount,
		&identity.SignupCompleted,
		&identity.VerificationStatus,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	return &identity, nil
}
