package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
	"github.com/saturnino-fabrica-de-software/facegate/internal/quality"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
)

// EnrollmentService decides whether a face capture becomes (part of) a
// registration. Nothing is persisted unless every step passes, and the
// subject reference is only written after the oracle confirms the
// registration actually landed in its registry.
type EnrollmentService struct {
	identities repository.IdentityRepositoryInterface
	guard      *DuplicateGuard
	oracle     oracle.FaceOracle
	policy     Policy
	logger     *slog.Logger
}

func NewEnrollmentService(
	identities repository.IdentityRepositoryInterface,
	guard *DuplicateGuard,
	o oracle.FaceOracle,
	policy Policy,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		identities: identities,
		guard:      guard,
		oracle:     o,
		policy:     policy,
		logger:     logger,
	}
}

// Register creates the identity record at the start of signup. Both
// identifiers are canonicalized before the write; at least one must remain
// non-empty afterwards.
func (s *EnrollmentService) Register(ctx context.Context, email, phone string) (*domain.Identity, error) {
	email = domain.NormalizeIdentifier(email)
	phone = domain.NormalizeIdentifier(phone)
	if email == "" && phone == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("email or phone is required"))
	}

	identity := &domain.Identity{
		ClaimedEmail: email,
		ClaimedPhone: phone,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	s.logger.Info("identity registered",
		"user_id", identity.UserID,
		"identifier", domain.MaskIdentifier(identity.Identifier()),
	)

	return identity, nil
}

// SetVerificationStatus records the calling backend's account review
// outcome. Login results stay restricted while the status is pending even
// when the face matches.
func (s *EnrollmentService) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error {
	switch status {
	case domain.VerificationPending, domain.VerificationVerified:
	default:
		return domain.ErrValidationFailed.WithError(fmt.Errorf("unknown verification status %q", status))
	}

	return s.identities.SetVerificationStatus(ctx, userID, status)
}

// SubmitCapture runs one enrollment capture attempt end to end: quality
// gate, liveness, duplicate guard, oracle enroll, post-write confirmation,
// and only then the identity store write.
func (s *EnrollmentService) SubmitCapture(ctx context.Context, userID uuid.UUID, image []byte, detection quality.Detection) (*domain.EnrollmentResult, error) {
	identity, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := quality.Evaluate(detection)
	if !report.Ready {
		return nil, domain.ErrCaptureNotReady.WithError(fmt.Errorf("capture not ready: %s", report.Reason))
	}

	if err := checkLiveness(ctx, s.oracle, image, s.policy.LivenessThreshold, s.policy.OracleTimeout, s.logger); err != nil {
		return nil, err
	}

	identifier := identity.Identifier()

	check, err := s.guard.Check(ctx, identifier, image, false)
	if err != nil {
		return nil, err
	}
	if check.IsDuplicate {
		return nil, domain.ErrDuplicateFace
	}

	callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	subjectID, err := s.oracle.Enroll(callCtx, identifier, image)
	cancel()
	if err != nil {
		return nil, mapOracleErr(err)
	}

	if err := s.confirmRegistration(ctx, subjectID); err != nil {
		return nil, err
	}

	// Subsequent captures for the same identity must land on the same
	// subject; the repository update is guarded so a confirmed reference
	// never flips to a different one.
	if err := s.identities.AttachSubjectRef(ctx, userID, subjectID, identity.CaptureCount+1); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment capture accepted",
		"user_id", userID,
		"identifier", domain.MaskIdentifier(identifier),
		"capture_count", identity.CaptureCount+1,
	)

	updated, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.EnrollmentResult{
		Accepted:     true,
		SubjectRef:   subjectID,
		CaptureCount: updated.CaptureCount,
		State:        updated.State(),
	}, nil
}

// confirmRegistration re-queries the oracle registry and requires the
// subject to be present with at least one face. An enroll call that
// returned an id but cannot be confirmed is treated as a failed write.
func (s *EnrollmentService) confirmRegistration(ctx context.Context, subjectID string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	defer cancel()

	subject, err := s.oracle.GetSubject(callCtx, subjectID)
	if err != nil {
		return domain.ErrEnrollmentNotConfirmed.WithError(err)
	}
	if subject.FaceCount < 1 {
		return domain.ErrEnrollmentNotConfirmed.WithError(fmt.Errorf("subject %s has no faces", subjectID))
	}

	return nil
}

// Complete marks signup as finished once all required capture steps are
// done. It fails when no face is enrolled yet.
func (s *EnrollmentService) Complete(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentResult, error) {
	if err := s.identities.MarkSignupCompleted(ctx, userID); err != nil {
		return nil, err
	}

	identity, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &domain.EnrollmentResult{
		Accepted:     true,
		CaptureCount: identity.CaptureCount,
		State:        identity.State(),
	}
	if identity.SubjectRef != nil {
		result.SubjectRef = *identity.SubjectRef
	}
	return result, nil
}

// Delete removes the enrolled face for re-enrollment: oracle registry
// first, then the identity store reference.
func (s *EnrollmentService) Delete(ctx context.Context, userID uuid.UUID) error {
	identity, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if identity.Enrolled() {
		callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
		err := s.oracle.DeleteSubject(callCtx, *identity.SubjectRef)
		cancel()
		if err != nil && !errors.Is(err, oracle.ErrSubjectNotFound) {
			return mapOracleErr(err)
		}
	}

	return s.identities.ClearSubjectRef(ctx, userID)
}
