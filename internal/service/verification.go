package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
)

// VerificationService makes the login decision. Verification is strictly
// 1:1: the claimed identifier resolves to its enrolled subject first and
// the capture is compared only against that subject. Candidates belonging
// to other identifiers never influence accept or reject; at most they
// raise an administrative review flag.
type VerificationService struct {
	identities  repository.IdentityRepositoryInterface
	lockouts    repository.LockoutRepositoryInterface
	attempts    repository.AttemptRepositoryInterface
	reviewFlags repository.ReviewFlagRepositoryInterface
	oracle      oracle.FaceOracle
	policy      Policy
	logger      *slog.Logger
}

func NewVerificationService(
	identities repository.IdentityRepositoryInterface,
	lockouts repository.LockoutRepositoryInterface,
	attempts repository.AttemptRepositoryInterface,
	reviewFlags repository.ReviewFlagRepositoryInterface,
	o oracle.FaceOracle,
	policy Policy,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		identities:  identities,
		lockouts:    lockouts,
		attempts:    attempts,
		reviewFlags: reviewFlags,
		oracle:      o,
		policy:      policy,
		logger:      logger,
	}
}

// VerifyLogin runs one 1:1 verification attempt. Step order is fixed: a
// locked identifier is rejected before any oracle traffic, precondition
// failures on the claimed identity never reach the similarity call, and
// infrastructure failures reject without counting toward lockout.
func (s *VerificationService) VerifyLogin(ctx context.Context, claimedIdentifier string, image []byte) (*domain.LoginResult, error) {
	start := time.Now()
	identifier := domain.NormalizeIdentifier(claimedIdentifier)

	count, err := s.lockouts.FailureCount(ctx, identifier)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	if count >= s.policy.LockoutMaxFailures {
		s.logger.Warn("login rejected, identifier locked out",
			"identifier", domain.MaskIdentifier(identifier),
			"failures", count,
		)
		return nil, domain.ErrLockedOut
	}

	identity, err := s.identities.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !identity.SignupCompleted {
		return nil, domain.ErrSignupIncomplete
	}
	if !identity.Enrolled() {
		return nil, domain.ErrFaceNotEnrolled
	}

	// Defensive registry re-check. A reference that vanished from the
	// oracle is a data problem, not an impostor: route to re-enrollment
	// instead of reporting a face mismatch.
	if err := s.confirmSubject(ctx, *identity.SubjectRef); err != nil {
		return nil, err
	}

	if err := checkLiveness(ctx, s.oracle, image, s.policy.LivenessThreshold, s.policy.OracleTimeout, s.logger); err != nil {
		if errors.Is(err, domain.ErrLivenessFailed) {
			s.recordRejection(ctx, identity, identifier, "liveness_failed", nil, start)
		}
		return nil, err
	}

	score, flagged, err := s.similarity(ctx, identity, identifier, image)
	if err != nil {
		return nil, err
	}

	if score < s.policy.AcceptThreshold {
		s.recordRejection(ctx, identity, identifier, "similarity_below_threshold", &score, start)
		return nil, domain.ErrVerificationFailed
	}

	if err := s.lockouts.Reset(ctx, identifier); err != nil {
		s.logger.Error("failed to reset lockout counter", "error", err)
	}
	s.audit(ctx, identity, identifier, true, "", &score, start)

	s.logger.Info("login accepted",
		"user_id", identity.UserID,
		"identifier", domain.MaskIdentifier(identifier),
		"verification_status", identity.VerificationStatus,
	)

	return &domain.LoginResult{
		Accepted:           true,
		UserID:             identity.UserID,
		VerificationStatus: identity.VerificationStatus,
		Confidence:         score,
		DuplicateFlagged:   flagged,
	}, nil
}

// similarity obtains the normalized score between the capture and the
// enrolled subject: the 1:1 compare capability when the probe found it,
// otherwise a search filtered down to the claimed identifier's own
// candidate. On the search path the other candidates get one post-hoc scan
// for duplicate-enrollment signals.
func (s *VerificationService) similarity(ctx context.Context, identity *domain.Identity, identifier string, image []byte) (float64, bool, error) {
	if s.oracle.Capabilities().Compare {
		callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
		score, err := s.oracle.Compare(callCtx, *identity.SubjectRef, image)
		cancel()
		if err == nil {
			return score, false, nil
		}
		if !errors.Is(err, oracle.ErrCapabilityUnavailable) {
			return 0, false, mapOracleErr(err)
		}
		// The capability disappeared after probing; fall through to search.
	}

	callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	candidates, err := s.oracle.Search(callCtx, image)
	cancel()
	if err != nil {
		return 0, false, mapOracleErr(err)
	}

	score := 0.0
	flagged := false
	for _, candidate := range candidates {
		if domain.SameIdentifier(candidate.Label, identifier) {
			if candidate.Score > score {
				score = candidate.Score
			}
			continue
		}

		if candidate.Score >= s.policy.DuplicateThreshold {
			flagged = true
			s.flagForReview(ctx, identity, identifier, candidate)
		}
	}

	return score, flagged, nil
}

func (s *VerificationService) confirmSubject(ctx context.Context, subjectRef string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.policy.OracleTimeout)
	defer cancel()

	subject, err := s.oracle.GetSubject(callCtx, subjectRef)
	if err != nil {
		if errors.Is(err, oracle.ErrSubjectNotFound) {
			return domain.ErrReenrollmentRequired.WithError(err)
		}
		return mapOracleErr(err)
	}
	if subject.FaceCount < 1 {
		return domain.ErrReenrollmentRequired
	}
	return nil
}

// flagForReview persists a duplicate-enrollment signal for administrative
// review. It never changes the login outcome; persistence failures only
// log.
func (s *VerificationService) flagForReview(ctx context.Context, identity *domain.Identity, identifier string, candidate oracle.Candidate) {
	flag := &domain.ReviewFlag{
		UserID:            identity.UserID,
		ClaimedIdentifier: domain.MaskIdentifier(identifier),
		SuspectIdentifier: domain.MaskIdentifier(candidate.Label),
		Score:             candidate.Score,
	}
	if err := s.reviewFlags.Create(ctx, flag); err != nil {
		s.logger.Error("failed to persist review flag", "error", err)
		return
	}

	s.logger.Warn("duplicate enrollment signal flagged for review",
		"user_id", identity.UserID,
		"suspect", flag.SuspectIdentifier,
	)
}

// recordRejection counts a security rejection toward lockout and audits
// it. Infrastructure and precondition failures never come through here.
func (s *VerificationService) recordRejection(ctx context.Context, identity *domain.Identity, identifier, reason string, confidence *float64, start time.Time) {
	count, err := s.lockouts.RecordFailure(ctx, identifier)
	if err != nil {
		s.logger.Error("failed to record lockout failure", "error", err)
	} else if count >= s.policy.LockoutMaxFailures {
		s.logger.Warn("identifier reached lockout threshold",
			"identifier", domain.MaskIdentifier(identifier),
			"failures", count,
		)
	}

	s.audit(ctx, identity, identifier, false, reason, confidence, start)
}

// audit writes the attempt record. Best effort: the decision is already
// made, a failed audit write must not change it.
func (s *VerificationService) audit(ctx context.Context, identity *domain.Identity, identifier string, accepted bool, reason string, confidence *float64, start time.Time) {
	var userID *uuid.UUID
	if identity != nil {
		userID = &identity.UserID
	}

	attempt := &domain.Attempt{
		UserID:     userID,
		Identifier: identifier,
		Accepted:   accepted,
		Reason:     reason,
		Confidence: confidence,
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to persist verification attempt", "error", err)
	}
}
