package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

func testPolicy() Policy {
	return Policy{
		AcceptThreshold:    0.85,
		DuplicateThreshold: 0.95,
		LivenessThreshold:  0.5,
		LockoutMaxFailures: 5,
		OracleTimeout:      5 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func enrolledIdentity(email, subjectRef string) *domain.Identity {
	return &domain.Identity{
		UserID:             uuid.New(),
		ClaimedEmail:       email,
		SubjectRef:         &subjectRef,
		CaptureCount:       3,
		SignupCompleted:    true,
		VerificationStatus: domain.VerificationVerified,
	}
}

type verifyFixture struct {
	identities  *MockIdentityRepository
	lockouts    *MockLockoutRepository
	attempts    *MockAttemptRepository
	reviewFlags *MockReviewFlagRepository
	oracle      *MockOracle
	service     *VerificationService
}

func newVerifyFixture(caps oracle.Capabilities) *verifyFixture {
	f := &verifyFixture{
		identities:  new(MockIdentityRepository),
		lockouts:    new(MockLockoutRepository),
		attempts:    new(MockAttemptRepository),
		reviewFlags: new(MockReviewFlagRepository),
		oracle:      new(MockOracle).WithCapabilities(caps),
	}
	f.service = NewVerificationService(
		f.identities, f.lockouts, f.attempts, f.reviewFlags, f.oracle, testPolicy(), testLogger(),
	)
	return f
}

func TestVerifyLogin_Accepted(t *testing.T) {
	// Fresh capture scoring 0.97 against the enrolled subject is accepted.
	f := newVerifyFixture(oracle.Capabilities{Compare: true, Liveness: true})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", Label: "a@x.com", FaceCount: 3}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(&oracle.LivenessResult{Real: true, Score: 0.9}, nil)
	f.oracle.On("Compare", mock.Anything, "S1", mock.Anything).Return(0.97, nil)
	f.lockouts.On("Reset", mock.Anything, "a@x.com").Return(nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.VerifyLogin(context.Background(), "A@X.com", []byte("img"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.Equal(t, identity.UserID, result.UserID)
	assert.Equal(t, domain.VerificationVerified, result.VerificationStatus)

	f.lockouts.AssertCalled(t, "Reset", mock.Anything, "a@x.com")
	f.oracle.AssertExpectations(t)
}

func TestVerifyLogin_BelowThreshold(t *testing.T) {
	// 0.80 against a 0.85 acceptance threshold rejects and counts toward
	// lockout.
	f := newVerifyFixture(oracle.Capabilities{Compare: true})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 3}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(nil, oracle.ErrCapabilityUnavailable)
	f.oracle.On("Compare", mock.Anything, "S1", mock.Anything).Return(0.80, nil)
	f.lockouts.On("RecordFailure", mock.Anything, "a@x.com").Return(1, nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)

	f.lockouts.AssertCalled(t, "RecordFailure", mock.Anything, "a@x.com")
}

func TestVerifyLogin_FaceNotEnrolled(t *testing.T) {
	// No subject reference rejects without any oracle call and without
	// counting toward lockout.
	f := newVerifyFixture(oracle.Capabilities{Compare: true})
	identity := &domain.Identity{
		UserID:          uuid.New(),
		ClaimedEmail:    "a@x.com",
		SignupCompleted: true,
	}

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrFaceNotEnrolled)

	f.oracle.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	f.lockouts.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything)
}

func TestVerifyLogin_LockedOut(t *testing.T) {
	// A locked identifier is rejected before any oracle traffic.
	f := newVerifyFixture(oracle.Capabilities{Compare: true})

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(5, nil)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrLockedOut)

	f.identities.AssertNotCalled(t, "GetByIdentifier", mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Liveness", mock.Anything, mock.Anything)
}

func TestVerifyLogin_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		identity *domain.Identity
		getErr   error
		wantErr  error
	}{
		{
			name:    "account not found",
			getErr:  domain.ErrAccountNotFound,
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "signup incomplete",
			identity: &domain.Identity{
				UserID:       uuid.New(),
				ClaimedEmail: "a@x.com",
			},
			wantErr: domain.ErrSignupIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifyFixture(oracle.Capabilities{Compare: true})

			f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
			if tt.getErr != nil {
				f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(nil, tt.getErr)
			} else {
				f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(tt.identity, nil)
			}

			_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
			assert.ErrorIs(t, err, tt.wantErr)

			f.lockouts.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyLogin_SubjectVanished(t *testing.T) {
	// A reference missing from the registry is an integrity error routed to
	// re-enrollment, not a face mismatch, and is not counted toward lockout.
	f := newVerifyFixture(oracle.Capabilities{Compare: true})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(nil, oracle.ErrSubjectNotFound)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrReenrollmentRequired)

	f.lockouts.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything)
}

func TestVerifyLogin_OracleUnavailable(t *testing.T) {
	// Infrastructure failure on the mandatory comparison fails closed but
	// never counts toward lockout.
	f := newVerifyFixture(oracle.Capabilities{Compare: true})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 1}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(nil, oracle.ErrCapabilityUnavailable)
	f.oracle.On("Compare", mock.Anything, "S1", mock.Anything).Return(0.0, oracle.ErrUnavailable)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)

	f.lockouts.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything)
}

func TestVerifyLogin_LivenessFailed(t *testing.T) {
	// An explicit spoof verdict rejects and counts toward lockout.
	f := newVerifyFixture(oracle.Capabilities{Compare: true, Liveness: true})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 1}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(&oracle.LivenessResult{Real: false, Score: 0.1}, nil)
	f.lockouts.On("RecordFailure", mock.Anything, "a@x.com").Return(1, nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrLivenessFailed)

	f.oracle.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything, mock.Anything)
	f.lockouts.AssertCalled(t, "RecordFailure", mock.Anything, "a@x.com")
}

func TestVerifyLogin_SearchFallback(t *testing.T) {
	// Without the 1:1 compare capability the score comes from search
	// filtered to the claimed identifier's own candidate.
	f := newVerifyFixture(oracle.Capabilities{})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 1}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(nil, oracle.ErrCapabilityUnavailable)
	f.oracle.On("Search", mock.Anything, mock.Anything).Return([]oracle.Candidate{
		{SubjectID: "S1", Label: "a@x.com", Score: 0.92},
		{SubjectID: "S2", Label: "b@y.com", Score: 0.60},
	}, nil)
	f.lockouts.On("Reset", mock.Anything, "a@x.com").Return(nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.False(t, result.DuplicateFlagged)
}

func TestVerifyLogin_OtherIdentifierNeverAuthenticates(t *testing.T) {
	// A face enrolled only under another identifier cannot log in as the
	// claimed one, however high its own candidate scores.
	f := newVerifyFixture(oracle.Capabilities{})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 1}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(nil, oracle.ErrCapabilityUnavailable)
	f.oracle.On("Search", mock.Anything, mock.Anything).Return([]oracle.Candidate{
		{SubjectID: "S2", Label: "b@y.com", Score: 0.99},
	}, nil)
	f.reviewFlags.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.lockouts.On("RecordFailure", mock.Anything, "a@x.com").Return(1, nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)

	// The very high foreign candidate raises a review flag but never
	// authenticates.
	f.reviewFlags.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVerifyLogin_DuplicateSignalDoesNotBlockAccept(t *testing.T) {
	// A foreign candidate above the duplicate threshold flags for review
	// while the login itself still succeeds on the claimed candidate.
	f := newVerifyFixture(oracle.Capabilities{})
	identity := enrolledIdentity("a@x.com", "S1")

	f.lockouts.On("FailureCount", mock.Anything, "a@x.com").Return(0, nil)
	f.identities.On("GetByIdentifier", mock.Anything, "a@x.com").Return(identity, nil)
	f.oracle.On("GetSubject", mock.Anything, "S1").Return(&oracle.Subject{SubjectID: "S1", FaceCount: 1}, nil)
	f.oracle.On("Liveness", mock.Anything, mock.Anything).Return(nil, oracle.ErrCapabilityUnavailable)
	f.oracle.On("Search", mock.Anything, mock.Anything).Return([]oracle.Candidate{
		{SubjectID: "S1", Label: "a@x.com", Score: 0.96},
		{SubjectID: "S2", Label: "b@y.com", Score: 0.97},
	}, nil)
	f.reviewFlags.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.lockouts.On("Reset", mock.Anything, "a@x.com").Return(nil)
	f.attempts.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.VerifyLogin(context.Background(), "a@x.com", []byte("img"))
	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.True(t, result.DuplicateFlagged)
	f.reviewFlags.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}
