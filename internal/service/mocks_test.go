package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockIdentityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Identity, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentityRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockIdentityRepository) AttachSubjectRef(ctx context.Context, userID uuid.UUID, subjectRef string, captureCount int) error {
	args := m.Called(ctx, userID, subjectRef, captureCount)
	return args.Error(0)
}

func (m *MockIdentityRepository) ClearSubjectRef(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockIdentityRepository) MarkSignupCompleted(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockIdentityRepository) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type MockLockoutRepository struct {
	mock.Mock
}

func (m *MockLockoutRepository) RecordFailure(ctx context.Context, identifier string) (int, error) {
	args := m.Called(ctx, identifier)
	return args.Int(0), args.Error(1)
}

func (m *MockLockoutRepository) FailureCount(ctx context.Context, identifier string) (int, error) {
	args := m.Called(ctx, identifier)
	return args.Int(0), args.Error(1)
}

func (m *MockLockoutRepository) Reset(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

func (m *MockLockoutRepository) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) ListByIdentifier(ctx context.Context, identifier string, since time.Time) ([]domain.Attempt, error) {
	args := m.Called(ctx, identifier, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attempt), args.Error(1)
}

type MockReviewFlagRepository struct {
	mock.Mock
}

func (m *MockReviewFlagRepository) Create(ctx context.Context, flag *domain.ReviewFlag) error {
	args := m.Called(ctx, flag)
	return args.Error(0)
}

func (m *MockReviewFlagRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.ReviewFlag, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewFlag), args.Error(1)
}

func (m *MockReviewFlagRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockOracle struct {
	mock.Mock
	caps oracle.Capabilities
}

func (m *MockOracle) WithCapabilities(caps oracle.Capabilities) *MockOracle {
	m.caps = caps
	return m
}

func (m *MockOracle) Enroll(ctx context.Context, label string, image []byte) (string, error) {
	args := m.Called(ctx, label, image)
	return args.String(0), args.Error(1)
}

func (m *MockOracle) Search(ctx context.Context, image []byte) ([]oracle.Candidate, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oracle.Candidate), args.Error(1)
}

func (m *MockOracle) Compare(ctx context.Context, subjectID string, image []byte) (float64, error) {
	args := m.Called(ctx, subjectID, image)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockOracle) Liveness(ctx context.Context, image []byte) (*oracle.LivenessResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oracle.LivenessResult), args.Error(1)
}

func (m *MockOracle) GetSubject(ctx context.Context, subjectID string) (*oracle.Subject, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oracle.Subject), args.Error(1)
}

func (m *MockOracle) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oracle.Subject), args.Error(1)
}

func (m *MockOracle) DeleteSubject(ctx context.Context, subjectID string) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

func (m *MockOracle) Capabilities() oracle.Capabilities {
	return m.caps
}
