//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "facegate_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/facegate_test?sslmode=disable", host, port.Port())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

		CREATE TABLE IF NOT EXISTS identities (
			user_id UUID PRIMARY KEY,
			claimed_email VARCHAR(255) NOT NULL DEFAULT '',
			claimed_phone VARCHAR(32) NOT NULL DEFAULT '',
			subject_ref VARCHAR(255),
			capture_count INT NOT NULL DEFAULT 0,
			signup_completed BOOLEAN NOT NULL DEFAULT false,
			verification_status VARCHAR(16) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_email ON identities(claimed_email) WHERE claimed_email <> '';
		CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_phone ON identities(claimed_phone) WHERE claimed_phone <> '';

		CREATE TABLE IF NOT EXISTS lockout_counters (
			identifier VARCHAR(255) PRIMARY KEY,
			count INT NOT NULL,
			window_start TIMESTAMP NOT NULL,
			window_end TIMESTAMP NOT NULL
		);
	`)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func TestIdentityLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewIdentityRepository(db)

	identity := &domain.Identity{ClaimedEmail: "alice@example.com"}
	require.NoError(t, repo.Create(ctx, identity))

	// Second account on the same identifier must be rejected.
	err := repo.Create(ctx, &domain.Identity{ClaimedEmail: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrIdentityExists)

	got, err := repo.GetByIdentifier(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, got.UserID)
	assert.Equal(t, domain.EnrollmentNoFace, got.State())

	// Signup completion needs an enrolled face first.
	assert.ErrorIs(t, repo.MarkSignupCompleted(ctx, identity.UserID), domain.ErrFaceNotEnrolled)

	require.NoError(t, repo.AttachSubjectRef(ctx, identity.UserID, "subj-1", 1))

	// Attaching a different subject to an enrolled identity must fail.
	assert.ErrorIs(t, repo.AttachSubjectRef(ctx, identity.UserID, "subj-2", 2), domain.ErrSubjectMismatch)

	// Same subject again (another capture) is allowed.
	require.NoError(t, repo.AttachSubjectRef(ctx, identity.UserID, "subj-1", 2))

	require.NoError(t, repo.MarkSignupCompleted(ctx, identity.UserID))

	got, err = repo.GetByUserID(ctx, identity.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentEnrolled, got.State())
	assert.Equal(t, 2, got.CaptureCount)

	require.NoError(t, repo.ClearSubjectRef(ctx, identity.UserID))
	got, err = repo.GetByUserID(ctx, identity.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentNoFace, got.State())
}

func TestLockoutCounters_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewLockoutRepository(db, 200*time.Millisecond)

	for i := 1; i <= 3; i++ {
		count, err := repo.RecordFailure(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}

	count, err := repo.FailureCount(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The counter restarts after the window expires.
	time.Sleep(250 * time.Millisecond)

	count, err = repo.FailureCount(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.RecordFailure(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.Reset(ctx, "alice@example.com"))
	count, err = repo.FailureCount(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}
