package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/quality"
)

// MockEnrollmentService is a mock implementation of EnrollmentService.
type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) Register(ctx context.Context, email, phone string) (*domain.Identity, error) {
	args := m.Called(ctx, email, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockEnrollmentService) SubmitCapture(ctx context.Context, userID uuid.UUID, image []byte, detection quality.Detection) (*domain.EnrollmentResult, error) {
	args := m.Called(ctx, userID, image, detection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnrollmentResult), args.Error(1)
}

func (m *MockEnrollmentService) Complete(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EnrollmentResult), args.Error(1)
}

func (m *MockEnrollmentService) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockEnrollmentService) SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

// MockVerificationService is a mock implementation of VerificationService.
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) VerifyLogin(ctx context.Context, claimedIdentifier string, image []byte) (*domain.LoginResult, error) {
	args := m.Called(ctx, claimedIdentifier, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoginResult), args.Error(1)
}

// MockDuplicateChecker is a mock implementation of DuplicateChecker.
type MockDuplicateChecker struct {
	mock.Mock
}

func (m *MockDuplicateChecker) Check(ctx context.Context, claimedIdentifier string, image []byte, failOpen bool) (*domain.DuplicateCheck, error) {
	args := m.Called(ctx, claimedIdentifier, image, failOpen)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuplicateCheck), args.Error(1)
}

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp builds a fiber app with the error handling the real router
// uses, so handler tests observe real status codes.
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(500).SendString(err.Error())
		},
	})
}

// jsonBody marshals v for use as a request body.
func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// multipartForm builds a multipart body with the given fields and an
// optional image part.
func multipartForm(fields map[string]string, imageContent []byte, contentType string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range fields {
		_ = writer.WriteField(name, value)
	}

	if imageContent != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="capture.jpg"`)
		h.Set("Content-Type", contentType)

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		_, _ = part.Write(imageContent)
	}

	_ = writer.Close()
	return body, writer.FormDataContentType(), nil
}
