package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/quality"
)

// EnrollmentService interface for the enrollment decision flow.
type EnrollmentService interface {
	Register(ctx context.Context, email, phone string) (*domain.Identity, error)
	SubmitCapture(ctx context.Context, userID uuid.UUID, image []byte, detection quality.Detection) (*domain.EnrollmentResult, error)
	Complete(ctx context.Context, userID uuid.UUID) (*domain.EnrollmentResult, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	SetVerificationStatus(ctx context.Context, userID uuid.UUID, status domain.VerificationStatus) error
}

// EnrollmentHandler handles enrollment capture requests.
type EnrollmentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

func NewEnrollmentHandler(service EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger,
	}
}

// CaptureResponse response for the capture and complete endpoints.
type CaptureResponse struct {
	Accepted     bool   `json:"accepted"`
	SubjectRef   string `json:"subject_ref,omitempty"`
	CaptureCount int    `json:"capture_count"`
	State        string `json:"state"`
}

// CompleteRequest request body for the complete endpoint.
type CompleteRequest struct {
	UserID string `json:"user_id"`
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RegisterResponse response for the register endpoint.
type RegisterResponse struct {
	UserID             string `json:"user_id"`
	State              string `json:"state"`
	VerificationStatus string `json:"verification_status"`
}

// VerificationStatusRequest request body for the verification-status endpoint.
type VerificationStatusRequest struct {
	Status string `json:"status"`
}

// Register POST /v1/enrollment/register - create the identity record at the
// start of signup, before any capture is submitted.
func (h *EnrollmentHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	identity, err := h.service.Register(c.Context(), req.Email, req.Phone)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{
		UserID:             identity.UserID.String(),
		State:              string(identity.State()),
		VerificationStatus: string(identity.VerificationStatus),
	})
}

// UpdateVerificationStatus PATCH /v1/enrollment/:user_id/verification-status -
// record the account review outcome decided by the calling backend.
func (h *EnrollmentHandler) UpdateVerificationStatus(c *fiber.Ctx) error {
	userID, err := parseUserID(c.Params("user_id"))
	if err != nil {
		return err
	}

	var req VerificationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.service.SetVerificationStatus(c.Context(), userID, domain.VerificationStatus(req.Status)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SubmitCapture POST /v1/enrollment/captures - submit one enrollment capture.
// Multipart form: user_id, image, and the detector output as a JSON field.
func (h *EnrollmentHandler) SubmitCapture(c *fiber.Ctx) error {
	userID, err := parseUserID(c.FormValue("user_id"))
	if err != nil {
		return err
	}

	detectionJSON := c.FormValue("detection")
	if detectionJSON == "" {
		return domain.ErrValidationFailed.WithError(errors.New("detection is required"))
	}

	var detection quality.Detection
	if err := json.Unmarshal([]byte(detectionJSON), &detection); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	result, err := h.service.SubmitCapture(c.Context(), userID, imageBytes, detection)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(captureResponse(result))
}

// Complete POST /v1/enrollment/complete - mark signup as finished.
func (h *EnrollmentHandler) Complete(c *fiber.Ctx) error {
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	userID, err := parseUserID(req.UserID)
	if err != nil {
		return err
	}

	result, err := h.service.Complete(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(captureResponse(result))
}

// Delete DELETE /v1/enrollment/:user_id - remove the enrolled face so the
// user can re-enroll.
func (h *EnrollmentHandler) Delete(c *fiber.Ctx) error {
	userID, err := parseUserID(c.Params("user_id"))
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), userID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func captureResponse(result *domain.EnrollmentResult) CaptureResponse {
	return CaptureResponse{
		Accepted:     result.Accepted,
		SubjectRef:   result.SubjectRef,
		CaptureCount: result.CaptureCount,
		State:        string(result.State),
	}
}

func parseUserID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, domain.ErrValidationFailed.WithError(errors.New("user_id is required"))
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithError(err)
	}
	return userID, nil
}
