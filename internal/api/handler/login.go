package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// VerificationService interface for the login decision flow.
type VerificationService interface {
	VerifyLogin(ctx context.Context, claimedIdentifier string, image []byte) (*domain.LoginResult, error)
}

// LoginHandler handles face login requests.
type LoginHandler struct {
	service VerificationService
	logger  *slog.Logger
}

func NewLoginHandler(service VerificationService, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{
		service: service,
		logger:  logger,
	}
}

// LoginResponse response for the verify endpoint. Confidence scores stay
// internal; the caller only learns the outcome and both gate states.
type LoginResponse struct {
	Accepted           bool   `json:"accepted"`
	UserID             string `json:"user_id"`
	VerificationStatus string `json:"verification_status"`
}

// Verify POST /v1/login/verify - run one 1:1 login verification attempt.
// Multipart form: identifier (claimed email or phone) and image.
func (h *LoginHandler) Verify(c *fiber.Ctx) error {
	identifier := strings.TrimSpace(c.FormValue("identifier"))
	if identifier == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identifier is required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	result, err := h.service.VerifyLogin(c.Context(), identifier, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(LoginResponse{
		Accepted:           result.Accepted,
		UserID:             result.UserID.String(),
		VerificationStatus: string(result.VerificationStatus),
	})
}
