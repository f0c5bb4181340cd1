package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// DuplicateChecker interface for the ad-hoc duplicate check.
type DuplicateChecker interface {
	Check(ctx context.Context, claimedIdentifier string, image []byte, failOpen bool) (*domain.DuplicateCheck, error)
}

// DuplicateHandler handles ad-hoc duplicate pre-checks, used by the signup
// UI before the actual enrollment attempt.
type DuplicateHandler struct {
	checker DuplicateChecker
	logger  *slog.Logger
}

func NewDuplicateHandler(checker DuplicateChecker, logger *slog.Logger) *DuplicateHandler {
	return &DuplicateHandler{
		checker: checker,
		logger:  logger,
	}
}

// DuplicateResponse response for the duplicate check endpoint. The
// conflicting identifier arrives already masked from the guard.
type DuplicateResponse struct {
	IsDuplicate           bool   `json:"is_duplicate"`
	ConflictingIdentifier string `json:"conflicting_identifier,omitempty"`
}

// Check POST /v1/faces/duplicate-check - advisory duplicate check.
// Fails open: an oracle outage reports no duplicate, the enrollment
// decision re-checks with the strict mode anyway.
func (h *DuplicateHandler) Check(c *fiber.Ctx) error {
	identifier := strings.TrimSpace(c.FormValue("identifier"))
	if identifier == "" {
		return domain.ErrValidationFailed.WithError(errors.New("identifier is required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	check, err := h.checker.Check(c.Context(), identifier, imageBytes, true)
	if err != nil {
		return err
	}

	return c.JSON(DuplicateResponse{
		IsDuplicate:           check.IsDuplicate,
		ConflictingIdentifier: check.ConflictingIdentifier,
	})
}
