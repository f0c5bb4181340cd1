package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/quality"
)

// QualityHandler evaluates detector output against the capture quality
// gate. Pure computation, no image upload and no oracle traffic.
type QualityHandler struct {
	logger *slog.Logger
}

func NewQualityHandler(logger *slog.Logger) *QualityHandler {
	return &QualityHandler{logger: logger}
}

// Evaluate POST /v1/quality/evaluate - score one detection.
func (h *QualityHandler) Evaluate(c *fiber.Ctx) error {
	var detection quality.Detection
	if err := c.BodyParser(&detection); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if detection.FrameWidth <= 0 || detection.FrameHeight <= 0 {
		return domain.ErrValidationFailed
	}

	return c.JSON(quality.Evaluate(detection))
}
