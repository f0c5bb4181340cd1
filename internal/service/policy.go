package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

// Policy carries the decision thresholds. It is built from config once at
// startup; no call site holds its own copy of a threshold.
type Policy struct {
	AcceptThreshold    float64
	DuplicateThreshold float64
	LivenessThreshold  float64
	LockoutMaxFailures int
	OracleTimeout      time.Duration
}

func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		AcceptThreshold:    cfg.AcceptThreshold,
		DuplicateThreshold: cfg.DuplicateThreshold,
		LivenessThreshold:  cfg.LivenessThreshold,
		LockoutMaxFailures: cfg.LockoutMaxFailures,
		OracleTimeout:      cfg.OracleTimeout,
	}
}

// checkLiveness gates a capture on the oracle's liveness capability. The
// check is optional infrastructure: a missing capability or an unreachable
// oracle does not block, only an explicit spoof verdict does. A capture
// passes when the oracle says "real" or the score clears the threshold.
func checkLiveness(ctx context.Context, o oracle.FaceOracle, image []byte, threshold float64, timeout time.Duration, logger *slog.Logger) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := o.Liveness(callCtx, image)
	if err != nil {
		if errors.Is(err, oracle.ErrCapabilityUnavailable) {
			logger.Debug("liveness capability not provisioned, skipping check")
			return nil
		}
		if errors.Is(err, oracle.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("liveness check unavailable, failing open", "error", err)
			return nil
		}
		if errors.Is(err, oracle.ErrNoFaceInImage) {
			return domain.ErrNoFaceDetected.WithError(err)
		}
		return domain.ErrInternal.WithError(err)
	}

	if result.Real || result.Score >= threshold {
		return nil
	}

	return domain.ErrLivenessFailed
}

// mapOracleErr translates oracle sentinel errors into the app taxonomy for
// mandatory calls. Mandatory checks fail closed on infrastructure errors.
func mapOracleErr(err error) error {
	switch {
	case errors.Is(err, oracle.ErrNoFaceInImage):
		return domain.ErrNoFaceDetected.WithError(err)
	case errors.Is(err, oracle.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrOracleUnavailable.WithError(err)
	default:
		return domain.ErrInternal.WithError(err)
	}
}
