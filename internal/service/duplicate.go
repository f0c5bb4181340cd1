package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

// DuplicateGuard enforces "one face, one account". A candidate only counts
// as a duplicate when it clears the high-confidence threshold AND belongs
// to a different normalized identifier; the broad similar-but-not-identical
// band below the threshold never blocks anyone.
type DuplicateGuard struct {
	oracle    oracle.FaceOracle
	threshold float64
	timeout   time.Duration
	logger    *slog.Logger
}

func NewDuplicateGuard(o oracle.FaceOracle, policy Policy, logger *slog.Logger) *DuplicateGuard {
	return &DuplicateGuard{
		oracle:    o,
		threshold: policy.DuplicateThreshold,
		timeout:   policy.OracleTimeout,
		logger:    logger,
	}
}

// Check searches the oracle registry for the captured face. failOpen
// selects the failure mode when the search itself breaks: enrollment
// consults the guard with failOpen=false (blocking registration is safer
// than admitting a duplicate), ad-hoc checks pass failOpen=true.
func (g *DuplicateGuard) Check(ctx context.Context, claimedIdentifier string, image []byte, failOpen bool) (*domain.DuplicateCheck, error) {
	claimed := domain.NormalizeIdentifier(claimedIdentifier)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	candidates, err := g.oracle.Search(callCtx, image)
	if err != nil {
		if errors.Is(err, oracle.ErrNoFaceInImage) {
			return nil, domain.ErrNoFaceDetected.WithError(err)
		}
		if failOpen {
			g.logger.Warn("duplicate search failed, failing open", "error", err)
			return &domain.DuplicateCheck{IsDuplicate: false}, nil
		}
		return nil, mapOracleErr(err)
	}

	for _, candidate := range candidates {
		if candidate.Score < g.threshold {
			continue
		}
		if domain.SameIdentifier(candidate.Label, claimed) {
			continue
		}

		g.logger.Info("duplicate face detected",
			"claimed", domain.MaskIdentifier(claimed),
			"conflicting", domain.MaskIdentifier(candidate.Label),
		)

		return &domain.DuplicateCheck{
			IsDuplicate:           true,
			ConflictingIdentifier: domain.MaskIdentifier(candidate.Label),
			Score:                 candidate.Score,
		}, nil
	}

	return &domain.DuplicateCheck{IsDuplicate: false}, nil
}
