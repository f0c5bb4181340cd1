package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle/compreface"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle/local"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle/mock"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle/rekognition"
)

// OracleType defines the supported oracle backends.
type OracleType string

const (
	// OracleTypeCompreFace is a CompreFace installation (default)
	OracleTypeCompreFace OracleType = "compreface"
	// OracleTypeRekognition is AWS Rekognition
	OracleTypeRekognition OracleType = "rekognition"
	// OracleTypeLocal is the self-hosted embedding service plus pgvector registry
	OracleTypeLocal OracleType = "local"
	// OracleTypeMock is the in-memory oracle for tests and development
	OracleTypeMock OracleType = "mock"
)

// NewFaceOracle creates the oracle backend selected by configuration.
// The pool is only used by the local backend; the others ignore it.
//
// Environment variables:
//   - ORACLE_TYPE: "compreface", "rekognition", "local" or "mock"
//   - COMPREFACE_URL, COMPREFACE_API_KEY: CompreFace settings
//   - REPRESENT_URL: embedding service URL for the local backend
//   - AWS_REGION: region for Rekognition (credentials via AWS SDK chain)
func NewFaceOracle(ctx context.Context, cfg *config.Config, pool local.PgxPool) (oracle.FaceOracle, error) {
	switch OracleType(cfg.OracleType) {
	case OracleTypeCompreFace, "":
		o, err := compreface.NewOracle(ctx, compreface.Config{
			BaseURL: cfg.CompreFaceURL,
			APIKey:  cfg.CompreFaceKey,
			Timeout: cfg.OracleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("create compreface oracle: %w", err)
		}
		return o, nil

	case OracleTypeRekognition:
		o, err := rekognition.NewOracle(ctx, rekognition.Config{
			Region:       cfg.AWSRegion,
			CollectionID: rekognition.DefaultConfig().CollectionID,
		})
		if err != nil {
			return nil, fmt.Errorf("create rekognition oracle: %w", err)
		}
		return o, nil

	case OracleTypeLocal:
		if pool == nil {
			return nil, fmt.Errorf("local oracle requires a database pool")
		}
		localCfg := local.DefaultConfig()
		localCfg.RepresentURL = cfg.RepresentURL
		localCfg.Timeout = cfg.OracleTimeout
		return local.NewOracle(localCfg, pool), nil

	case OracleTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown oracle type: %s (supported: %s, %s, %s, %s)",
			cfg.OracleType, OracleTypeCompreFace, OracleTypeRekognition, OracleTypeLocal, OracleTypeMock)
	}
}
