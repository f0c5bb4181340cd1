package rekognition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	searchLimit = 10
)

// Oracle implements oracle.FaceOracle on top of a single Rekognition
// collection. Subjects map to Rekognition face IDs; the subject label
// travels in ExternalImageId. Rekognition exposes neither a 1:1 verify
// call against a stored face nor a liveness check, so both capabilities
// report unavailable.
type Oracle struct {
	client       api
	collectionID string
}

var _ oracle.FaceOracle = (*Oracle)(nil)

// NewOracle creates the Rekognition oracle and ensures its collection exists.
func NewOracle(ctx context.Context, cfg Config) (*Oracle, error) {
	client, err := newAPI(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return newOracle(ctx, client, cfg)
}

func newOracle(ctx context.Context, client api, cfg Config) (*Oracle, error) {
	if cfg.CollectionID == "" {
		cfg.CollectionID = DefaultConfig().CollectionID
	}

	if err := ensureCollection(ctx, client, cfg.CollectionID); err != nil {
		return nil, err
	}

	return &Oracle{
		client:       client,
		collectionID: cfg.CollectionID,
	}, nil
}

func (o *Oracle) Capabilities() oracle.Capabilities {
	return oracle.Capabilities{}
}

func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// encodeLabel makes a label safe for ExternalImageId, which accepts only
// a narrow character set that excludes '@'.
func encodeLabel(label string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(label))
}

func decodeLabel(encoded string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(decoded)
}

func (o *Oracle) Enroll(ctx context.Context, label string, image []byte) (string, error) {
	if err := validateImage(image); err != nil {
		return "", err
	}

	input := &rekognition.IndexFacesInput{
		CollectionId:    aws.String(o.collectionID),
		Image:           &types.Image{Bytes: image},
		ExternalImageId: aws.String(encodeLabel(label)),
		MaxFaces:        aws.Int32(1),
		QualityFilter:   types.QualityFilterAuto,
		DetectionAttributes: []types.Attribute{
			types.AttributeDefault,
		},
	}

	output, err := o.client.IndexFaces(ctx, input)
	if err != nil {
		return "", o.wrapAPIError("index face", err)
	}

	if len(output.FaceRecords) == 0 {
		if len(output.UnindexedFaces) > 0 {
			return "", parseUnindexed(output.UnindexedFaces)
		}
		return "", oracle.ErrNoFaceInImage
	}

	return *output.FaceRecords[0].Face.FaceId, nil
}

func (o *Oracle) Search(ctx context.Context, image []byte) ([]oracle.Candidate, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(o.collectionID),
		Image:              &types.Image{Bytes: image},
		MaxFaces:           aws.Int32(searchLimit),
		FaceMatchThreshold: aws.Float32(0),
	}

	output, err := o.client.SearchFacesByImage(ctx, input)
	if err != nil {
		if isNoFaceError(err) {
			return nil, oracle.ErrNoFaceInImage
		}
		return nil, o.wrapAPIError("search faces", err)
	}

	candidates := make([]oracle.Candidate, 0, len(output.FaceMatches))
	for _, match := range output.FaceMatches {
		label := ""
		if match.Face.ExternalImageId != nil {
			label = decodeLabel(*match.Face.ExternalImageId)
		}
		candidates = append(candidates, oracle.Candidate{
			SubjectID: *match.Face.FaceId,
			Label:     label,
			Score:     oracle.NormalizeScore(float64(*match.Similarity)),
		})
	}

	return candidates, nil
}

func (o *Oracle) Compare(ctx context.Context, subjectID string, image []byte) (float64, error) {
	return 0, oracle.ErrCapabilityUnavailable
}

func (o *Oracle) Liveness(ctx context.Context, image []byte) (*oracle.LivenessResult, error) {
	return nil, oracle.ErrCapabilityUnavailable
}

func (o *Oracle) GetSubject(ctx context.Context, subjectID string) (*oracle.Subject, error) {
	face, err := o.findFace(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	label := ""
	if face.ExternalImageId != nil {
		label = decodeLabel(*face.ExternalImageId)
	}

	return &oracle.Subject{
		SubjectID: *face.FaceId,
		Label:     label,
		FaceCount: 1,
	}, nil
}

func (o *Oracle) ListSubjects(ctx context.Context) ([]oracle.Subject, error) {
	var subjects []oracle.Subject

	var nextToken *string
	for {
		output, err := o.client.ListFaces(ctx, &rekognition.ListFacesInput{
			CollectionId: aws.String(o.collectionID),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, o.wrapAPIError("list faces", err)
		}

		for _, face := range output.Faces {
			label := ""
			if face.ExternalImageId != nil {
				label = decodeLabel(*face.ExternalImageId)
			}
			subjects = append(subjects, oracle.Subject{
				SubjectID: *face.FaceId,
				Label:     label,
				FaceCount: 1,
			})
		}

		if output.NextToken == nil {
			return subjects, nil
		}
		nextToken = output.NextToken
	}
}

func (o *Oracle) DeleteSubject(ctx context.Context, subjectID string) error {
	output, err := o.client.DeleteFaces(ctx, &rekognition.DeleteFacesInput{
		CollectionId: aws.String(o.collectionID),
		FaceIds:      []string{subjectID},
	})
	if err != nil {
		return o.wrapAPIError("delete face", err)
	}

	if len(output.DeletedFaces) == 0 {
		return oracle.ErrSubjectNotFound
	}

	return nil
}

// findFace scans the collection for a face ID. Rekognition has no direct
// face lookup, only paginated listing.
func (o *Oracle) findFace(ctx context.Context, faceID string) (*types.Face, error) {
	var nextToken *string
	for {
		output, err := o.client.ListFaces(ctx, &rekognition.ListFacesInput{
			CollectionId: aws.String(o.collectionID),
			NextToken:    nextToken,
		})
		if err != nil {
			return nil, o.wrapAPIError("list faces", err)
		}

		for i := range output.Faces {
			if output.Faces[i].FaceId != nil && *output.Faces[i].FaceId == faceID {
				return &output.Faces[i], nil
			}
		}

		if output.NextToken == nil {
			return nil, oracle.ErrSubjectNotFound
		}
		nextToken = output.NextToken
	}
}

// isNoFaceError reports whether the AWS error means the image contained
// no detectable face.
func isNoFaceError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeInvalidParameter
}

func (o *Oracle) wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeResourceNotFound:
			return fmt.Errorf("%s: collection %s: %w", op, o.collectionID, ErrCollectionNotFound)
		case errCodeAccessDenied:
			return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, oracle.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseUnindexed interprets why IndexFaces skipped the detected faces.
func parseUnindexed(unindexed []types.UnindexedFace) error {
	face := unindexed[0]
	if len(face.Reasons) > 0 && face.Reasons[0] == types.ReasonExceedsMaxFaces {
		return fmt.Errorf("multiple faces in image: %w", oracle.ErrNoFaceInImage)
	}
	if len(face.Reasons) > 0 {
		return fmt.Errorf("%w: %s", oracle.ErrNoFaceInImage, face.Reasons[0])
	}
	return oracle.ErrNoFaceInImage
}
