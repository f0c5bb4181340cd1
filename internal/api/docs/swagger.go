package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// CaptureResponse represents the outcome of an enrollment capture
type CaptureResponse struct {
	Accepted     bool   `json:"accepted" example:"true"`
	SubjectRef   string `json:"subject_ref,omitempty" example:"8b5c1a70-9f2e-4c1d-8a33-70e2f1f0b911"`
	CaptureCount int    `json:"capture_count" example:"1"`
	State        string `json:"state" example:"enrolling"`
}

// RegisterRequest is the signup-start payload
type RegisterRequest struct {
	Email string `json:"email" example:"alice@example.com"`
	Phone string `json:"phone" example:"+5511987654321"`
}

// RegisterResponse represents a newly created identity
type RegisterResponse struct {
	UserID             string `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	State              string `json:"state" example:"no_face"`
	VerificationStatus string `json:"verification_status" example:"pending"`
}

// VerificationStatusRequest records the account review outcome
type VerificationStatusRequest struct {
	Status string `json:"status" example:"verified"`
}

// LoginResponse represents the outcome of a login verification
type LoginResponse struct {
	Accepted           bool   `json:"accepted" example:"true"`
	UserID             string `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	VerificationStatus string `json:"verification_status" example:"verified"`
}

// DuplicateResponse represents the outcome of a duplicate pre-check
type DuplicateResponse struct {
	IsDuplicate           bool   `json:"is_duplicate" example:"false"`
	ConflictingIdentifier string `json:"conflicting_identifier,omitempty" example:"b**@y.com"`
}

// QualityRequest is the detector output submitted for evaluation
type QualityRequest struct {
	FrameWidth   float64 `json:"frame_width" example:"1280"`
	FrameHeight  float64 `json:"frame_height" example:"720"`
	BoxX         float64 `json:"box_x" example:"400"`
	BoxY         float64 `json:"box_y" example:"100"`
	BoxWidth     float64 `json:"box_width" example:"480"`
	BoxHeight    float64 `json:"box_height" example:"480"`
	Pitch        float64 `json:"pitch" example:"2.5"`
	Yaw          float64 `json:"yaw" example:"-4.1"`
	Roll         float64 `json:"roll" example:"0.8"`
	LeftEyeOpen  float64 `json:"left_eye_open" example:"0.97"`
	RightEyeOpen float64 `json:"right_eye_open" example:"0.95"`
	Lighting     float64 `json:"lighting" example:"0.8"`
}

// QualityResponse is the quality gate verdict
type QualityResponse struct {
	Ready     bool    `json:"ready" example:"true"`
	Score     float64 `json:"score" example:"0.87"`
	Size      float64 `json:"size" example:"0.74"`
	Centering float64 `json:"centering" example:"0.95"`
	Pose      float64 `json:"pose" example:"0.92"`
	Eyes      float64 `json:"eyes" example:"1.0"`
	Lighting  float64 `json:"lighting" example:"0.8"`
	Reason    string  `json:"reason,omitempty" example:"face_too_small"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate API",
		Version:     "v0.1.0",
		Description: "Face authentication decision engine: enrollment, duplicate guarding and 1:1 login verification backed by a pluggable face recognition oracle",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/enrollment/register - Register an identity
		endpoint.New(
			endpoint.POST,
			"/enrollment/register",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Register an identity"),
			endpoint.WithDescription("Creates the identity record at the start of signup. Identifiers are canonicalized before the write; at least one of email or phone is required."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RegisterRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterResponse{}, "201", "Identity registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "IDENTITY_ALREADY_EXISTS", Message: "An account already exists for this identifier"}, "409", "Conflict"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// PATCH /v1/enrollment/:user_id/verification-status - Record review outcome
		endpoint.New(
			endpoint.PATCH,
			"/enrollment/{user_id}/verification-status",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Update the account verification status"),
			endpoint.WithDescription("Records the account review outcome decided by the calling backend. Login results stay restricted while the status is pending."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Path, parameter.WithDescription("Account identifier")),
			),
			endpoint.WithBody(VerificationStatusRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Status updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/enrollment/captures - Submit enrollment capture
		endpoint.New(
			endpoint.POST,
			"/enrollment/captures",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Submit an enrollment capture"),
			endpoint.WithDescription("Runs one capture through the quality gate, liveness check and duplicate guard, registers the face with the oracle and confirms the registration before attaching the subject reference."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CaptureResponse{}, "201", "Capture accepted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "CAPTURE_NOT_READY", Message: "Capture quality too low"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "LIVENESS_FAILED", Message: "Liveness check failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DUPLICATE_FACE", Message: "Face already registered with another account"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "ENROLLMENT_NOT_CONFIRMED", Message: "Enrollment could not be confirmed"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "ORACLE_UNAVAILABLE", Message: "Face recognition service unavailable"}, "503", "Service Unavailable"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/enrollment/complete - Complete signup
		endpoint.New(
			endpoint.POST,
			"/enrollment/complete",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Mark signup as completed"),
			endpoint.WithDescription("Finalizes the signup once the required captures have been enrolled. Fails when no face is enrolled for the account."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CaptureResponse{}, "200", "Signup completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "FACE_NOT_ENROLLED", Message: "No face is enrolled for this account"}, "404", "Not Found"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/enrollment/:user_id - Delete enrollment
		endpoint.New(
			endpoint.DELETE,
			"/enrollment/{user_id}",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Delete the enrolled face"),
			endpoint.WithDescription("Removes the subject from the oracle registry and clears the stored reference so the user can re-enroll."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Path, parameter.WithDescription("Account identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Enrollment deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "ORACLE_UNAVAILABLE", Message: "Face recognition service unavailable"}, "503", "Service Unavailable"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/login/verify - Verify login (1:1)
		endpoint.New(
			endpoint.POST,
			"/login/verify",
			endpoint.WithTags("Login"),
			endpoint.WithSummary("Verify a face login attempt"),
			endpoint.WithDescription("Runs one strictly 1:1 verification of the capture against the face enrolled for the claimed identifier. Locked identifiers are rejected before any recognition work."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(LoginResponse{}, "200", "Login accepted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "VERIFICATION_FAILED", Message: "Face verification failed"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SIGNUP_INCOMPLETE", Message: "Signup has not been completed"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "FACE_NOT_ENROLLED", Message: "No face is enrolled for this account"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "REENROLLMENT_REQUIRED", Message: "Enrolled face data is no longer available"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "LIVENESS_FAILED", Message: "Liveness check failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "LOCKED_OUT", Message: "Too many failed attempts"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "ORACLE_UNAVAILABLE", Message: "Face recognition service unavailable"}, "503", "Service Unavailable"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/faces/duplicate-check - Advisory duplicate check
		endpoint.New(
			endpoint.POST,
			"/faces/duplicate-check",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Check a face for duplicate registration"),
			endpoint.WithDescription("Advisory pre-check used by the signup UI: reports whether the face is already registered under a different identifier. Fails open when the oracle is unavailable."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DuplicateResponse{}, "200", "Check completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/quality/evaluate - Evaluate capture quality
		endpoint.New(
			endpoint.POST,
			"/quality/evaluate",
			endpoint.WithTags("Quality"),
			endpoint.WithSummary("Evaluate capture quality"),
			endpoint.WithDescription("Scores raw detector output against the capture quality gate. Pure computation, no image upload."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(QualityResponse{}, "200", "Quality evaluated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /health - Health check
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		// GET /ready - Readiness check
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Reports ready only when the identity store answers."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
