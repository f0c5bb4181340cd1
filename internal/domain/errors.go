package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches by code so errors.Is sees through WithError copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Input errors: recoverable locally, the capture UI shows a retry hint.

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	ErrCaptureNotReady = &AppError{
		Code:       "CAPTURE_NOT_READY",
		Message:    "Capture quality too low for reliable recognition",
		StatusCode: 422,
	}

	// Security-decision rejections: terminal for the attempt, generic on
	// purpose. Scores and other accounts' identifiers never leave the engine.

	ErrVerificationFailed = &AppError{
		Code:       "VERIFICATION_FAILED",
		Message:    "Face verification failed",
		StatusCode: 401,
	}

	ErrLivenessFailed = &AppError{
		Code:       "LIVENESS_FAILED",
		Message:    "Liveness check failed",
		StatusCode: 422,
	}

	ErrDuplicateFace = &AppError{
		Code:       "DUPLICATE_FACE",
		Message:    "This face is already registered with another account",
		StatusCode: 409,
	}

	ErrLockedOut = &AppError{
		Code:       "LOCKED_OUT",
		Message:    "Too many failed attempts, try again later",
		StatusCode: 429,
	}

	// Precondition failures on the claimed identity.

	ErrAccountNotFound = &AppError{
		Code:       "ACCOUNT_NOT_FOUND",
		Message:    "Account not found",
		StatusCode: 404,
	}

	ErrSignupIncomplete = &AppError{
		Code:       "SIGNUP_INCOMPLETE",
		Message:    "Signup has not been completed for this account",
		StatusCode: 403,
	}

	ErrFaceNotEnrolled = &AppError{
		Code:       "FACE_NOT_ENROLLED",
		Message:    "No face is enrolled for this account",
		StatusCode: 404,
	}

	ErrSubjectMismatch = &AppError{
		Code:       "SUBJECT_MISMATCH",
		Message:    "Capture does not belong to the enrolled subject",
		StatusCode: 409,
	}

	// Integrity errors: a data problem, not an impostor. The distinct code
	// tells the client to route the user to re-enrollment.

	ErrReenrollmentRequired = &AppError{
		Code:       "REENROLLMENT_REQUIRED",
		Message:    "Enrolled face data is no longer available, please re-enroll",
		StatusCode: 409,
	}

	ErrEnrollmentNotConfirmed = &AppError{
		Code:       "ENROLLMENT_NOT_CONFIRMED",
		Message:    "Enrollment could not be confirmed, please try again",
		StatusCode: 502,
	}

	// Infrastructure errors: mandatory checks fail closed but do not count
	// toward lockout; the client may retry immediately.

	ErrOracleUnavailable = &AppError{
		Code:       "ORACLE_UNAVAILABLE",
		Message:    "Face recognition service is temporarily unavailable",
		StatusCode: 503,
	}

	ErrIdentityExists = &AppError{
		Code:       "IDENTITY_ALREADY_EXISTS",
		Message:    "An account already exists for this identifier",
		StatusCode: 409,
	}
)
