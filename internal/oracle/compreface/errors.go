package compreface

import "errors"

var (
	ErrServiceUnavailable = errors.New("compreface service unavailable")
	ErrInvalidResponse    = errors.New("invalid response from compreface")
	ErrNoFaceInResponse   = errors.New("no face data in compreface response")
)
