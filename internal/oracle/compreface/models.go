package compreface

// EnrollResponse is returned by POST /api/v1/recognition/faces.
type EnrollResponse struct {
	SubjectID string `json:"subject_id"`
	Subject   string `json:"subject"`
}

// RecognizeRequest is the body of POST /api/v1/recognition/recognize.
type RecognizeRequest struct {
	Image string `json:"image"` // base64
	Limit int    `json:"limit,omitempty"`
}

// RecognizeResponse carries ranked subject matches per detected face.
// Similarities are reported on the service's 0-100 scale.
type RecognizeResponse struct {
	Result []RecognizeResult `json:"result"`
}

// RecognizeResult is the match list for one detected face.
type RecognizeResult struct {
	Subjects []SubjectMatch `json:"subjects"`
}

// SubjectMatch is one candidate subject with its raw similarity.
type SubjectMatch struct {
	SubjectID  string  `json:"subject_id"`
	Subject    string  `json:"subject"`
	Similarity float64 `json:"similarity"`
}

// VerifyRequest is the body of POST /api/v1/recognition/verify/{subjectID}.
type VerifyRequest struct {
	Image string `json:"image"`
}

// VerifyResponse is the 1:1 comparison result, 0-100 scale.
type VerifyResponse struct {
	Similarity float64 `json:"similarity"`
}

// LivenessRequest is the body of POST /api/v1/liveness.
type LivenessRequest struct {
	Image string `json:"image"`
}

// LivenessResponse is the liveness plugin verdict.
type LivenessResponse struct {
	Result      string  `json:"result"` // "real" or "fake"
	Probability float64 `json:"probability"`
}

// SubjectEntry is one registry entry from the subjects endpoints.
type SubjectEntry struct {
	SubjectID string `json:"subject_id"`
	Subject   string `json:"subject"`
	FaceCount int    `json:"face_count"`
}

// ListSubjectsResponse is returned by GET /api/v1/recognition/subjects.
type ListSubjectsResponse struct {
	Subjects []SubjectEntry `json:"subjects"`
}
