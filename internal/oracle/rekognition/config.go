package rekognition

// Config holds configuration for the AWS Rekognition oracle backend.
type Config struct {
	// Region is the AWS region where Rekognition is used (e.g., "us-east-1")
	Region string

	// CollectionID is the Rekognition collection holding all enrolled faces
	CollectionID string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Region:       "us-east-1",
		CollectionID: "facegate-subjects",
	}
}
