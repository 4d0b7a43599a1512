package inference

import "context"

// Async job statuses as reported by the detection service.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusSucceeded  = "SUCCEEDED"
	StatusFailed     = "FAILED"
)

// Label is a single detection result with the service's confidence score.
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Detector performs synchronous scans against a stored image object.
type Detector interface {
	// DetectModerationLabels returns the unsafe-content labels found in the
	// image at or above minConfidence.
	DetectModerationLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error)
	// DetectLabels returns descriptive labels for the image at or above
	// minConfidence.
	DetectLabels(ctx context.Context, bucket, key string, minConfidence float64) ([]Label, error)
	// RecognizeCelebrities returns the celebrities recognized in the image.
	RecognizeCelebrities(ctx context.Context, bucket, key string) ([]Label, error)
}

// StartJobInput carries the parameters for starting an asynchronous video
// scan. The service publishes a completion notification to NotifyTopic when
// the job finishes, using RoleARN for the publish.
type StartJobInput struct {
	Bucket        string
	Key           string
	MinConfidence float64
	NotifyTopic   string
	RoleARN       string
}

// ModerationPage is one page of async moderation results.
type ModerationPage struct {
	Status    string
	Labels    []Label
	NextToken string
}

// LabelPage is one page of async label-detection results.
type LabelPage struct {
	Status    string
	Labels    []Label
	NextToken string
}

// CelebrityPage is one page of async celebrity-recognition results.
type CelebrityPage struct {
	Status      string
	Celebrities []Label
	NextToken   string
}

// AsyncDetector starts video scans and pages through their results. Results
// are only available once the service has announced completion for the
// returned job id.
type AsyncDetector interface {
	StartContentModeration(ctx context.Context, in StartJobInput) (string, error)
	StartLabelDetection(ctx context.Context, in StartJobInput) (string, error)
	StartCelebrityRecognition(ctx context.Context, in StartJobInput) (string, error)

	GetContentModeration(ctx context.Context, jobID, nextToken string) (*ModerationPage, error)
	GetLabelDetection(ctx context.Context, jobID, nextToken string) (*LabelPage, error)
	GetCelebrityRecognition(ctx context.Context, jobID, nextToken string) (*CelebrityPage, error)
}
