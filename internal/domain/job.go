package domain

import "time"

type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
	JobStateTimedOut  JobState = "timed_out"
)

// IsTerminalJobState reports whether a state is final. Terminal jobs are
// never retried in place; a client resubmits and gets a new job.
func IsTerminalJobState(s JobState) bool {
	return s == JobStateSucceeded || s == JobStateFailed || s == JobStateTimedOut
}

// DownloadJob tracks one committed download from spawn to terminal state.
// Mutated only by the job runner; everyone else reads snapshots.
type DownloadJob struct {
	JobID        string    `json:"job_id"`
	VideoID      string    `json:"video_id"`
	SourceURL    string    `json:"source_url"`
	VariantID    int       `json:"variant_id"`
	Selector     string    `json:"selector"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	OutputPath   string    `json:"-"`
	State        JobState  `json:"state"`
	Stdout       string    `json:"-"`
	Stderr       string    `json:"-"`
	ArtifactPath string    `json:"-"`
	ErrorDetail  string    `json:"error_detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}
