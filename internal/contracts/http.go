package contracts

import "github.com/tubefetch/tubefetch/internal/domain"

type ResolveRequest struct {
	URL string `json:"url"`
}

type ResolveResponse struct {
	Metadata     domain.VideoMetadata   `json:"metadata"`
	Variants     []domain.StreamVariant `json:"variants"`
	StrategyUsed string                 `json:"strategy_used"`
}

type CommitDownloadRequest struct {
	URL       string `json:"url"`
	VariantID int    `json:"variant_id"`
	MediaKind string `json:"media_kind,omitempty"`
}

type CommitDownloadResponse struct {
	JobID    string `json:"job_id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

type JobStatusResponse struct {
	JobID        string `json:"job_id"`
	State        string `json:"state"`
	ProgressHint string `json:"progress_hint,omitempty"`
	ArtifactRef  string `json:"artifact_ref,omitempty"`
	ErrorDetail  string `json:"error_detail,omitempty"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status string       `json:"status"`
	Error  ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}
