package ports

import (
	"io"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// JobStore exposes download job state for polling. Get returns a snapshot;
// only the runner writes through Update.
type JobStore interface {
	Create(job domain.DownloadJob) error
	Get(jobID string) (domain.DownloadJob, error)
	Update(job domain.DownloadJob) error
}

// JobRunner owns the worker subprocess lifecycle for a job: spawn,
// supervise to completion or timeout, validate the artifact. Start returns
// immediately; progress is observed through the JobStore.
type JobRunner interface {
	Start(job domain.DownloadJob)
}

// ArtifactStore is the filesystem area holding completed downloads. Every
// open goes through a path containment check against the storage root.
type ArtifactStore interface {
	PathFor(filename string) string
	Open(path string) (io.ReadCloser, int64, error)
	Remove(path string) error
	Ready() error
}
