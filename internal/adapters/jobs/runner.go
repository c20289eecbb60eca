package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
	"github.com/tubefetch/tubefetch/internal/ports"
)

// Runner supervises the external download worker for one job at a time per
// Start call. The worker is invoked as
//
//	<bin> <script> <source-url> <selector> <output-path>
//
// and signals success purely via exit code plus a non-empty output file.
// Nothing here retries: a failed or timed-out job stays terminal and a
// client resubmit creates a fresh job.
type Runner struct {
	logger  *slog.Logger
	store   ports.JobStore
	bin     string
	script  string
	timeout time.Duration
	nowFn   func() time.Time
}

func NewRunner(logger *slog.Logger, store ports.JobStore, bin, script string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Runner{
		logger:  logger.With("module", "jobs", "layer", "adapter"),
		store:   store,
		bin:     bin,
		script:  script,
		timeout: timeout,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// Start transitions the job to Running and supervises the worker in the
// background. A caller abandoning the download does not terminate the
// worker; only the timeout ceiling or natural completion does.
func (r *Runner) Start(job domain.DownloadJob) {
	go r.run(job)
}

func (r *Runner) run(job domain.DownloadJob) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	job.State = domain.JobStateRunning
	job.StartedAt = r.nowFn()
	if err := r.store.Update(job); err != nil {
		r.logger.Error("job store update failed", "job_id", job.JobID, "error", err.Error())
		return
	}

	args := []string{job.SourceURL, job.Selector, job.OutputPath}
	if r.script != "" {
		args = append([]string{r.script}, args...)
	}
	cmd := exec.CommandContext(ctx, r.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	job.Stdout = stdout.String()
	job.Stderr = stderr.String()
	job.FinishedAt = r.nowFn()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		// The worker got a kill signal; whatever it emitted before
		// termination is preserved on the job.
		job.State = domain.JobStateTimedOut
		job.ErrorDetail = "worker exceeded the download time ceiling"
		r.removePartial(job.OutputPath)
	case runErr != nil:
		job.State = domain.JobStateFailed
		job.ErrorDetail = diagnosticDetail(job.Stderr, runErr)
		r.removePartial(job.OutputPath)
	default:
		fi, statErr := os.Stat(job.OutputPath)
		switch {
		case statErr != nil:
			job.State = domain.JobStateFailed
			job.ErrorDetail = "worker exited cleanly but produced no output file"
		case fi.Size() == 0:
			job.State = domain.JobStateFailed
			job.ErrorDetail = "worker produced an empty output file"
			r.removePartial(job.OutputPath)
		default:
			job.State = domain.JobStateSucceeded
			job.ArtifactPath = job.OutputPath
		}
	}

	if err := r.store.Update(job); err != nil {
		r.logger.Error("job store update failed", "job_id", job.JobID, "error", err.Error())
		return
	}
	r.logger.Info("download job finished",
		"job_id", job.JobID,
		"state", string(job.State),
		"elapsed", job.FinishedAt.Sub(job.StartedAt).String(),
	)
}

func (r *Runner) removePartial(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("partial artifact cleanup failed", "path", path, "error", err.Error())
	}
}

// diagnosticDetail keeps the worker's stderr verbatim when present, since
// that is usually the only useful failure signal.
func diagnosticDetail(stderr string, runErr error) string {
	if detail := strings.TrimSpace(stderr); detail != "" {
		return detail
	}
	return runErr.Error()
}
