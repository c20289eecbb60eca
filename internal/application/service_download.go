package application

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tubefetch/tubefetch/internal/contracts"
	"github.com/tubefetch/tubefetch/internal/domain"
)

// CommitDownload resolves the URL (usually a cache hit right after a
// Resolve), picks the requested variant, and hands a new job to the runner.
// The returned job ID is also the artifact reference for later retrieval.
func (s *Service) CommitDownload(ctx context.Context, input CommitDownloadInput) (CommitDownloadResult, error) {
	id, err := domain.ParseVideoID(input.URL)
	if err != nil {
		return CommitDownloadResult{}, err
	}
	if !s.downloadLimiter.Allow(ctx, input.ClientKey) {
		return CommitDownloadResult{}, domain.ErrRateLimited
	}
	res, err := s.resolve(ctx, id)
	if err != nil {
		return CommitDownloadResult{}, err
	}
	if len(res.Video.Variants) == 0 {
		return CommitDownloadResult{}, domain.ErrNoFormatsAvailable
	}
	variant, err := domain.FindVariant(res.Video.Variants, input.VariantID)
	if err != nil {
		return CommitDownloadResult{}, err
	}

	kind := domain.NormalizeMediaKind(input.MediaKind)
	selector := domain.SelectorFor(variant.ID, kind)
	filename := domain.BuildFilename(res.Video.Metadata.Title, variant)

	now := s.nowFn()
	job := domain.DownloadJob{
		JobID:     uuid.NewString(),
		VideoID:   string(id),
		SourceURL: domain.WatchURL(id),
		VariantID: variant.ID,
		Selector:  selector,
		Filename:  filename,
		MimeType:  variant.MimeType,
		State:     domain.JobStatePending,
		CreatedAt: now,
	}
	// The job token prefix keeps concurrent downloads of the same title from
	// colliding on disk.
	job.OutputPath = s.artifacts.PathFor(job.JobID + "_" + filename)

	if err := s.jobs.Create(job); err != nil {
		return CommitDownloadResult{}, err
	}
	s.runner.Start(job)
	s.logger.InfoContext(ctx, "download job committed",
		"job_id", job.JobID,
		"video_id", job.VideoID,
		"variant_id", variant.ID,
		"selector", selector,
	)
	return CommitDownloadResult{JobID: job.JobID, Filename: filename, MimeType: job.MimeType}, nil
}

var progressLine = regexp.MustCompile(`Download progress:\s*([0-9]+(?:\.[0-9]+)?)%`)

// PollJob returns a point-in-time snapshot of a job.
func (s *Service) PollJob(ctx context.Context, jobID string) (contracts.JobStatusResponse, error) {
	job, err := s.jobs.Get(strings.TrimSpace(jobID))
	if err != nil {
		return contracts.JobStatusResponse{}, err
	}
	out := contracts.JobStatusResponse{
		JobID:       job.JobID,
		State:       string(job.State),
		ErrorDetail: job.ErrorDetail,
	}
	if hint := lastProgressHint(job.Stdout); hint != "" {
		out.ProgressHint = hint
	}
	if job.State == domain.JobStateSucceeded {
		out.ArtifactRef = job.JobID
		out.ProgressHint = "100%"
	}
	return out, nil
}

func lastProgressHint(stdout string) string {
	matches := progressLine.FindAllStringSubmatch(stdout, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1] + "%"
}

// Artifact opens a finished job's output file for retrieval. The artifact
// reference is the job ID; the storage adapter enforces path containment.
type Artifact struct {
	Reader   io.ReadCloser
	Size     int64
	Filename string
	MimeType string
}

func (s *Service) FetchArtifact(ctx context.Context, artifactRef string) (Artifact, error) {
	job, err := s.jobs.Get(strings.TrimSpace(artifactRef))
	if err != nil {
		return Artifact{}, domain.ErrNotFound
	}
	if job.State != domain.JobStateSucceeded || job.ArtifactPath == "" {
		return Artifact{}, domain.ErrNotFound
	}
	reader, size, err := s.artifacts.Open(job.ArtifactPath)
	if err != nil {
		return Artifact{}, domain.ErrNotFound
	}
	mime := job.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return Artifact{Reader: reader, Size: size, Filename: job.Filename, MimeType: mime}, nil
}
