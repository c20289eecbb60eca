package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/tubefetch/tubefetch/internal/adapters/cache"
	"github.com/tubefetch/tubefetch/internal/adapters/jobs"
	"github.com/tubefetch/tubefetch/internal/application"
	"github.com/tubefetch/tubefetch/internal/domain"
	"github.com/tubefetch/tubefetch/internal/ports"
)

const watchURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type stubStrategy struct {
	name  string
	video domain.ResolvedVideo
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Resolve(_ context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	s.calls++
	if s.err != nil {
		return domain.ResolvedVideo{}, s.err
	}
	video := s.video
	if video.Metadata.VideoID == "" {
		video.Metadata.VideoID = string(id)
	}
	return video, nil
}

type stubLimiter struct {
	allow bool
	calls int
}

func (l *stubLimiter) Allow(context.Context, string) bool {
	l.calls++
	return l.allow
}

type stubRunner struct {
	started []domain.DownloadJob
}

func (r *stubRunner) Start(job domain.DownloadJob) {
	r.started = append(r.started, job)
}

type stubArtifacts struct {
	content string
	openErr error
}

func (a *stubArtifacts) PathFor(filename string) string { return "/artifacts/" + filename }

func (a *stubArtifacts) Open(string) (io.ReadCloser, int64, error) {
	if a.openErr != nil {
		return nil, 0, a.openErr
	}
	return io.NopCloser(strings.NewReader(a.content)), int64(len(a.content)), nil
}

func (a *stubArtifacts) Remove(string) error { return nil }
func (a *stubArtifacts) Ready() error        { return nil }

type serviceDeps struct {
	service   *application.Service
	jobs      *jobs.MemoryStore
	runner    *stubRunner
	artifacts *stubArtifacts
}

func newService(t *testing.T, strategies []ports.ExtractionStrategy, resolveAllow, downloadAllow bool) serviceDeps {
	t.Helper()
	store := jobs.NewMemoryStore()
	runner := &stubRunner{}
	artifacts := &stubArtifacts{content: "payload"}
	service := application.NewService(application.Dependencies{
		Config:          application.Config{ServiceName: "tubefetch"},
		Strategies:      strategies,
		Cache:           cache.NewMemoryCache(0, 0),
		ResolveLimiter:  &stubLimiter{allow: resolveAllow},
		DownloadLimiter: &stubLimiter{allow: downloadAllow},
		Jobs:            store,
		Runner:          runner,
		Artifacts:       artifacts,
	})
	return serviceDeps{service: service, jobs: store, runner: runner, artifacts: artifacts}
}

func progressiveCatalog() domain.ResolvedVideo {
	return domain.ResolvedVideo{
		Metadata: domain.VideoMetadata{Title: "My Test Video!", Author: "Channel"},
		Variants: []domain.StreamVariant{
			{ID: 22, Height: 720, MimeType: "video/mp4", Container: "mp4", HasVideo: true, HasAudio: true},
			{ID: 140, AudioBitrate: 128, MimeType: "audio/mp4", Container: "m4a", HasAudio: true},
		},
	}
}

func TestResolveShortCircuitsOnFirstSuccess(t *testing.T) {
	first := &stubStrategy{name: "first", video: progressiveCatalog()}
	second := &stubStrategy{name: "second", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{first, second}, true, true)

	out, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.StrategyUsed != "first" {
		t.Fatalf("expected first strategy, got %s", out.StrategyUsed)
	}
	if second.calls != 0 {
		t.Fatal("later strategies must not run after a success")
	}
	if out.Video.Metadata.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id filled, got %q", out.Video.Metadata.VideoID)
	}
}

func TestResolveFallsThroughFailures(t *testing.T) {
	first := &stubStrategy{name: "first", err: fmt.Errorf("upstream 403")}
	second := &stubStrategy{name: "second", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{first, second}, true, true)

	out, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.StrategyUsed != "second" {
		t.Fatalf("expected fallback to second, got %s", out.StrategyUsed)
	}
	if first.calls != 1 {
		t.Fatalf("expected first strategy attempted once, got %d", first.calls)
	}
}

func TestResolveExhaustion(t *testing.T) {
	first := &stubStrategy{name: "first", err: fmt.Errorf("boom")}
	second := &stubStrategy{name: "second", err: fmt.Errorf("boom")}
	deps := newService(t, []ports.ExtractionStrategy{first, second}, true, true)

	_, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if !errors.Is(err, domain.ErrAllStrategiesExhausted) {
		t.Fatalf("expected ErrAllStrategiesExhausted, got %v", err)
	}
}

func TestResolveCacheHitSkipsStrategies(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, true, true)

	if _, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL}); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	out, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if strategy.calls != 1 {
		t.Fatalf("expected one strategy invocation, got %d", strategy.calls)
	}
	if out.StrategyUsed != "only" {
		t.Fatalf("expected cached strategy name, got %s", out.StrategyUsed)
	}
}

func TestResolveInvalidURLSkipsEverything(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	limiter := &stubLimiter{allow: true}
	service := application.NewService(application.Dependencies{
		Strategies:     []ports.ExtractionStrategy{strategy},
		Cache:          cache.NewMemoryCache(0, 0),
		ResolveLimiter: limiter,
	})

	_, err := service.Resolve(context.Background(), application.ResolveInput{URL: "https://vimeo.com/1"})
	if !errors.Is(err, domain.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
	if limiter.calls != 0 {
		t.Fatal("invalid input must not consume rate limit budget")
	}
	if strategy.calls != 0 {
		t.Fatal("invalid input must not reach strategies")
	}
}

func TestResolveRateLimited(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, false, true)

	_, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if strategy.calls != 0 {
		t.Fatal("rejected request must not reach strategies")
	}
}

func TestCommitDownloadCreatesAndStartsJob(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, true, true)

	out, err := deps.service.CommitDownload(context.Background(), application.CommitDownloadInput{
		URL:       watchURL,
		VariantID: 22,
	})
	if err != nil {
		t.Fatalf("commit download: %v", err)
	}
	if out.Filename != "My_Test_Video_720p_video_audio.mp4" {
		t.Fatalf("unexpected filename %q", out.Filename)
	}
	if out.MimeType != "video/mp4" {
		t.Fatalf("unexpected mime type %q", out.MimeType)
	}
	if len(deps.runner.started) != 1 {
		t.Fatalf("expected one job started, got %d", len(deps.runner.started))
	}
	started := deps.runner.started[0]
	if started.Selector != "22/best[height<=720][ext=mp4]/best[height<=720]" {
		t.Fatalf("unexpected selector %q", started.Selector)
	}
	if !strings.Contains(started.OutputPath, started.JobID) {
		t.Fatalf("output path should carry the job token, got %q", started.OutputPath)
	}
	job, err := deps.jobs.Get(out.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if job.State != domain.JobStatePending {
		t.Fatalf("expected pending, got %s", job.State)
	}
}

func TestCommitDownloadAudioKindSelector(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, true, true)

	out, err := deps.service.CommitDownload(context.Background(), application.CommitDownloadInput{
		URL:       watchURL,
		VariantID: 140,
		MediaKind: "audio",
	})
	if err != nil {
		t.Fatalf("commit download: %v", err)
	}
	if out.Filename != "My_Test_Video_128kbps_audio_only.m4a" {
		t.Fatalf("unexpected filename %q", out.Filename)
	}
	if deps.runner.started[0].Selector != "140/bestaudio[ext=m4a]/bestaudio" {
		t.Fatalf("unexpected selector %q", deps.runner.started[0].Selector)
	}
}

func TestCommitDownloadVariantNotFound(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, true, true)

	_, err := deps.service.CommitDownload(context.Background(), application.CommitDownloadInput{
		URL:       watchURL,
		VariantID: 9999,
	})
	if !errors.Is(err, domain.ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
	if len(deps.runner.started) != 0 {
		t.Fatal("no job should start for an unknown variant")
	}
}

func TestResolveMetadataOnlyStrategyGetsFallbackCatalog(t *testing.T) {
	metadataOnly := &stubStrategy{name: "metadata_only", video: domain.ResolvedVideo{
		Metadata: domain.VideoMetadata{Title: "My Test Video!"},
	}}
	fullCatalog := &stubStrategy{name: "full_catalog", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{metadataOnly, fullCatalog}, true, true)

	out, err := deps.service.Resolve(context.Background(), application.ResolveInput{URL: watchURL})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.StrategyUsed != "metadata_only" {
		t.Fatalf("expected metadata_only, got %s", out.StrategyUsed)
	}
	if len(out.Video.Variants) == 0 {
		t.Fatal("a metadata-only result must carry the synthetic catalog")
	}
	if fullCatalog.calls != 0 {
		t.Fatal("later strategies must not run after a success")
	}
	if _, err := domain.FindVariant(out.Video.Variants, 137); err != nil {
		t.Fatalf("expected fallback variant 137 present: %v", err)
	}
}

func TestCommitDownloadAfterMetadataOnlyResolve(t *testing.T) {
	metadataOnly := &stubStrategy{name: "metadata_only", video: domain.ResolvedVideo{
		Metadata: domain.VideoMetadata{Title: "My Test Video!"},
	}}
	deps := newService(t, []ports.ExtractionStrategy{metadataOnly}, true, true)

	out, err := deps.service.CommitDownload(context.Background(), application.CommitDownloadInput{
		URL:       watchURL,
		VariantID: 137,
	})
	if err != nil {
		t.Fatalf("commit download: %v", err)
	}
	if out.Filename != "My_Test_Video_1080p_video_only.mp4" {
		t.Fatalf("unexpected filename %q", out.Filename)
	}
	if len(deps.runner.started) != 1 {
		t.Fatalf("expected one job started, got %d", len(deps.runner.started))
	}
	if deps.runner.started[0].Selector != "137+141/best[height=1080][ext=mp4]/best[height=1080]" {
		t.Fatalf("unexpected selector %q", deps.runner.started[0].Selector)
	}
}

func TestCommitDownloadRateLimited(t *testing.T) {
	strategy := &stubStrategy{name: "only", video: progressiveCatalog()}
	deps := newService(t, []ports.ExtractionStrategy{strategy}, true, false)

	_, err := deps.service.CommitDownload(context.Background(), application.CommitDownloadInput{
		URL:       watchURL,
		VariantID: 22,
	})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestPollJobStates(t *testing.T) {
	deps := newService(t, nil, true, true)
	if err := deps.jobs.Create(domain.DownloadJob{
		JobID:  "j1",
		State:  domain.JobStateRunning,
		Stdout: "Download progress: 12.5%\nDownload progress: 40%\n",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := deps.service.PollJob(context.Background(), "j1")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.State != "running" {
		t.Fatalf("expected running, got %s", out.State)
	}
	if out.ProgressHint != "40%" {
		t.Fatalf("expected last progress line, got %q", out.ProgressHint)
	}
	if out.ArtifactRef != "" {
		t.Fatal("running job must not expose an artifact ref")
	}
}

func TestPollJobSucceededExposesArtifactRef(t *testing.T) {
	deps := newService(t, nil, true, true)
	if err := deps.jobs.Create(domain.DownloadJob{
		JobID:        "j2",
		State:        domain.JobStateSucceeded,
		ArtifactPath: "/artifacts/j2_out.mp4",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := deps.service.PollJob(context.Background(), "j2")
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.ArtifactRef != "j2" {
		t.Fatalf("expected artifact ref j2, got %q", out.ArtifactRef)
	}
	if out.ProgressHint != "100%" {
		t.Fatalf("expected 100%%, got %q", out.ProgressHint)
	}
}

func TestPollJobUnknownID(t *testing.T) {
	deps := newService(t, nil, true, true)
	if _, err := deps.service.PollJob(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchArtifact(t *testing.T) {
	deps := newService(t, nil, true, true)
	if err := deps.jobs.Create(domain.DownloadJob{
		JobID:        "j3",
		State:        domain.JobStateSucceeded,
		ArtifactPath: "/artifacts/j3_out.mp4",
		Filename:     "out.mp4",
		MimeType:     "video/mp4",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	artifact, err := deps.service.FetchArtifact(context.Background(), "j3")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer artifact.Reader.Close()
	if artifact.Filename != "out.mp4" || artifact.MimeType != "video/mp4" {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	data, _ := io.ReadAll(artifact.Reader)
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestFetchArtifactRejectsUnfinishedJob(t *testing.T) {
	deps := newService(t, nil, true, true)
	if err := deps.jobs.Create(domain.DownloadJob{JobID: "j4", State: domain.JobStateRunning}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := deps.service.FetchArtifact(context.Background(), "j4"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := deps.service.FetchArtifact(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ref, got %v", err)
	}
}
