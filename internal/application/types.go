package application

import (
	"log/slog"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
	"github.com/tubefetch/tubefetch/internal/ports"
)

type Config struct {
	ServiceName string
}

type ResolveInput struct {
	ClientKey string
	URL       string
}

type ResolveResult struct {
	Video        domain.ResolvedVideo
	StrategyUsed string
}

type CommitDownloadInput struct {
	ClientKey string
	URL       string
	VariantID int
	MediaKind string
}

type CommitDownloadResult struct {
	JobID    string
	Filename string
	MimeType string
}

type Service struct {
	cfg Config

	strategies      []ports.ExtractionStrategy
	cache           ports.MetadataCache
	resolveLimiter  ports.RateLimiter
	downloadLimiter ports.RateLimiter
	jobs            ports.JobStore
	runner          ports.JobRunner
	artifacts       ports.ArtifactStore

	logger *slog.Logger
	nowFn  func() time.Time
}

type Dependencies struct {
	Config Config

	Strategies      []ports.ExtractionStrategy
	Cache           ports.MetadataCache
	ResolveLimiter  ports.RateLimiter
	DownloadLimiter ports.RateLimiter
	Jobs            ports.JobStore
	Runner          ports.JobRunner
	Artifacts       ports.ArtifactStore

	Logger *slog.Logger
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "tubefetch"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:             cfg,
		strategies:      deps.Strategies,
		cache:           deps.Cache,
		resolveLimiter:  deps.ResolveLimiter,
		downloadLimiter: deps.DownloadLimiter,
		jobs:            deps.Jobs,
		runner:          deps.Runner,
		artifacts:       deps.Artifacts,
		logger:          logger.With("module", "application"),
		nowFn:           func() time.Time { return time.Now().UTC() },
	}
}
