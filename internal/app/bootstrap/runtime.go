package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/tubefetch/tubefetch/internal/adapters/cache"
	"github.com/tubefetch/tubefetch/internal/adapters/extract"
	grpcadapter "github.com/tubefetch/tubefetch/internal/adapters/grpc"
	httpadapter "github.com/tubefetch/tubefetch/internal/adapters/http"
	jobsadapter "github.com/tubefetch/tubefetch/internal/adapters/jobs"
	"github.com/tubefetch/tubefetch/internal/adapters/ratelimit"
	"github.com/tubefetch/tubefetch/internal/adapters/storage"
	"github.com/tubefetch/tubefetch/internal/application"
	"github.com/tubefetch/tubefetch/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("service", cfg.ServiceID)
	slog.SetDefault(logger)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	artifacts, err := storage.NewLocalStore(cfg.StorageRoot)
	if err != nil {
		return nil, err
	}
	jobStore := jobsadapter.NewMemoryStore()
	runner := jobsadapter.NewRunner(logger, jobStore, cfg.PythonBin, cfg.DownloadScript, cfg.DownloadTimeout())

	service := application.NewService(application.Dependencies{
		Config:          application.Config{ServiceName: cfg.ServiceID},
		Strategies:      buildStrategies(logger, cfg),
		Cache:           cache.NewMemoryCache(cfg.CacheTTL(), cfg.CacheMaxEntries),
		ResolveLimiter:  ratelimit.NewFixedWindowLimiter("rl:resolve", cfg.ResolvePerMinute, cfg.LimitWindow(), rdb),
		DownloadLimiter: ratelimit.NewFixedWindowLimiter("rl:download", cfg.DownloadPerMinute, cfg.LimitWindow(), rdb),
		Jobs:            jobStore,
		Runner:          runner,
		Artifacts:       artifacts,
		Logger:          logger,
	})

	handler := httpadapter.NewHandler(service, artifacts)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTPPort), Handler: router, ReadHeaderTimeout: 5 * time.Second}

	grpcServer := grpc.NewServer()
	grpcadapter.Register(grpcServer, grpcadapter.NewHealthServer())
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return nil, err
	}

	_ = ctx
	return &Runtime{cfg: cfg, logger: logger, httpServer: httpServer, grpcServer: grpcServer, grpcLis: lis}, nil
}

// buildStrategies assembles the extraction chain in priority order. The
// delegated worker leads because it yields real stream URLs; keyed and
// mirror strategies join only when configured.
func buildStrategies(logger *slog.Logger, cfg Config) []ports.ExtractionStrategy {
	strategies := []ports.ExtractionStrategy{
		extract.NewDelegatedWorkerStrategy(logger, cfg.PythonBin, cfg.InfoScript, cfg.InfoTimeout()),
	}
	if cfg.APIKey != "" {
		strategies = append(strategies, extract.NewOfficialAPIStrategy(logger, cfg.APIKey, cfg.ScrapeTimeout()))
	}
	strategies = append(strategies,
		extract.NewPageScrapeStrategy(logger, cfg.ScrapeTimeout()),
		extract.NewOEmbedStrategy(logger, cfg.ScrapeTimeout()),
	)
	if cfg.MirrorURL != "" {
		strategies = append(strategies, extract.NewMirrorStrategy(logger, cfg.MirrorURL, cfg.ScrapeTimeout()))
	}
	return strategies
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 2)

	go func() {
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- err
		}
	}()
	r.logger.InfoContext(ctx, "api runtime started", "http_port", r.cfg.HTTPPort, "grpc_port", r.cfg.GRPCPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		r.logger.ErrorContext(ctx, "runtime failure", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	return nil
}
