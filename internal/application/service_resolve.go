package application

import (
	"context"
	"strings"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// Resolve turns a video URL into metadata plus a variant catalog. The order
// is fixed: input validation, admission control, cache, then the strategy
// chain. Strategy failures are swallowed here; only exhaustion of the whole
// chain is visible to the caller.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) (ResolveResult, error) {
	id, err := domain.ParseVideoID(input.URL)
	if err != nil {
		return ResolveResult{}, err
	}
	if !s.resolveLimiter.Allow(ctx, input.ClientKey) {
		return ResolveResult{}, domain.ErrRateLimited
	}
	return s.resolve(ctx, id)
}

// resolve runs cache lookup and the strategy chain. Admission control has
// already happened by the time this runs.
func (s *Service) resolve(ctx context.Context, id domain.VideoID) (ResolveResult, error) {
	if video, strategy, ok := s.cache.Get(id); ok {
		s.logger.DebugContext(ctx, "resolution cache hit", "video_id", string(id), "strategy", strategy)
		return ResolveResult{Video: video, StrategyUsed: strategy}, nil
	}

	for _, strategy := range s.strategies {
		video, err := strategy.Resolve(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "extraction strategy failed",
				"strategy", strategy.Name(),
				"video_id", string(id),
				"error", err.Error(),
			)
			continue
		}
		video.Variants = domain.NormalizeVariants(video.Variants)
		if len(video.Variants) == 0 {
			// Metadata-only strategies still yield a committable catalog;
			// the worker resolves real streams from the selector.
			video.Variants = domain.FallbackVariants(id)
		}
		if strings.TrimSpace(video.Metadata.VideoID) == "" {
			video.Metadata.VideoID = string(id)
		}
		s.cache.Put(id, video, strategy.Name())
		s.logger.InfoContext(ctx, "video resolved",
			"strategy", strategy.Name(),
			"video_id", string(id),
			"variants", len(video.Variants),
		)
		return ResolveResult{Video: video, StrategyUsed: strategy.Name()}, nil
	}

	s.logger.WarnContext(ctx, "all extraction strategies exhausted", "video_id", string(id))
	return ResolveResult{}, domain.ErrAllStrategiesExhausted
}
