package ports

import (
	"context"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// ExtractionStrategy is one independent way of obtaining metadata and
// formats for a video ID. A strategy failure never aborts the chain; the
// engine logs it and moves to the next strategy.
type ExtractionStrategy interface {
	Name() string
	Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error)
}

// MetadataCache memoizes resolved videos by ID with TTL staleness applied on
// read. A stale entry behaves like a miss and is superseded wholesale by the
// next successful resolution.
type MetadataCache interface {
	Get(id domain.VideoID) (domain.ResolvedVideo, string, bool)
	Put(id domain.VideoID, video domain.ResolvedVideo, strategy string)
}

// RateLimiter is fixed-window admission control keyed by client. Process
// local; coarse abuse damping, not precise quota enforcement.
type RateLimiter interface {
	Allow(ctx context.Context, clientKey string) bool
}
