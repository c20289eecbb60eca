package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

// OEmbedStrategy hits the public oEmbed endpoint. It is cheap and keyless
// but only yields title, author, and thumbnail; duration and variants are
// left for the catalog fallback.
type OEmbedStrategy struct {
	client *http.Client
	logger *slog.Logger
}

func NewOEmbedStrategy(logger *slog.Logger, timeout time.Duration) *OEmbedStrategy {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &OEmbedStrategy{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("module", "extract", "strategy", "oembed"),
	}
}

func (s *OEmbedStrategy) Name() string { return "oembed" }

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (s *OEmbedStrategy) Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	q := url.Values{}
	q.Set("url", domain.WatchURL(id))
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return domain.ResolvedVideo{}, err
	}
	req.Header.Set("User-Agent", randomUserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("query oembed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ResolvedVideo{}, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var body oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("decode oembed response: %w", err)
	}

	meta := domain.VideoMetadata{
		VideoID:   string(id),
		Title:     body.Title,
		Author:    body.AuthorName,
		Thumbnail: body.ThumbnailURL,
		Views:     "0",
	}
	if meta.Title == "" {
		meta.Title = domain.UnknownTitle
	}
	if meta.Author == "" {
		meta.Author = domain.UnknownAuthor
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	}
	return domain.ResolvedVideo{Metadata: meta}, nil
}
