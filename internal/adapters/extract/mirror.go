package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// MirrorStrategy queries a configured third-party mirror exposing the
// invidious-style /api/v1/videos/{id} endpoint. Mirrors come and go, so this
// runs last in the chain and only contributes metadata.
type MirrorStrategy struct {
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

func NewMirrorStrategy(logger *slog.Logger, baseURL string, timeout time.Duration) *MirrorStrategy {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &MirrorStrategy{
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("module", "extract", "strategy", "mirror"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *MirrorStrategy) Name() string { return "mirror" }

type mirrorVideo struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Description     string `json:"description"`
	LengthSeconds   int    `json:"lengthSeconds"`
	ViewCount       int64  `json:"viewCount"`
	Published       int64  `json:"published"`
	VideoThumbnails []struct {
		Quality string `json:"quality"`
		URL     string `json:"url"`
	} `json:"videoThumbnails"`
}

func (s *MirrorStrategy) Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	if s.baseURL == "" {
		return domain.ResolvedVideo{}, fmt.Errorf("no mirror configured")
	}

	endpoint := fmt.Sprintf("%s/api/v1/videos/%s", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.ResolvedVideo{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("query mirror: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ResolvedVideo{}, fmt.Errorf("mirror returned status %d", resp.StatusCode)
	}

	var body mirrorVideo
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("decode mirror response: %w", err)
	}

	meta := domain.VideoMetadata{
		VideoID:         string(id),
		Title:           body.Title,
		Description:     body.Description,
		Author:          body.Author,
		DurationSeconds: body.LengthSeconds,
		Views:           strconv.FormatInt(body.ViewCount, 10),
	}
	if meta.Title == "" {
		meta.Title = domain.UnknownTitle
	}
	if meta.Author == "" {
		meta.Author = domain.UnknownAuthor
	}
	if body.Published > 0 {
		meta.UploadDate = time.Unix(body.Published, 0).UTC().Format("2006-01-02")
	}
	for _, t := range body.VideoThumbnails {
		if t.URL != "" {
			meta.Thumbnail = t.URL
			break
		}
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	}
	return domain.ResolvedVideo{Metadata: meta}, nil
}
