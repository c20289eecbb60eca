package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

const apiVideosEndpoint = "https://www.googleapis.com/youtube/v3/videos"

// OfficialAPIStrategy resolves metadata through the Data API v3. It needs a
// configured key and never yields stream variants; the catalog falls back to
// the synthetic itag table so a download can still be committed.
type OfficialAPIStrategy struct {
	client *http.Client
	logger *slog.Logger
	apiKey string
}

func NewOfficialAPIStrategy(logger *slog.Logger, apiKey string, timeout time.Duration) *OfficialAPIStrategy {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &OfficialAPIStrategy{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("module", "extract", "strategy", "official_api"),
		apiKey: apiKey,
	}
}

func (s *OfficialAPIStrategy) Name() string { return "official_api" }

type apiVideoList struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (s *OfficialAPIStrategy) Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	if s.apiKey == "" {
		return domain.ResolvedVideo{}, fmt.Errorf("no api key configured")
	}

	q := url.Values{}
	q.Set("id", string(id))
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("key", s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiVideosEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return domain.ResolvedVideo{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("query videos api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ResolvedVideo{}, fmt.Errorf("videos api returned status %d", resp.StatusCode)
	}

	var list apiVideoList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("decode videos api response: %w", err)
	}
	if len(list.Items) == 0 {
		return domain.ResolvedVideo{}, fmt.Errorf("video %s not found via api", id)
	}
	item := list.Items[0]

	meta := domain.VideoMetadata{
		VideoID:         item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		Author:          item.Snippet.ChannelTitle,
		UploadDate:      item.Snippet.PublishedAt,
		Views:           item.Statistics.ViewCount,
		DurationSeconds: parseISODuration(item.ContentDetails.Duration),
	}
	if meta.Title == "" {
		meta.Title = domain.UnknownTitle
	}
	if meta.Author == "" {
		meta.Author = domain.UnknownAuthor
	}
	if meta.Views == "" {
		meta.Views = "0"
	}
	meta.Thumbnail = bestThumbnail(item.Snippet.Thumbnails)
	if meta.Thumbnail == "" {
		meta.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	}

	return domain.ResolvedVideo{Metadata: meta}, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 duration form (PT1H2M3S) to
// seconds. Malformed values read as zero.
func parseISODuration(d string) int {
	m := isoDurationPattern.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

var thumbnailPreference = []string{"maxres", "standard", "high", "medium", "default"}

func bestThumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, key := range thumbnailPreference {
		if t, ok := thumbs[key]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
