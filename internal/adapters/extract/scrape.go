package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// fieldPatterns is an ordered list of extractors for one metadata field,
// tried top to bottom with the first match kept. Keep entries ordered from
// most specific to most generic.
type fieldPatterns []*regexp.Regexp

func (p fieldPatterns) first(html string) string {
	for _, re := range p {
		if m := re.FindStringSubmatch(html); m != nil {
			return cleanText(m[1])
		}
	}
	return ""
}

var (
	titlePatterns = fieldPatterns{
		regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]*)"`),
		regexp.MustCompile(`<meta\s+name="title"\s+content="([^"]*)"`),
		regexp.MustCompile(`<title>([^<]*)</title>`),
	}
	descriptionPatterns = fieldPatterns{
		regexp.MustCompile(`<meta\s+property="og:description"\s+content="([^"]*)"`),
		regexp.MustCompile(`<meta\s+name="description"\s+content="([^"]*)"`),
	}
	thumbnailPatterns = fieldPatterns{
		regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]*)"`),
		regexp.MustCompile(`<meta\s+name="twitter:image"\s+content="([^"]*)"`),
		regexp.MustCompile(`<link\s+rel="image_src"\s+href="([^"]*)"`),
	}
	authorPatterns = fieldPatterns{
		regexp.MustCompile(`"ownerChannelName":"([^"]+)"`),
		regexp.MustCompile(`<meta\s+name="author"\s+content="([^"]*)"`),
		regexp.MustCompile(`"author":"([^"]+)"`),
	}
	viewsPatterns = fieldPatterns{
		regexp.MustCompile(`"viewCount":"(\d+)"`),
		regexp.MustCompile(`"viewCountText":\{"runs":\[\{"text":"([^"]+)"`),
	}
	durationPattern   = regexp.MustCompile(`"lengthSeconds":"(\d+)"`)
	uploadDatePattern = regexp.MustCompile(`"uploadDate":"([^"]+)"`)

	formatsPattern         = regexp.MustCompile(`"formats":\s*(\[.*?\])`)
	adaptiveFormatsPattern = regexp.MustCompile(`"adaptiveFormats":\s*(\[.*?\])`)

	digitsPattern = regexp.MustCompile(`[\d,]+`)
)

// PageScrapeStrategy fetches the watch page with a rotated User-Agent and
// pulls metadata out of the HTML with per-field pattern tables. Stream
// variants come from the embedded player JSON when parseable; otherwise the
// synthetic fallback catalog keeps the result non-empty. Individual fields
// that cannot be recovered default to sentinels instead of failing the
// whole strategy.
type PageScrapeStrategy struct {
	client *http.Client
	logger *slog.Logger
}

func NewPageScrapeStrategy(logger *slog.Logger, timeout time.Duration) *PageScrapeStrategy {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &PageScrapeStrategy{
		client: &http.Client{Timeout: timeout},
		logger: logger.With("module", "extract", "strategy", "page_scrape"),
	}
}

func (s *PageScrapeStrategy) Name() string { return "page_scrape" }

func (s *PageScrapeStrategy) Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, domain.WatchURL(id), nil)
	if err != nil {
		return domain.ResolvedVideo{}, err
	}
	req.Header.Set("User-Agent", randomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("fetch watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.ResolvedVideo{}, fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("read watch page: %w", err)
	}
	html := string(body)

	meta := s.extractMetadata(html, id)
	variants := s.extractVariants(html)
	if len(variants) == 0 {
		s.logger.Debug("no parseable stream data, using fallback catalog", "video_id", string(id))
		variants = domain.FallbackVariants(id)
	}
	return domain.ResolvedVideo{Metadata: meta, Variants: variants}, nil
}

func (s *PageScrapeStrategy) extractMetadata(html string, id domain.VideoID) domain.VideoMetadata {
	meta := domain.VideoMetadata{
		VideoID: string(id),
		Title:   domain.UnknownTitle,
		Author:  domain.UnknownAuthor,
		Views:   "0",
	}

	if title := titlePatterns.first(html); title != "" {
		title = strings.TrimSpace(strings.TrimSuffix(title, " - YouTube"))
		if title != "" && title != "YouTube" {
			meta.Title = title
		}
	}
	if desc := descriptionPatterns.first(html); desc != "" {
		meta.Description = desc
	}
	if thumb := thumbnailPatterns.first(html); thumb != "" {
		meta.Thumbnail = thumb
	} else {
		meta.Thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	}
	if author := authorPatterns.first(html); author != "" {
		meta.Author = author
	}
	if views := viewsPatterns.first(html); views != "" {
		if digits := digitsPattern.FindString(views); digits != "" {
			meta.Views = strings.ReplaceAll(digits, ",", "")
		}
	}
	if m := durationPattern.FindStringSubmatch(html); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			meta.DurationSeconds = secs
		}
	}
	if m := uploadDatePattern.FindStringSubmatch(html); m != nil {
		meta.UploadDate = m[1]
	}
	return meta
}

// scrapeFormat mirrors the shape of the player JSON format entries. Bitrate
// fields can be fractional and dimension fields absent, hence the pointers.
type scrapeFormat struct {
	Itag         int      `json:"itag"`
	Quality      string   `json:"quality"`
	QualityLabel string   `json:"qualityLabel"`
	MimeType     string   `json:"mimeType"`
	Width        *int     `json:"width"`
	Height       *int     `json:"height"`
	Bitrate      *float64 `json:"bitrate"`
	AudioQuality string   `json:"audioQuality"`
	URL          string   `json:"url"`
}

func (s *PageScrapeStrategy) extractVariants(html string) []domain.StreamVariant {
	var out []domain.StreamVariant
	if m := formatsPattern.FindStringSubmatch(html); m != nil {
		out = append(out, parseFormatArray(m[1], true)...)
	}
	if m := adaptiveFormatsPattern.FindStringSubmatch(html); m != nil {
		out = append(out, parseFormatArray(m[1], false)...)
	}
	return out
}

// parseFormatArray decodes one embedded format array. Progressive entries
// always carry both tracks; adaptive entries are split by mime type.
func parseFormatArray(raw string, progressive bool) []domain.StreamVariant {
	var formats []scrapeFormat
	if err := json.Unmarshal([]byte(raw), &formats); err != nil {
		return nil
	}
	out := make([]domain.StreamVariant, 0, len(formats))
	for _, f := range formats {
		if f.URL == "" {
			continue
		}
		v := domain.StreamVariant{
			ID:           f.Itag,
			Quality:      f.Quality,
			QualityLabel: f.QualityLabel,
			MimeType:     f.MimeType,
			Container:    domain.ContainerFromMime(f.MimeType),
			URL:          f.URL,
		}
		if f.QualityLabel == "" {
			v.QualityLabel = f.Quality
		}
		if f.Width != nil {
			v.Width = *f.Width
		}
		if f.Height != nil {
			v.Height = *f.Height
		}
		if f.Bitrate != nil {
			v.Bitrate = int(*f.Bitrate)
		}
		switch {
		case progressive:
			v.HasVideo = true
			v.HasAudio = true
		case strings.HasPrefix(f.MimeType, "audio/"):
			v.HasAudio = true
		default:
			v.HasVideo = true
			v.HasAudio = f.AudioQuality != ""
		}
		out = append(out, v)
	}
	return out
}
