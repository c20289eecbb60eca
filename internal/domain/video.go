package domain

import (
	"net/url"
	"strings"
)

// VideoID is the platform-assigned identifier for a single video. It is the
// key for all caching and lookups; an empty VideoID is never valid.
type VideoID string

const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// VideoMetadata is immutable once resolved. Re-resolution replaces the whole
// value, fields are never merged across resolutions.
type VideoMetadata struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Thumbnail       string `json:"thumbnail"`
	DurationSeconds int    `json:"duration_seconds"`
	Author          string `json:"author"`
	UploadDate      string `json:"upload_date,omitempty"`
	Views           string `json:"views,omitempty"`
}

// StreamVariant is one downloadable rendition of a video.
type StreamVariant struct {
	ID           int    `json:"id"`
	Quality      string `json:"quality,omitempty"`
	QualityLabel string `json:"quality_label,omitempty"`
	MimeType     string `json:"mime_type"`
	Container    string `json:"container"`
	HasVideo     bool   `json:"has_video"`
	HasAudio     bool   `json:"has_audio"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Bitrate      int    `json:"bitrate,omitempty"`
	AudioBitrate int    `json:"audio_bitrate,omitempty"`
	URL          string `json:"url,omitempty"`
}

// ResolvedVideo pairs metadata with the ordered variant catalog for one video.
type ResolvedVideo struct {
	Metadata VideoMetadata   `json:"metadata"`
	Variants []StreamVariant `json:"variants"`
}

// ParseVideoID extracts the canonical video ID from a watch-page URL
// (youtube.com, ID in the "v" query parameter) or a short-link URL
// (youtu.be, ID as the first path segment). Any other host fails.
func ParseVideoID(raw string) (VideoID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case host == "youtu.be":
		segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		id = segments[0]
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = u.Query().Get("v")
	default:
		return "", ErrInvalidURL
	}
	if id == "" {
		return "", ErrInvalidURL
	}
	return VideoID(id), nil
}

// WatchURL rebuilds the canonical watch-page URL for an ID. Strategies and the
// download worker are always handed this form regardless of the input shape.
func WatchURL(id VideoID) string {
	return "https://www.youtube.com/watch?v=" + string(id)
}
