package domain

import (
	"fmt"
	"strings"
)

const maxTitleToken = 80

// SanitizeTitle reduces a video title to an ASCII-safe token: letters and
// digits pass through, every other rune becomes an underscore.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "video"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	token := b.String()
	if len(token) > maxTitleToken {
		token = token[:maxTitleToken]
	}
	return token
}

// BuildFilename produces the deterministic output filename for a selected
// variant. Collision resistance across concurrent jobs for the same title is
// the caller's concern: the job runner prefixes a unique job token before
// anything touches disk.
func BuildFilename(title string, v StreamVariant) string {
	base := SanitizeTitle(title)
	if !strings.HasSuffix(base, "_") {
		base += "_"
	}

	var suffix string
	switch {
	case v.HasVideo && v.HasAudio:
		suffix = fmt.Sprintf("%dp_video_audio", v.Height)
	case v.HasVideo:
		suffix = fmt.Sprintf("%dp_video_only", v.Height)
	default:
		suffix = fmt.Sprintf("%dkbps_audio_only", v.AudioBitrate)
	}

	ext := v.Container
	if ext == "" {
		ext = ContainerFromMime(v.MimeType)
	}
	if ext == "" {
		ext = "mp4"
	}
	return base + suffix + "." + ext
}
