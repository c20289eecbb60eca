package domain

import (
	"strconv"
	"strings"
)

// NormalizeVariants produces the canonical variant catalog from raw strategy
// output: containers are derived from the mime type when absent, variants
// with neither video nor audio capability are discarded, and duplicate IDs
// keep the first occurrence so IDs stay unique within one ResolvedVideo.
func NormalizeVariants(raw []StreamVariant) []StreamVariant {
	out := make([]StreamVariant, 0, len(raw))
	seen := make(map[int]bool, len(raw))
	for _, v := range raw {
		if !v.HasVideo && !v.HasAudio {
			continue
		}
		if seen[v.ID] {
			continue
		}
		if v.Container == "" {
			v.Container = ContainerFromMime(v.MimeType)
		}
		if v.MimeType == "" {
			if v.HasVideo {
				v.MimeType = "video/mp4"
			} else {
				v.MimeType = "audio/mp4"
			}
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

// ContainerFromMime extracts the container token from a mime type such as
// "video/mp4; codecs=..." falling back to mp4.
func ContainerFromMime(mime string) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return "mp4"
	}
	if idx := strings.Index(mime, "/"); idx >= 0 {
		sub := mime[idx+1:]
		if semi := strings.Index(sub, ";"); semi >= 0 {
			sub = sub[:semi]
		}
		sub = strings.TrimSpace(sub)
		if sub != "" {
			if strings.HasPrefix(mime, "audio/") && sub == "mp4" {
				return "m4a"
			}
			return sub
		}
	}
	return "mp4"
}

// FindVariant looks a variant up by ID in the catalog.
func FindVariant(variants []StreamVariant, id int) (StreamVariant, error) {
	for _, v := range variants {
		if v.ID == id {
			return v, nil
		}
	}
	return StreamVariant{}, ErrVariantNotFound
}

type fallbackSpec struct {
	id           int
	quality      string
	label        string
	width        int
	height       int
	bitrate      int
	audioBitrate int
}

// Well-known rendition tuples used when no real stream data is recoverable.
// The IDs and dimensions mirror the platform's long-stable format table.
var fallbackVideoOnly = []fallbackSpec{
	{160, "144p", "144p", 256, 144, 100, 0},
	{133, "240p", "240p", 426, 240, 200, 0},
	{134, "360p", "360p", 640, 360, 500, 0},
	{135, "480p", "480p", 854, 480, 800, 0},
	{136, "720p", "720p", 1280, 720, 1500, 0},
	{137, "1080p", "1080p", 1920, 1080, 3000, 0},
	{298, "1440p", "1440p", 2560, 1440, 6000, 0},
	{299, "2160p", "2160p", 3840, 2160, 12000, 0},
	{302, "2160p60", "2160p60", 3840, 2160, 15000, 0},
	{303, "4320p", "4320p", 7680, 4320, 20000, 0},
}

var fallbackAudioOnly = []fallbackSpec{
	{139, "low", "48kbps", 0, 0, 0, 48},
	{140, "medium", "128kbps", 0, 0, 0, 128},
	{141, "high", "256kbps", 0, 0, 0, 256},
	{251, "very_high", "160kbps", 0, 0, 0, 160},
	{256, "ultra_high", "256kbps", 0, 0, 0, 256},
	{325, "master", "320kbps", 0, 0, 0, 320},
}

var fallbackCombined = []fallbackSpec{
	{18, "360p", "360p", 640, 360, 500, 128},
	{22, "720p", "720p", 1280, 720, 1500, 192},
	{394, "144p", "144p", 256, 144, 100, 48},
	{395, "240p", "240p", 426, 240, 200, 48},
	{396, "360p", "360p", 640, 360, 500, 96},
	{397, "480p", "480p", 854, 480, 800, 96},
	{398, "720p", "720p", 1280, 720, 1500, 128},
	{399, "1080p", "1080p", 1920, 1080, 3000, 192},
	{400, "1440p", "1440p", 2560, 1440, 6000, 256},
	{401, "2160p", "2160p", 3840, 2160, 12000, 320},
	{402, "2160p60", "2160p60", 3840, 2160, 15000, 320},
	{403, "4320p", "4320p", 7680, 4320, 20000, 320},
}

// FallbackVariants synthesizes a catalog of well-known variants with
// placeholder URLs. It guarantees the catalog is never empty even when no
// real stream URL is recoverable; the download worker resolves the actual
// stream from the selector at download time.
func FallbackVariants(id VideoID) []StreamVariant {
	placeholder := func(itag int) string {
		return WatchURL(id) + "&itag=" + strconv.Itoa(itag)
	}
	out := make([]StreamVariant, 0, len(fallbackVideoOnly)+len(fallbackAudioOnly)+len(fallbackCombined))
	for _, f := range fallbackVideoOnly {
		out = append(out, StreamVariant{
			ID: f.id, Quality: f.quality, QualityLabel: f.label,
			MimeType: "video/mp4", Container: "mp4",
			HasVideo: true, HasAudio: false,
			Width: f.width, Height: f.height, Bitrate: f.bitrate,
			URL: placeholder(f.id),
		})
	}
	for _, f := range fallbackAudioOnly {
		out = append(out, StreamVariant{
			ID: f.id, Quality: f.quality, QualityLabel: f.label,
			MimeType: "audio/mp4", Container: "m4a",
			HasVideo: false, HasAudio: true,
			AudioBitrate: f.audioBitrate,
			URL:          placeholder(f.id),
		})
	}
	for _, f := range fallbackCombined {
		out = append(out, StreamVariant{
			ID: f.id, Quality: f.quality, QualityLabel: f.label,
			MimeType: "video/mp4", Container: "mp4",
			HasVideo: true, HasAudio: true,
			Width: f.width, Height: f.height, Bitrate: f.bitrate, AudioBitrate: f.audioBitrate,
			URL: placeholder(f.id),
		})
	}
	return out
}
