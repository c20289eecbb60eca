package domain

import "strings"

// MediaKind is the client-requested delivery type for a download.
type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// NormalizeMediaKind maps arbitrary client input onto a known kind,
// defaulting to video.
func NormalizeMediaKind(raw string) MediaKind {
	if MediaKind(strings.ToLower(strings.TrimSpace(raw))) == MediaKindAudio {
		return MediaKindAudio
	}
	return MediaKindVideo
}

var audioOnlyVariants = map[int]bool{
	139: true, 140: true, 141: true, 249: true, 250: true, 251: true, 256: true, 325: true,
}

// IsAudioOnlyVariant reports whether the variant ID belongs to the well-known
// audio-only set.
func IsAudioOnlyVariant(id int) bool {
	return audioOnlyVariants[id]
}

// formatSelectors maps a concrete variant ID to the worker's composite
// selector string: primary ID, optional "+audio" secondary for muxed
// delivery, then threshold-based degradations. Ordered within each entry
// from most specific to most generic.
var formatSelectors = map[int]string{
	// audio-only
	140: "140/bestaudio[ext=m4a]/bestaudio",
	141: "141/bestaudio[ext=m4a]/bestaudio",
	251: "251/bestaudio[ext=webm]/bestaudio",
	250: "250/bestaudio[ext=webm]/bestaudio",
	249: "249/bestaudio[ext=webm]/bestaudio",
	256: "256/bestaudio[ext=m4a]/bestaudio",
	325: "325/bestaudio[ext=m4a]/bestaudio",

	// adaptive video paired with an audio stream
	313: "313+325/best[height=2160][ext=mp4]/best[height=2160]",
	303: "303+325/best[height=2160][ext=webm]/best[height=2160]",
	266: "266+325/best[height=1440][ext=mp4]/best[height=1440]",
	264: "264+325/best[height=1440][ext=webm]/best[height=1440]",
	137: "137+141/best[height=1080][ext=mp4]/best[height=1080]",
	248: "248+251/best[height=1080][ext=webm]/best[height=1080]",
	136: "136+141/best[height=720][ext=mp4]/best[height=720]",
	247: "247+251/best[height=720][ext=webm]/best[height=720]",
	135: "135+140/best[height=480][ext=mp4]/best[height=480]",
	244: "244+251/best[height=480][ext=webm]/best[height=480]",
	134: "134+140/best[height=360][ext=mp4]/best[height=360]",
	243: "243+251/best[height=360][ext=webm]/best[height=360]",
	133: "133+140/best[height=240][ext=mp4]/best[height=240]",
	242: "242+251/best[height=240][ext=webm]/best[height=240]",
	160: "160+140/best[height=144][ext=mp4]/best[height=144]",
	278: "278+251/best[height=144][ext=webm]/best[height=144]",

	// progressive video+audio
	22: "22/best[height<=720][ext=mp4]/best[height<=720]",
	18: "18/best[height<=360][ext=mp4]/best[height<=360]",
}

const (
	defaultAudioSelector = "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio[abr>256]/bestaudio[abr>192]/bestaudio[abr>160]/bestaudio[abr>128]/bestaudio"
	defaultVideoSelector = "best[height>=2160][width>=3840]/best[height>=1440][width>=2560]/best[height>=1080][width>=1920]/best[height>=720][width>=1280]/best[height>=480][width>=854]/best[height>=360][width>=640]/best"
)

// SelectorFor maps a variant ID and requested media kind to a worker format
// selector. Unknown IDs degrade to a best-effort ordering rather than
// failing; the result is always a usable selector.
func SelectorFor(variantID int, kind MediaKind) string {
	if sel, ok := formatSelectors[variantID]; ok {
		return sel
	}
	if kind == MediaKindAudio || IsAudioOnlyVariant(variantID) {
		return defaultAudioSelector
	}
	return defaultVideoSelector
}
