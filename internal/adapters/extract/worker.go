package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

// DelegatedWorkerStrategy asks the external worker process for structured
// metadata and formats. The worker's internals are opaque; the contract is
// that its last stdout line is a JSON envelope. Well-formed output is
// trusted verbatim.
type DelegatedWorkerStrategy struct {
	logger  *slog.Logger
	bin     string
	script  string
	timeout time.Duration
}

func NewDelegatedWorkerStrategy(logger *slog.Logger, bin, script string, timeout time.Duration) *DelegatedWorkerStrategy {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &DelegatedWorkerStrategy{
		logger:  logger.With("module", "extract", "strategy", "delegated_worker"),
		bin:     bin,
		script:  script,
		timeout: timeout,
	}
}

func (s *DelegatedWorkerStrategy) Name() string { return "delegated_worker" }

type workerEnvelope struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	VideoInfo workerVideoInfo `json:"videoInfo"`
	Formats   []workerFormat  `json:"formats"`
}

type workerVideoInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Duration    int    `json:"duration"`
	Views       string `json:"views"`
	UploadDate  string `json:"uploadDate"`
	Author      string `json:"author"`
	VideoID     string `json:"videoId"`
}

// workerFormat tolerates the worker's loose typing: itag may arrive as a
// number or a string format code, bitrates may be fractional or null.
type workerFormat struct {
	Itag         json.Number `json:"itag"`
	Quality      string      `json:"quality"`
	QualityLabel string      `json:"qualityLabel"`
	MimeType     string      `json:"mimeType"`
	Container    string      `json:"container"`
	HasVideo     bool        `json:"hasVideo"`
	HasAudio     bool        `json:"hasAudio"`
	Width        *int        `json:"width"`
	Height       *int        `json:"height"`
	Bitrate      *float64    `json:"bitrate"`
	AudioBitrate *float64    `json:"audioBitrate"`
	URL          string      `json:"url"`
}

func (s *DelegatedWorkerStrategy) Resolve(ctx context.Context, id domain.VideoID) (domain.ResolvedVideo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := []string{domain.WatchURL(id)}
	if s.script != "" {
		args = append([]string{s.script}, args...)
	}
	cmd := exec.CommandContext(ctx, s.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("worker failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	line := lastNonEmptyLine(stdout.String())
	if line == "" {
		return domain.ResolvedVideo{}, fmt.Errorf("worker produced no output")
	}
	var envelope workerEnvelope
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		return domain.ResolvedVideo{}, fmt.Errorf("parse worker output: %w", err)
	}
	if !envelope.Success {
		reason := envelope.Error
		if reason == "" {
			reason = "unspecified worker error"
		}
		return domain.ResolvedVideo{}, fmt.Errorf("worker reported failure: %s", reason)
	}

	meta := domain.VideoMetadata{
		VideoID:         envelope.VideoInfo.VideoID,
		Title:           envelope.VideoInfo.Title,
		Description:     envelope.VideoInfo.Description,
		Thumbnail:       envelope.VideoInfo.Thumbnail,
		DurationSeconds: envelope.VideoInfo.Duration,
		Author:          envelope.VideoInfo.Author,
		UploadDate:      envelope.VideoInfo.UploadDate,
		Views:           envelope.VideoInfo.Views,
	}
	if meta.Title == "" {
		meta.Title = domain.UnknownTitle
	}
	if meta.Author == "" {
		meta.Author = domain.UnknownAuthor
	}

	variants := make([]domain.StreamVariant, 0, len(envelope.Formats))
	for _, f := range envelope.Formats {
		itag, err := strconv.Atoi(f.Itag.String())
		if err != nil {
			// Non-numeric format codes (storyboards and the like) carry
			// nothing downloadable.
			continue
		}
		v := domain.StreamVariant{
			ID:           itag,
			Quality:      f.Quality,
			QualityLabel: f.QualityLabel,
			MimeType:     f.MimeType,
			Container:    f.Container,
			HasVideo:     f.HasVideo,
			HasAudio:     f.HasAudio,
			URL:          f.URL,
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
		if f.AudioBitrate != nil {
			v.AudioBitrate = int(*f.AudioBitrate)
		}
		variants = append(variants, v)
	}
	return domain.ResolvedVideo{Metadata: meta, Variants: variants}, nil
}

func lastNonEmptyLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
