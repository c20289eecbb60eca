package extract

import (
	"context"
	"testing"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"PT3M33S", 213},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := parseISODuration(tc.in); got != tc.want {
			t.Fatalf("parseISODuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestOfficialAPIRequiresKey(t *testing.T) {
	s := NewOfficialAPIStrategy(testLogger(), "", time.Second)
	if _, err := s.Resolve(context.Background(), domain.VideoID("abc")); err == nil {
		t.Fatal("expected an error without an api key")
	}
}

func TestBestThumbnailPreference(t *testing.T) {
	thumbs := map[string]struct {
		URL string `json:"url"`
	}{
		"default": {URL: "https://t.test/default.jpg"},
		"high":    {URL: "https://t.test/high.jpg"},
	}
	if got := bestThumbnail(thumbs); got != "https://t.test/high.jpg" {
		t.Fatalf("expected the highest available tier, got %q", got)
	}
	if got := bestThumbnail(nil); got != "" {
		t.Fatalf("expected empty for no thumbnails, got %q", got)
	}
}
