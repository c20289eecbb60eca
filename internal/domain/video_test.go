package domain

import (
	"errors"
	"testing"
)

func TestParseVideoIDAcceptsKnownShapes(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"watch page", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"bare host", "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"short link with extras", "https://youtu.be/dQw4w9WgXcQ?t=42"},
		{"watch page with extras", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseVideoID(tc.url)
			if err != nil {
				t.Fatalf("parse %s: %v", tc.url, err)
			}
			if id != "dQw4w9WgXcQ" {
				t.Fatalf("expected dQw4w9WgXcQ, got %s", id)
			}
		})
	}
}

func TestParseVideoIDRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"other host", "https://vimeo.com/12345"},
		{"watch page without id", "https://www.youtube.com/watch"},
		{"short link without path", "https://youtu.be/"},
		{"lookalike host", "https://notyoutube.com/watch?v=abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseVideoID(tc.url); !errors.Is(err, ErrInvalidURL) {
				t.Fatalf("expected ErrInvalidURL for %q, got %v", tc.url, err)
			}
		})
	}
}

func TestWatchURLRoundTrip(t *testing.T) {
	id, err := ParseVideoID(WatchURL("abc123XYZ_-"))
	if err != nil {
		t.Fatalf("parse watch url: %v", err)
	}
	if id != "abc123XYZ_-" {
		t.Fatalf("expected abc123XYZ_-, got %s", id)
	}
}
