package cache

import (
	"testing"
	"time"

	"github.com/tubefetch/tubefetch/internal/domain"
)

func resolvedVideo(id string) domain.ResolvedVideo {
	return domain.ResolvedVideo{
		Metadata: domain.VideoMetadata{VideoID: id, Title: "t-" + id},
		Variants: []domain.StreamVariant{{ID: 18, HasVideo: true, HasAudio: true}},
	}
}

func TestMemoryCacheHitWithinTTL(t *testing.T) {
	c := NewMemoryCache(5*time.Minute, 16)
	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("abc", resolvedVideo("abc"), "page_scrape")
	now = now.Add(4 * time.Minute)

	video, strategy, ok := c.Get("abc")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if strategy != "page_scrape" {
		t.Fatalf("expected page_scrape, got %s", strategy)
	}
	if video.Metadata.VideoID != "abc" {
		t.Fatalf("expected abc, got %s", video.Metadata.VideoID)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(5*time.Minute, 16)
	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("abc", resolvedVideo("abc"), "oembed")
	now = now.Add(5 * time.Minute)

	if _, _, ok := c.Get("abc"); ok {
		t.Fatal("expected stale entry to miss")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(time.Minute, 16)
	if _, _, ok := c.Get("nope"); ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsedAtCap(t *testing.T) {
	c := NewMemoryCache(time.Hour, 2)
	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("first", resolvedVideo("first"), "s")
	now = now.Add(time.Second)
	c.Put("second", resolvedVideo("second"), "s")
	now = now.Add(time.Second)
	c.Put("third", resolvedVideo("third"), "s")

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", c.Len())
	}
	if _, _, ok := c.Get("first"); ok {
		t.Fatal("expected least recently used entry to be evicted")
	}
	if _, _, ok := c.Get("third"); !ok {
		t.Fatal("expected newest entry to survive")
	}
}

func TestMemoryCacheGetRefreshesRecency(t *testing.T) {
	c := NewMemoryCache(time.Hour, 2)

	c.Put("first", resolvedVideo("first"), "s")
	c.Put("second", resolvedVideo("second"), "s")
	if _, _, ok := c.Get("first"); !ok {
		t.Fatal("expected hit for first")
	}
	c.Put("third", resolvedVideo("third"), "s")

	if _, _, ok := c.Get("second"); ok {
		t.Fatal("expected the unread entry to be evicted")
	}
	if _, _, ok := c.Get("first"); !ok {
		t.Fatal("expected the recently read entry to survive")
	}
}

func TestMemoryCacheGetDoesNotExtendTTL(t *testing.T) {
	c := NewMemoryCache(5*time.Minute, 16)
	now := time.Now()
	c.nowFn = func() time.Time { return now }

	c.Put("abc", resolvedVideo("abc"), "s")
	now = now.Add(4 * time.Minute)
	if _, _, ok := c.Get("abc"); !ok {
		t.Fatal("expected hit within the ttl")
	}
	now = now.Add(2 * time.Minute)
	if _, _, ok := c.Get("abc"); ok {
		t.Fatal("a read must not push back expiry")
	}
}

func TestMemoryCachePutReplacesExisting(t *testing.T) {
	c := NewMemoryCache(time.Hour, 2)
	c.Put("abc", resolvedVideo("abc"), "oembed")
	c.Put("abc", resolvedVideo("abc"), "page_scrape")

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
	_, strategy, ok := c.Get("abc")
	if !ok || strategy != "page_scrape" {
		t.Fatalf("expected replacement to win, got ok=%v strategy=%s", ok, strategy)
	}
}
