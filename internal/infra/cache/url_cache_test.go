package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURLCacheGetSet(t *testing.T) {
	c := NewURLCache()

	_, found := c.Get("missing")
	assert.False(t, found)

	c.Set("docs/files/a-report.pdf", "https://example.com/signed", time.Now().Add(time.Minute))

	url, found := c.Get("docs/files/a-report.pdf")
	assert.True(t, found)
	assert.Equal(t, "https://example.com/signed", url)
}

func TestURLCacheExpiredEntryIsMiss(t *testing.T) {
	c := NewURLCache()
	c.Set("key", "https://example.com/stale", time.Now().Add(-time.Second))

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestURLCacheDelete(t *testing.T) {
	c := NewURLCache()
	c.Set("key", "https://example.com/signed", time.Now().Add(time.Minute))

	c.Delete("key")

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestURLCachePurgeKeepsLiveEntries(t *testing.T) {
	c := NewURLCache()
	c.Set("stale", "https://example.com/stale", time.Now().Add(-time.Minute))
	c.Set("live", "https://example.com/live", time.Now().Add(time.Minute))

	c.Purge()

	_, found := c.Get("stale")
	assert.False(t, found)

	url, found := c.Get("live")
	assert.True(t, found)
	assert.Equal(t, "https://example.com/live", url)
}
