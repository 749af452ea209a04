package mcpserver

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/dataconv/internal/input"
	"github.com/zeebo/blake3"
)

// payloadInput represents the two ways a payload can be provided to a tool.
// Exactly one of File or Content must be set.
type payloadInput struct {
	File     string `json:"file,omitempty"     jsonschema:"Path to a file on disk. gzip\\, zstd\\, and xz files are decompressed."`
	Content  string `json:"content,omitempty"  jsonschema:"Inline document content"`
	Filename string `json:"filename,omitempty" jsonschema:"Filename hint for format detection. Only the extension is used."`
}

// loadedPayload is a payload read from either source.
type loadedPayload struct {
	data     []byte
	filename string
	// digest is the hex BLAKE3 hash of data.
	digest string
}

// load reads the payload from whichever input was provided.
func (p payloadInput) load() (*loadedPayload, error) {
	count := 0
	if p.File != "" {
		count++
	}
	if p.Content != "" {
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("exactly one of file or content must be provided (got %d)", count)
	}

	var lp loadedPayload
	switch {
	case p.File != "":
		loaded, err := input.ReadFile(p.File, cfg.MaxInputSize)
		if err != nil {
			return nil, err
		}
		lp.data, lp.filename = loaded.Data, loaded.Filename
	default:
		if int64(len(p.Content)) > cfg.MaxInputSize {
			return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set DATACONV_MAX_INPUT_SIZE to increase",
				len(p.Content), cfg.MaxInputSize)
		}
		lp.data = []byte(p.Content)
	}
	if p.Filename != "" {
		lp.filename = p.Filename
	}

	sum := blake3.Sum256(lp.data)
	lp.digest = hex.EncodeToString(sum[:])
	return &lp, nil
}

// cacheEntry holds a cached conversion with LRU ordering and TTL expiry.
type cacheEntry struct {
	output    convertOutput
	insertAt  time.Time
	expiresAt time.Time
}

// convertCacheStore provides a session-scoped cache for conversion results.
// Entries are keyed by the BLAKE3 digest of the payload plus the requested
// formats and filename extension. A background sweeper removes expired
// entries.
type convertCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var convertCache = &convertCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached output. Expired entries are lazily removed.
func (c *convertCacheStore) get(key string) (convertOutput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return convertOutput{}, false
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.output, true
	}
	return convertOutput{}, false
}

// putWithTTL stores an output with a specific TTL, evicting the oldest entry if at capacity.
func (c *convertCacheStore) putWithTTL(key string, output convertOutput, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{output: output, insertAt: now, expiresAt: now.Add(ttl)}

	// If already cached, just update.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	// Evict oldest if at capacity.
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *convertCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// It is safe to call multiple times; only the first call spawns a sweeper.
// It stops when ctx is cancelled.
func (c *convertCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *convertCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *convertCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for converting p from source to target.
// Only the filename extension takes part, since detection ignores the rest.
func makeCacheKey(p *loadedPayload, source, target string) string {
	ext := strings.ToLower(filepath.Ext(p.filename))
	return fmt.Sprintf("%s:%s:%s:%s",
		p.digest, strings.ToLower(strings.TrimSpace(source)), strings.ToLower(strings.TrimSpace(target)), ext)
}
