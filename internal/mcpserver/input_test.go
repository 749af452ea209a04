package mcpserver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestPayloadInput_LoadContent(t *testing.T) {
	p, err := payloadInput{Content: `{"a": 1}`, Filename: "x.json"}.load()
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a": 1}`), p.data)
	assert.Equal(t, "x.json", p.filename)
	assert.Len(t, p.digest, 64)
}

func TestPayloadInput_LoadFile(t *testing.T) {
	path := writeTemp(t, "data.yaml", []byte("a: 1\n"))
	p, err := payloadInput{File: path}.load()
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(p.data))
	assert.Equal(t, "data.yaml", p.filename)
}

func TestPayloadInput_LoadCompressedFile(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte("a = 1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeTemp(t, "conf.toml.zst", buf.Bytes())
	p, err := payloadInput{File: path}.load()
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n", string(p.data))
	assert.Equal(t, "conf.toml", p.filename)
}

func TestPayloadInput_FilenameOverridesFile(t *testing.T) {
	path := writeTemp(t, "data.txt", []byte("a: 1\n"))
	p, err := payloadInput{File: path, Filename: "data.yml"}.load()
	require.NoError(t, err)
	assert.Equal(t, "data.yml", p.filename)
}

func TestPayloadInput_LoadNoneProvided(t *testing.T) {
	_, err := payloadInput{}.load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of file or content must be provided (got 0)")
}

func TestPayloadInput_LoadBothProvided(t *testing.T) {
	_, err := payloadInput{File: "a.json", Content: "{}"}.load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(got 2)")
}

func TestPayloadInput_LoadFileNotFound(t *testing.T) {
	_, err := payloadInput{File: filepath.Join(t.TempDir(), "missing.json")}.load()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPayloadInput_ContentTooLarge(t *testing.T) {
	prev := cfg.MaxInputSize
	cfg.MaxInputSize = 4
	t.Cleanup(func() { cfg.MaxInputSize = prev })

	_, err := payloadInput{Content: `{"a": 1}`}.load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum 4 bytes")
}

func TestPayloadInput_DigestDependsOnContent(t *testing.T) {
	a, err := payloadInput{Content: "x"}.load()
	require.NoError(t, err)
	b, err := payloadInput{Content: "x"}.load()
	require.NoError(t, err)
	c, err := payloadInput{Content: "y"}.load()
	require.NoError(t, err)
	assert.Equal(t, a.digest, b.digest)
	assert.NotEqual(t, a.digest, c.digest)
}

func TestMakeCacheKey(t *testing.T) {
	p := &loadedPayload{digest: "abc", filename: "dir/Data.YML"}
	assert.Equal(t, "abc:auto:json:.yml", makeCacheKey(p, "AUTO", " json "))

	other := &loadedPayload{digest: "abc", filename: "other.yml"}
	assert.Equal(t, makeCacheKey(p, "auto", "json"), makeCacheKey(other, "auto", "json"))
	assert.NotEqual(t, makeCacheKey(p, "auto", "json"), makeCacheKey(p, "auto", "toml"))
}

func newTestCache(maxSize int) *convertCacheStore {
	return &convertCacheStore{entries: make(map[string]*cacheEntry), maxSize: maxSize}
}

func TestConvertCache_GetPut(t *testing.T) {
	c := newTestCache(4)
	_, ok := c.get("k")
	assert.False(t, ok)

	c.putWithTTL("k", convertOutput{Document: "x"}, time.Minute)
	got, ok := c.get("k")
	require.True(t, ok)
	assert.Equal(t, "x", got.Document)

	c.putWithTTL("k", convertOutput{Document: "y"}, time.Minute)
	got, _ = c.get("k")
	assert.Equal(t, "y", got.Document)
	assert.Equal(t, 1, c.size())
}

func TestConvertCache_Expiry(t *testing.T) {
	c := newTestCache(4)
	c.putWithTTL("k", convertOutput{}, time.Nanosecond)
	time.Sleep(time.Millisecond)
	_, ok := c.get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.size())
}

func TestConvertCache_EvictsOldest(t *testing.T) {
	c := newTestCache(2)
	c.putWithTTL("a", convertOutput{}, time.Minute)
	time.Sleep(time.Millisecond)
	c.putWithTTL("b", convertOutput{}, time.Minute)
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the least recently used.
	_, ok := c.get("a")
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	c.putWithTTL("c", convertOutput{}, time.Minute)
	assert.Equal(t, 2, c.size())
	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
}

func TestConvertCache_Sweep(t *testing.T) {
	c := newTestCache(4)
	c.putWithTTL("old", convertOutput{}, time.Nanosecond)
	c.putWithTTL("new", convertOutput{}, time.Hour)
	time.Sleep(time.Millisecond)
	c.sweep()
	assert.Equal(t, 1, c.size())
}

func TestConvertCache_Sweeper(t *testing.T) {
	c := newTestCache(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.startSweeper(ctx, 5*time.Millisecond)
	c.startSweeper(ctx, 5*time.Millisecond) // no second goroutine
	c.putWithTTL("k", convertOutput{}, time.Nanosecond)

	assert.Eventually(t, func() bool { return c.size() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return !c.sweeperStarted.Load() }, time.Second, 5*time.Millisecond)
}

func TestConvertCache_Reset(t *testing.T) {
	c := newTestCache(4)
	c.putWithTTL("k", convertOutput{}, time.Minute)
	c.reset()
	assert.Equal(t, 0, c.size())
}
