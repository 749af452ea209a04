// Package input loads payloads for the command line and MCP front ends.
//
// Files and streams compressed with gzip, zstd, or xz are decompressed
// transparently. The compression is recognized by magic bytes, so a
// misnamed file still decodes. The compression suffix is removed from the
// filename so the remaining extension can drive format detection
// ("data.yaml.gz" → "data.yaml").
package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies a compression container.
type Compression string

const (
	None Compression = ""
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
	XZ   Compression = "xz"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

var suffixes = map[string]Compression{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".xz":   XZ,
}

// ErrTooLarge is returned when a payload exceeds the configured limit.
var ErrTooLarge = errors.New("input exceeds size limit")

// Payload is a loaded, decompressed input.
type Payload struct {
	// Data is the decompressed content.
	Data []byte
	// Filename is the format hint, with any compression suffix removed.
	Filename string
	// Compression is the container the data was read from.
	Compression Compression
	// RawSize is the number of bytes read before decompression.
	RawSize int64
}

// Sniff returns the compression whose magic bytes prefix head.
func Sniff(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, xzMagic):
		return XZ
	}
	return None
}

// TrimSuffix removes a known compression suffix from name.
func TrimSuffix(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := suffixes[ext]; ok {
		return name[:len(name)-len(ext)]
	}
	return name
}

// ReadFile loads path. A limit of 0 means unlimited; it applies to the
// decompressed size.
func ReadFile(path string, limit int64) (*Payload, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Read(f, filepath.Base(path), limit)
}

// Read loads r, using name as the filename hint.
func Read(r io.Reader, name string, limit int64) (*Payload, error) {
	counter := &countingReader{r: r}
	br := bufio.NewReader(counter)
	head, _ := br.Peek(len(xzMagic))

	c := Sniff(head)
	dr, closeFn, err := decompressor(br, c)
	if err != nil {
		return nil, fmt.Errorf("input: opening %s stream: %w", c, err)
	}
	defer closeFn()

	data, err := readLimited(dr, limit)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		if c != None {
			return nil, fmt.Errorf("input: decompressing %s: %w", c, err)
		}
		return nil, fmt.Errorf("input: %w", err)
	}

	hint := name
	if c != None {
		hint = TrimSuffix(name)
	}
	return &Payload{Data: data, Filename: hint, Compression: c, RawSize: counter.n}, nil
}

func decompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() {}, nil
	}
	return r, func() {}, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
