package codec

import (
	"bytes"
	"sync"
)

const (
	bufferInitialSize = 4096    // 4KB
	bufferMaxSize     = 1 << 20 // 1MB
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, bufferInitialSize))
	},
}

// getBuffer retrieves a buffer from the pool and resets it.
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool if not oversized.
func putBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > bufferMaxSize {
		return
	}
	bufferPool.Put(buf)
}
