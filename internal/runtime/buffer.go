package runtime

import (
	"bytes"
	"sync"
)

// LineBuffer is a fixed-size circular buffer of log lines. It implements
// io.Writer so a log handler can write into it directly.
type LineBuffer struct {
	mu      sync.RWMutex
	lines   []string
	size    int
	start   int
	count   int
	partial []byte
	updates chan struct{}
}

// NewLineBuffer creates a buffer holding at most size lines.
func NewLineBuffer(size int) *LineBuffer {
	if size < 1 {
		size = 1
	}
	return &LineBuffer{
		lines:   make([]string, size),
		size:    size,
		updates: make(chan struct{}, 1),
	}
}

// Write appends complete lines, overwriting the oldest when full. A trailing
// fragment without newline is kept until the rest of the line arrives.
func (b *LineBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n = len(p)
	data := p
	if len(b.partial) > 0 {
		data = append(b.partial, p...)
		b.partial = nil
	}

	added := false
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		b.push(string(bytes.TrimRight(data[:i], "\r")))
		data = data[i+1:]
		added = true
	}
	if len(data) > 0 {
		b.partial = append([]byte(nil), data...)
	}

	if added {
		select {
		case b.updates <- struct{}{}:
		default:
		}
	}
	return n, nil
}

func (b *LineBuffer) push(line string) {
	end := (b.start + b.count) % b.size
	b.lines[end] = line
	if b.count == b.size {
		b.start = (b.start + 1) % b.size
		return
	}
	b.count++
}

// Lines returns the buffered lines, oldest first.
func (b *LineBuffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]string, 0, b.count)
	for i := 0; i < b.count; i++ {
		result = append(result, b.lines[(b.start+i)%b.size])
	}
	return result
}

// Len returns the number of buffered lines.
func (b *LineBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Updates signals after new lines were written. Signals coalesce.
func (b *LineBuffer) Updates() <-chan struct{} {
	return b.updates
}

// Reset clears the buffer.
func (b *LineBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.start = 0
	b.count = 0
	b.partial = nil
}
