package runtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineBufferWrap(t *testing.T) {
	b := NewLineBuffer(3)
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(b, "line %d\n", i)
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"line 3", "line 4", "line 5"}, b.Lines())
}

func TestLineBufferPartialLines(t *testing.T) {
	b := NewLineBuffer(4)

	n, err := b.Write([]byte("hel"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Updates())

	_, _ = b.Write([]byte("lo\r\nwor"))
	_, _ = b.Write([]byte("ld\n"))

	assert.Equal(t, []string{"hello", "world"}, b.Lines())
}

func TestLineBufferUpdatesCoalesce(t *testing.T) {
	b := NewLineBuffer(10)
	_, _ = b.Write([]byte("a\n"))
	_, _ = b.Write([]byte("b\n"))

	assert.Len(t, b.Updates(), 1)
	<-b.Updates()
	assert.Empty(t, b.Updates())
}

func TestLineBufferReset(t *testing.T) {
	b := NewLineBuffer(2)
	_, _ = b.Write([]byte("a\nb\nrest"))
	b.Reset()

	assert.Zero(t, b.Len())
	_, _ = b.Write([]byte("c\n"))
	assert.Equal(t, []string{"c"}, b.Lines())
}
