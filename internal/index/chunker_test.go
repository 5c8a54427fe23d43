package index

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("t%d", i)
	}
	return strings.Join(parts, " ")
}

func TestNewChunker_RejectsBadWindows(t *testing.T) {
	_, err := NewChunker(0, 0)
	require.Error(t, err)

	_, err = NewChunker(10, -1)
	require.Error(t, err)

	// overlap >= size would advance the window start by zero or less
	_, err = NewChunker(10, 10)
	require.Error(t, err)
	_, err = NewChunker(10, 20)
	require.Error(t, err)
}

func TestChunker_WindowStarts(t *testing.T) {
	c, err := NewChunker(400, 80)
	require.NoError(t, err)

	chunks := c.Chunk(tokens(1000))
	require.Len(t, chunks, 4)

	// starts at 0, 320, 640, 960; the last chunk is shorter
	assert.Equal(t, "t0", strings.Fields(chunks[0])[0])
	assert.Equal(t, "t320", strings.Fields(chunks[1])[0])
	assert.Equal(t, "t640", strings.Fields(chunks[2])[0])
	assert.Equal(t, "t960", strings.Fields(chunks[3])[0])
	assert.Len(t, strings.Fields(chunks[3]), 40)
	assert.Equal(t, "t999", strings.Fields(chunks[3])[39])
}

func TestChunker_OverlapAndCoverage(t *testing.T) {
	c, err := NewChunker(10, 3)
	require.NoError(t, err)

	chunks := c.Chunk(tokens(25))
	require.NotEmpty(t, chunks)

	covered := make(map[string]bool)
	for i, ch := range chunks {
		fields := strings.Fields(ch)
		for _, f := range fields {
			covered[f] = true
		}
		if i > 0 {
			prev := strings.Fields(chunks[i-1])
			overlap := prev[len(prev)-3:]
			assert.Equal(t, overlap, fields[:3], "chunk %d must reuse its predecessor's trailing tokens", i)
		}
	}
	for i := 0; i < 25; i++ {
		assert.True(t, covered[fmt.Sprintf("t%d", i)], "token %d not covered", i)
	}
}

func TestChunker_ShortAndEmptyInput(t *testing.T) {
	c, err := NewChunker(400, 80)
	require.NoError(t, err)

	assert.Nil(t, c.Chunk(""))
	assert.Nil(t, c.Chunk("   \n\t  "))

	chunks := c.Chunk("only three tokens")
	require.Len(t, chunks, 1)
	assert.Equal(t, "only three tokens", chunks[0])
}
