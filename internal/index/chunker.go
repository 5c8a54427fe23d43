package index

import (
	"fmt"
	"strings"
)

// Chunker splits plain text into fixed-size token windows with overlap.
// Tokens are whitespace-separated words. Each chunk after the first
// reuses its predecessor's trailing overlap tokens, so the union of
// chunks covers every token position.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the window parameters. The window start advances
// by size-overlap per step, so overlap must stay below size or the loop
// would never terminate.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than size (%d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk returns the token windows of text in order. Empty or
// whitespace-only text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}
	var chunks []string
	step := c.size - c.overlap
	for i := 0; i < len(tokens); i += step {
		end := i + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
	}
	return chunks
}
