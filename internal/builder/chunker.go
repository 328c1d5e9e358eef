package builder

import (
	"strings"
)

// Chunker splits text into overlapping word windows.
type Chunker struct {
	chunkSize     int
	chunkOverlap  int
	minChunkRatio float64
}

// NewChunker creates a chunker with the given size and overlap (in words). A window after the
// first that holds fewer than minChunkRatio*chunkSize words is dropped and ends chunking.
func NewChunker(chunkSize, chunkOverlap int, minChunkRatio float64) *Chunker {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Chunker{
		chunkSize:     chunkSize,
		chunkOverlap:  chunkOverlap,
		minChunkRatio: minChunkRatio,
	}
}

// Chunk returns the windows of text joined by single spaces, or nil for blank text.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	minWords := float64(c.chunkSize) * c.minChunkRatio

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		if start != 0 && float64(len(window)) < minWords {
			break
		}
		chunks = append(chunks, strings.Join(window, " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
