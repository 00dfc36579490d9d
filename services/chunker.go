package services

import (
	"fmt"
	"strings"
)

// Chunk is a bounded group of consecutive PDF pages processed together
// in one model call, labeled with its 1-based inclusive page range.
type Chunk struct {
	Pages string // e.g. "1-10"
	Text  string
}

// ChunkPages splits the ordered page texts into groups of up to size
// consecutive pages, newline-joined. Page order is preserved and no
// page is ever split across chunks.
func ChunkPages(pages []string, size int) []Chunk {
	if size <= 0 || len(pages) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, (len(pages)+size-1)/size)
	for i := 0; i < len(pages); i += size {
		end := min(i+size, len(pages))
		chunks = append(chunks, Chunk{
			Pages: fmt.Sprintf("%d-%d", i+1, end),
			Text:  strings.Join(pages[i:end], "\n"),
		})
	}

	return chunks
}
