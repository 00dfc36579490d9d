package services

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkPagesLabelsAndOrder(t *testing.T) {
	pages := make([]string, 15)
	for i := range pages {
		pages[i] = fmt.Sprintf("page %d", i+1)
	}

	chunks := ChunkPages(pages, 10)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Pages != "1-10" {
		t.Fatalf("expected first chunk label 1-10, got %q", chunks[0].Pages)
	}
	if chunks[1].Pages != "11-15" {
		t.Fatalf("expected second chunk label 11-15, got %q", chunks[1].Pages)
	}

	// Joining every chunk back together must reproduce the document
	rebuilt := strings.Split(chunks[0].Text+"\n"+chunks[1].Text, "\n")
	if len(rebuilt) != 15 {
		t.Fatalf("expected 15 pages after rebuild, got %d", len(rebuilt))
	}
	for i, page := range rebuilt {
		if page != pages[i] {
			t.Fatalf("page %d out of order: got %q", i+1, page)
		}
	}
}

func TestChunkPagesExactMultiple(t *testing.T) {
	pages := []string{"a", "b", "c", "d"}
	chunks := ChunkPages(pages, 2)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].Pages != "3-4" {
		t.Fatalf("expected label 3-4, got %q", chunks[1].Pages)
	}
}

func TestChunkPagesSinglePage(t *testing.T) {
	chunks := ChunkPages([]string{"only"}, 10)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Pages != "1-1" {
		t.Fatalf("expected label 1-1, got %q", chunks[0].Pages)
	}
	if chunks[0].Text != "only" {
		t.Fatalf("unexpected chunk text %q", chunks[0].Text)
	}
}

func TestChunkPagesEmpty(t *testing.T) {
	if chunks := ChunkPages(nil, 10); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
	if chunks := ChunkPages([]string{"a"}, 0); chunks != nil {
		t.Fatalf("expected nil for zero chunk size, got %v", chunks)
	}
}
