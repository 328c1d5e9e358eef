package builder

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(w, " ")
}

func TestChunker_Overlap(t *testing.T) {
	c := NewChunker(600, 120, 0.4)
	chunks := c.Chunk(words(1000))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 600 {
		t.Errorf("first chunk has %d words", len(first))
	}
	if first[480] != second[0] {
		t.Errorf("second chunk should start at word 480, got %s", second[0])
	}
	if second[len(second)-1] != "word999" {
		t.Errorf("last chunk should end at the final word, got %s", second[len(second)-1])
	}
}

func TestChunker_DropsShortTail(t *testing.T) {
	// Windows start at 0, 480, 960. The third window has 140 words, below 0.4*600.
	c := NewChunker(600, 120, 0.4)
	chunks := c.Chunk(words(1100))
	if len(chunks) != 2 {
		t.Fatalf("expected the short tail to be dropped, got %d chunks", len(chunks))
	}
	if got := len(strings.Fields(chunks[1])); got != 600 {
		t.Errorf("second chunk has %d words", got)
	}
}

func TestChunker_TailAtThresholdKept(t *testing.T) {
	c := NewChunker(600, 120, 0.4)
	if got := len(c.Chunk(words(1200))); got != 3 {
		t.Errorf("a 240-word tail meets the threshold, expected 3 chunks, got %d", got)
	}
}

func TestChunker_ShortFirstChunkKept(t *testing.T) {
	c := NewChunker(600, 120, 0.4)
	chunks := c.Chunk("  only\na   few\twords ")
	if len(chunks) != 1 || chunks[0] != "only a few words" {
		t.Errorf("got %q", chunks)
	}
}

func TestChunker_Small(t *testing.T) {
	c := NewChunker(3, 1, 0)
	got := c.Chunk("one two three four five six seven")
	want := []string{"one two three", "three four five", "five six seven"}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunker_OverlapNotSmallerThanSize(t *testing.T) {
	c := NewChunker(2, 5, 0)
	got := c.Chunk("a b c")
	if len(got) != 2 || got[0] != "a b" || got[1] != "b c" {
		t.Errorf("step should fall back to 1, got %q", got)
	}
}

func TestChunker_Empty(t *testing.T) {
	if chunks := NewChunker(5, 1, 0.4).Chunk("   \n\t  "); chunks != nil {
		t.Errorf("blank text should return nil, got %v", chunks)
	}
}
