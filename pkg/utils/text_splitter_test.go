package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		overlap    int
		wantChunks int
	}{
		{
			name:       "short text single chunk",
			text:       "hello world",
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "exact boundary",
			text:       strings.Repeat("a", 100),
			chunkSize:  100,
			overlap:    10,
			wantChunks: 1,
		},
		{
			name:       "two chunks with overlap",
			text:       strings.Repeat("a", 150),
			chunkSize:  100,
			overlap:    50,
			wantChunks: 2,
		},
		{
			name:       "overlap larger than chunk falls back",
			text:       strings.Repeat("a", 30),
			chunkSize:  10,
			overlap:    20,
			wantChunks: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for _, c := range chunks {
				if len([]rune(c)) > tt.chunkSize {
					t.Errorf("chunk exceeds size: %d > %d", len([]rune(c)), tt.chunkSize)
				}
			}
		})
	}
}

func TestSplitTextOverlapPreservesBoundary(t *testing.T) {
	text := strings.Repeat("x", 80) + strings.Repeat("y", 80)
	chunks := SplitText(text, 100, 20)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// The second chunk starts inside the previous one.
	if !strings.HasPrefix(chunks[1], "x") {
		t.Errorf("expected overlap from previous chunk, got prefix %q", chunks[1][:5])
	}
}

func TestSplitTextMultiByte(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 50)
	chunks := SplitText(text, 100, 10)

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
	}
	if !strings.Contains(rebuilt.String(), "héllo wörld") {
		t.Error("multi-byte characters were corrupted")
	}
}
