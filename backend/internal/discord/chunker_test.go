package discord

import (
	"strings"
	"testing"

	"warden/backend/internal/constants"
)

func TestChunkMessageShortContent(t *testing.T) {
	chunks := ChunkMessage("hello")
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("expected single chunk, got %v", chunks)
	}
}

func TestChunkMessageEmpty(t *testing.T) {
	if chunks := ChunkMessage(""); chunks != nil {
		t.Fatalf("expected no chunks for empty content, got %v", chunks)
	}
}

func TestChunkMessageExactLimit(t *testing.T) {
	content := strings.Repeat("a", constants.DiscordMaxMessageLength)
	chunks := ChunkMessage(content)
	if len(chunks) != 1 {
		t.Fatalf("content at the limit must stay one chunk, got %d", len(chunks))
	}
}

func TestChunkMessagePrefersNewlineInWindow(t *testing.T) {
	// Newline at position 1900 sits inside the 200-char scan window.
	content := strings.Repeat("a", 1900) + "\n" + strings.Repeat("b", 500)
	chunks := ChunkMessage(content)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n") {
		t.Error("first chunk should end at the newline")
	}
	if len(chunks[0]) != 1901 {
		t.Errorf("expected cut after the newline at 1901, got %d", len(chunks[0]))
	}
}

func TestChunkMessageFallsBackToSpace(t *testing.T) {
	// No newline anywhere; one space inside the scan window.
	content := strings.Repeat("a", 1950) + " " + strings.Repeat("b", 500)
	chunks := ChunkMessage(content)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 1951 {
		t.Errorf("expected cut after the space at 1951, got %d", len(chunks[0]))
	}
}

func TestChunkMessageHardCut(t *testing.T) {
	content := strings.Repeat("a", 4500)
	chunks := ChunkMessage(content)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != constants.DiscordMaxMessageLength || len(chunks[1]) != constants.DiscordMaxMessageLength {
		t.Errorf("full chunks should hit the limit exactly: %d, %d", len(chunks[0]), len(chunks[1]))
	}
	if len(chunks[2]) != 500 {
		t.Errorf("expected 500-char tail, got %d", len(chunks[2]))
	}
}

func TestChunkMessageIgnoresSeparatorOutsideWindow(t *testing.T) {
	// The only newline sits before the scan window; a hard cut follows.
	content := strings.Repeat("a", 1000) + "\n" + strings.Repeat("b", 2000)
	chunks := ChunkMessage(content)

	if len(chunks[0]) != constants.DiscordMaxMessageLength {
		t.Errorf("newline outside the window must not be used, cut at %d", len(chunks[0]))
	}
}

func TestChunkMessageJoinReconstructsInput(t *testing.T) {
	inputs := []string{
		strings.Repeat("line one\nline two\n", 400),
		strings.Repeat("lorem ipsum dolor sit amet ", 300),
		strings.Repeat("x", 6001),
		strings.Repeat("héllo wörld ", 400),
	}

	for _, content := range inputs {
		chunks := ChunkMessage(content)
		if joined := strings.Join(chunks, ""); joined != content {
			t.Errorf("joining chunks must reproduce the input (len %d, %d chunks)", len(content), len(chunks))
		}
		for i, c := range chunks {
			if len(c) > constants.DiscordMaxMessageLength {
				t.Errorf("chunk %d exceeds limit: %d", i, len(c))
			}
			if len(c) == 0 {
				t.Errorf("chunk %d is empty", i)
			}
		}
	}
}

func TestChunkMessageNeverSplitsRunes(t *testing.T) {
	content := strings.Repeat("é", 1500) // 3000 bytes, no spaces or newlines
	chunks := ChunkMessage(content)

	for i, c := range chunks {
		if !strings.HasPrefix(content, c) && i == 0 {
			t.Fatalf("chunk 0 is not a prefix of the input")
		}
		for _, r := range c {
			if r == '�' {
				t.Fatalf("chunk %d contains a broken rune", i)
			}
		}
	}
	if joined := strings.Join(chunks, ""); joined != content {
		t.Error("joining chunks must reproduce the input")
	}
}
