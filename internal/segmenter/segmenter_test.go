package segmenter

import (
	"strings"
	"testing"
)

func TestSplitColonLabels(t *testing.T) {
	t.Parallel()

	text := "Alice: hello there\nBob: hi Alice\nAlice: how are you"
	segs := Split(text)

	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	if segs[0].Speaker != "Alice" || segs[0].Text != "hello there" {
		t.Fatalf("unexpected first segment: %+v", segs[0])
	}
	if segs[1].Speaker != "Bob" {
		t.Fatalf("unexpected second speaker: %s", segs[1].Speaker)
	}
}

func TestSplitBracketLabels(t *testing.T) {
	t.Parallel()

	segs := Split("[John Smith] the rollout went fine\n[Mary] glad to hear it")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Speaker != "John Smith" {
		t.Fatalf("unexpected speaker: %s", segs[0].Speaker)
	}
	if segs[1].Speaker != "Mary" || segs[1].Text != "glad to hear it" {
		t.Fatalf("unexpected segment: %+v", segs[1])
	}
}

func TestSplitBareNameLines(t *testing.T) {
	t.Parallel()

	text := "Alice Johnson\nso about the renewal\nwe want to move forward\nBob\nsounds good"
	segs := Split(text)

	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Speaker != "Alice Johnson" {
		t.Fatalf("unexpected speaker: %s", segs[0].Speaker)
	}
	if segs[0].Text != "so about the renewal we want to move forward" {
		t.Fatalf("multi-line turn not concatenated: %q", segs[0].Text)
	}
	if segs[1].Speaker != "Bob" || segs[1].Text != "sounds good" {
		t.Fatalf("unexpected segment: %+v", segs[1])
	}
}

func TestSplitNoLabelsFallsBackToUnknown(t *testing.T) {
	t.Parallel()

	text := "  just a blob of transcript text\nwith no speakers at all  "
	segs := Split(text)

	if len(segs) != 1 {
		t.Fatalf("expected exactly 1 segment, got %d", len(segs))
	}
	if segs[0].Speaker != "Unknown" {
		t.Fatalf("expected Unknown speaker, got %s", segs[0].Speaker)
	}
	if segs[0].Text != strings.TrimSpace(text) {
		t.Fatalf("expected full trimmed input, got %q", segs[0].Text)
	}
}

func TestSplitSkipsEmptyLinesAndJoinsTurns(t *testing.T) {
	t.Parallel()

	text := "Alice: first part\n\ncontinues here\n\n\nBob: reply"
	segs := Split(text)

	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Text != "first part continues here" {
		t.Fatalf("turn not joined with single space: %q", segs[0].Text)
	}
}

func TestSplitPreambleAttributedToUnknown(t *testing.T) {
	t.Parallel()

	segs := Split("recording starts mid sentence\nAlice: as I was saying")
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Speaker != "Unknown" {
		t.Fatalf("preamble speaker: %s", segs[0].Speaker)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	t.Parallel()

	if segs := Split("   \n  "); segs != nil {
		t.Fatalf("expected no segments for blank input, got %+v", segs)
	}
}
