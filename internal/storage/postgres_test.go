package storage

import (
	"fmt"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

func TestChunkIDs(t *testing.T) {
	t.Parallel()

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}

	chunks := chunkIDs(ids, 100)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 100 || len(chunks[2]) != 50 {
		t.Fatalf("unexpected chunk sizes: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][49] != "id-249" {
		t.Fatalf("chunk ordering broken: %s", chunks[2][49])
	}

	if got := chunkIDs(nil, 100); got != nil {
		t.Fatalf("expected no chunks for empty input, got %v", got)
	}
}

func TestDedupeQueryUsesDollarPlaceholders(t *testing.T) {
	t.Parallel()

	sb := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := sb.Select("vendor_id").
		From("transcripts").
		Where(sq.Eq{"vendor_id": []string{"a", "b"}}).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql error: %v", err)
	}
	if !strings.Contains(query, "$1") || !strings.Contains(query, "$2") {
		t.Fatalf("expected dollar placeholders, got %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
}
