package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// idChunkSize bounds the number of ids per dedupe query to stay under the
// backend's query-parameter limits.
const idChunkSize = 100

// Postgres persists transcripts and extracted feedback segments.
type Postgres struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func New(db *sql.DB) *Postgres {
	return &Postgres{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the tables on a fresh database.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			vendor_id        TEXT PRIMARY KEY,
			type             TEXT NOT NULL,
			title            TEXT NOT NULL DEFAULT '',
			account_id       TEXT NOT NULL DEFAULT '',
			occurred_at      TIMESTAMPTZ,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			text             TEXT NOT NULL,
			sellers          JSONB NOT NULL DEFAULT '[]',
			customers        JSONB NOT NULL DEFAULT '[]',
			analysis_status  TEXT NOT NULL DEFAULT 'pending',
			analysis         JSONB,
			sentiment_label  TEXT NOT NULL DEFAULT '',
			sentiment_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transcripts_account ON transcripts (account_id)`,
		`CREATE TABLE IF NOT EXISTS feedback_segments (
			id                   BIGSERIAL PRIMARY KEY,
			transcript_vendor_id TEXT NOT NULL REFERENCES transcripts (vendor_id) ON DELETE CASCADE,
			speaker              TEXT NOT NULL,
			speaker_role         TEXT NOT NULL,
			text                 TEXT NOT NULL,
			feedback_type        TEXT NOT NULL,
			urgency              TEXT NOT NULL,
			sentiment            TEXT NOT NULL,
			keywords             TEXT[] NOT NULL DEFAULT '{}',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_transcript ON feedback_segments (transcript_vendor_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertTranscript writes a transcript keyed by its vendor id. Conflicting
// writes update the mutable columns, which makes re-running a sync safe.
func (p *Postgres) UpsertTranscript(ctx context.Context, t types.Transcript) error {
	sellers, err := json.Marshal(attendeesOrEmpty(t.Sellers))
	if err != nil {
		return fmt.Errorf("marshal sellers: %w", err)
	}
	customers, err := json.Marshal(attendeesOrEmpty(t.Customers))
	if err != nil {
		return fmt.Errorf("marshal customers: %w", err)
	}

	status := t.AnalysisStatus
	if status == "" {
		status = types.AnalysisPending
	}

	query, args, err := p.sb.Insert("transcripts").
		Columns("vendor_id", "type", "title", "account_id", "occurred_at",
			"duration_seconds", "text", "sellers", "customers", "analysis_status").
		Values(t.VendorID, t.Type, t.Title, t.AccountID, t.OccurredAt,
			t.DurationSec, t.Text, sellers, customers, status).
		Suffix(`ON CONFLICT (vendor_id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			account_id = EXCLUDED.account_id,
			occurred_at = EXCLUDED.occurred_at,
			duration_seconds = EXCLUDED.duration_seconds,
			text = EXCLUDED.text,
			sellers = EXCLUDED.sellers,
			customers = EXCLUDED.customers,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert transcript %s: %w", t.VendorID, err)
	}
	return nil
}

// ExistingVendorIDs reports which of the given vendor ids are already
// stored, querying in bounded chunks.
func (p *Postgres) ExistingVendorIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	for _, chunk := range chunkIDs(ids, idChunkSize) {
		query, args, err := p.sb.Select("vendor_id").
			From("transcripts").
			Where(sq.Eq{"vendor_id": chunk}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build dedupe query: %w", err)
		}

		rows, err := p.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query existing ids: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan vendor id: %w", err)
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("iterate existing ids: %w", err)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("close rows: %w", err)
		}
	}
	return existing, nil
}

// ReplaceSegments swaps a transcript's feedback segments: segments are
// immutable after extraction unless extraction is forced to re-run, in which
// case the old set is dropped first.
func (p *Postgres) ReplaceSegments(ctx context.Context, vendorID string, segs []types.FeedbackSegment) error {
	delQuery, delArgs, err := p.sb.Delete("feedback_segments").
		Where(sq.Eq{"transcript_vendor_id": vendorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build segment delete: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("delete segments %s: %w", vendorID, err)
	}
	if len(segs) == 0 {
		return nil
	}

	ins := p.sb.Insert("feedback_segments").
		Columns("transcript_vendor_id", "speaker", "speaker_role", "text",
			"feedback_type", "urgency", "sentiment", "keywords")
	for _, sg := range segs {
		ins = ins.Values(vendorID, sg.Speaker, sg.SpeakerRole, sg.Text,
			sg.FeedbackType, sg.Urgency, sg.Sentiment, pq.Array(sg.Keywords))
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build segment insert: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert segments %s: %w", vendorID, err)
	}
	return nil
}

// TranscriptsByAccount loads every transcript belonging to one account.
func (p *Postgres) TranscriptsByAccount(ctx context.Context, accountID string) ([]types.Transcript, error) {
	query, args, err := p.sb.Select("vendor_id", "type", "title", "account_id",
		"occurred_at", "duration_seconds", "text", "sellers", "customers",
		"analysis_status", "sentiment_label", "sentiment_score").
		From("transcripts").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("occurred_at DESC NULLS LAST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build account query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query account %s: %w", accountID, err)
	}
	defer rows.Close()

	var out []types.Transcript
	for rows.Next() {
		var (
			t          types.Transcript
			occurredAt sql.NullTime
			sellers    []byte
			customers  []byte
		)
		if err := rows.Scan(&t.VendorID, &t.Type, &t.Title, &t.AccountID,
			&occurredAt, &t.DurationSec, &t.Text, &sellers, &customers,
			&t.AnalysisStatus, &t.SentimentLabel, &t.SentimentScore); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		if occurredAt.Valid {
			t.OccurredAt = occurredAt.Time
		}
		if err := json.Unmarshal(sellers, &t.Sellers); err != nil {
			return nil, fmt.Errorf("decode sellers %s: %w", t.VendorID, err)
		}
		if err := json.Unmarshal(customers, &t.Customers); err != nil {
			return nil, fmt.Errorf("decode customers %s: %w", t.VendorID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return out, nil
}

// MarkAnalysis caches one transcript's analysis verdict and status.
func (p *Postgres) MarkAnalysis(ctx context.Context, vendorID string, status types.AnalysisStatus, label types.Sentiment, score float64, payload json.RawMessage) error {
	update := p.sb.Update("transcripts").
		Set("analysis_status", status).
		Set("sentiment_label", label).
		Set("sentiment_score", score).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"vendor_id": vendorID})
	if len(payload) > 0 {
		update = update.Set("analysis", []byte(payload))
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build analysis update: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark analysis %s: %w", vendorID, err)
	}
	return nil
}

func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = idChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func attendeesOrEmpty(in []types.Attendee) []types.Attendee {
	if in == nil {
		return []types.Attendee{}
	}
	return in
}
