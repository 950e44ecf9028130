package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/extractor"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/logger"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/roster"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/transcription"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// VendorAPI is the slice of the transcription vendor the sync needs.
type VendorAPI interface {
	ListMeetings(ctx context.Context) ([]transcription.ListItem, error)
	ListPhoneCalls(ctx context.Context) ([]transcription.ListItem, error)
	FetchTranscript(ctx context.Context, id string) (json.RawMessage, error)
}

// Store is the slice of the storage layer the sync needs.
type Store interface {
	ExistingVendorIDs(ctx context.Context, ids []string) (map[string]bool, error)
	UpsertTranscript(ctx context.Context, t types.Transcript) error
	ReplaceSegments(ctx context.Context, vendorID string, segs []types.FeedbackSegment) error
}

// ItemError records one item's failure without aborting the run.
type ItemError struct {
	VendorID string `json:"vendor_id"`
	Stage    string `json:"stage"`
	Message  string `json:"message"`
}

// Result is the always-reported outcome of one sync run. Item errors are
// counted, not thrown; only total vendor/store unavailability aborts a run.
type Result struct {
	RunID      string      `json:"run_id"`
	Discovered int         `json:"discovered"`
	Fetched    int         `json:"fetched"`
	Stored     int         `json:"stored"`
	Skipped    int         `json:"skipped"`
	Errors     []ItemError `json:"errors"`
	Elapsed    string      `json:"elapsed"`
}

// Orchestrator drives the batch sync: discover vendor inventory, drop what
// is already stored, fetch/normalize/upsert the rest, then extract feedback
// segments. Re-running is the retry strategy: persistence is
// upsert-by-vendor-id, so a second run over unchanged vendor data stores
// nothing new.
type Orchestrator struct {
	vendor     VendorAPI
	store      Store
	roster     roster.Roster
	tracker    *Tracker
	log        *logger.Logger
	batchSize  int
	fetchDelay time.Duration
	batchDelay time.Duration
}

func NewOrchestrator(vendor VendorAPI, store Store, ros roster.Roster, tracker *Tracker, cfg config.SyncConfig, log *logger.Logger) *Orchestrator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Orchestrator{
		vendor:     vendor,
		store:      store,
		roster:     ros,
		tracker:    tracker,
		log:        log.WithComponent("sync"),
		batchSize:  batchSize,
		fetchDelay: cfg.FetchDelay(),
		batchDelay: cfg.BatchDelay(),
	}
}

// Run executes one full sync. The returned error is non-nil only for total
// failures (vendor inventory or store unreachable); per-item problems land
// in Result.Errors.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	runID := uuid.New().String()
	start := time.Now()
	res := Result{RunID: runID}

	o.tracker.Start(runID)
	defer o.tracker.Finish(runID)

	log := o.log.WithField("run_id", runID)
	log.Info("sync started")

	// Discovering
	o.setStage(runID, StageDiscovering)
	items, err := o.discover(ctx)
	if err != nil {
		return res, fmt.Errorf("discover vendor inventory: %w", err)
	}
	res.Discovered = len(items)
	o.tracker.Update(runID, func(p *Progress) { p.Discovered = len(items) })
	o.tracker.Step(runID, fmt.Sprintf("discovered %d items", len(items)))

	// Deduplication
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	existing, err := o.store.ExistingVendorIDs(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("load existing ids: %w", err)
	}

	var fresh []transcription.ListItem
	for _, it := range items {
		if existing[it.ID] {
			res.Skipped++
			continue
		}
		fresh = append(fresh, it)
	}
	o.tracker.Update(runID, func(p *Progress) { p.Skipped = res.Skipped })
	o.tracker.Step(runID, fmt.Sprintf("%d already stored, %d new", res.Skipped, len(fresh)))
	log.WithField("discovered", res.Discovered).
		WithField("new", len(fresh)).Info("discovery complete")

	// Fetching + storing, then extracting, batch by batch
	var stored []types.Transcript
	for batchNo, batch := range chunkItems(fresh, o.batchSize) {
		if batchNo > 0 {
			if err := sleepCtx(ctx, o.batchDelay); err != nil {
				return res, err
			}
		}
		o.tracker.Update(runID, func(p *Progress) { p.CurrentBatch = batchNo + 1 })

		batchStored := o.fetchAndStore(ctx, runID, batch, &res)
		stored = append(stored, batchStored...)

		o.setStage(runID, StageExtracting)
		o.extract(ctx, runID, batchStored, &res)
	}

	res.Elapsed = time.Since(start).Round(time.Millisecond).String()
	log.WithField("stored", res.Stored).
		WithField("skipped", res.Skipped).
		WithField("errors", len(res.Errors)).
		Info("sync finished")
	return res, nil
}

func (o *Orchestrator) discover(ctx context.Context) ([]transcription.ListItem, error) {
	meetings, err := o.vendor.ListMeetings(ctx)
	if err != nil {
		return nil, err
	}
	calls, err := o.vendor.ListPhoneCalls(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var items []transcription.ListItem
	for _, it := range append(meetings, calls...) {
		if it.ID == "" || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		items = append(items, it)
	}
	return items, nil
}

func (o *Orchestrator) fetchAndStore(ctx context.Context, runID string, batch []transcription.ListItem, res *Result) []types.Transcript {
	var stored []types.Transcript
	for i, it := range batch {
		if i > 0 {
			if err := sleepCtx(ctx, o.fetchDelay); err != nil {
				return stored
			}
		}
		o.setStage(runID, StageFetching)

		raw, err := o.vendor.FetchTranscript(ctx, it.ID)
		if err != nil {
			o.recordError(runID, res, it.ID, "fetch", err)
			continue
		}
		res.Fetched++
		o.tracker.Update(runID, func(p *Progress) { p.Processed++ })

		text := transcription.Normalize(raw)
		if text == "" {
			res.Skipped++
			o.tracker.Update(runID, func(p *Progress) { p.Skipped++ })
			o.tracker.Step(runID, fmt.Sprintf("skipped %s: empty transcript", it.ID))
			continue
		}

		t := o.buildTranscript(it, text)

		o.setStage(runID, StageStoring)
		if err := o.store.UpsertTranscript(ctx, t); err != nil {
			o.recordError(runID, res, it.ID, "store", err)
			continue
		}
		res.Stored++
		o.tracker.Update(runID, func(p *Progress) { p.Stored++ })
		stored = append(stored, t)
	}
	return stored
}

func (o *Orchestrator) extract(ctx context.Context, runID string, batch []types.Transcript, res *Result) {
	for _, t := range batch {
		segs := extractor.Extract(t)
		if err := o.store.ReplaceSegments(ctx, t.VendorID, segs); err != nil {
			// Extraction failure never rolls back the stored transcript.
			o.recordError(runID, res, t.VendorID, "extract", err)
			continue
		}
	}
	o.tracker.Step(runID, fmt.Sprintf("extracted feedback for %d transcripts", len(batch)))
}

func (o *Orchestrator) buildTranscript(it transcription.ListItem, text string) types.Transcript {
	sellers := it.Sellers
	if len(sellers) == 0 {
		// Vendor metadata without attendees falls back to the seller roster.
		sellers = o.roster.Sellers
	}
	return types.Transcript{
		VendorID:       it.ID,
		Type:           it.Type,
		Title:          it.Title,
		AccountID:      it.AccountID,
		OccurredAt:     it.OccurredAt,
		DurationSec:    it.DurationSec,
		Text:           text,
		Sellers:        sellers,
		Customers:      it.Customers,
		AnalysisStatus: types.AnalysisPending,
	}
}

func (o *Orchestrator) recordError(runID string, res *Result, vendorID, stage string, err error) {
	res.Errors = append(res.Errors, ItemError{VendorID: vendorID, Stage: stage, Message: err.Error()})
	o.tracker.Update(runID, func(p *Progress) { p.Errors++ })
	o.tracker.Step(runID, fmt.Sprintf("%s failed for %s", stage, vendorID))
	o.log.WithField("vendor_id", vendorID).WithField("stage", stage).
		WithError(err).Warn("sync item failed")
}

func (o *Orchestrator) setStage(runID string, stage Stage) {
	o.tracker.Update(runID, func(p *Progress) { p.Stage = stage })
}

func chunkItems(items []transcription.ListItem, size int) [][]transcription.ListItem {
	var chunks [][]transcription.ListItem
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
