package churn

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/logger"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Store is the slice of the storage layer the bulk analysis needs.
type Store interface {
	TranscriptsByAccount(ctx context.Context, accountID string) ([]types.Transcript, error)
	MarkAnalysis(ctx context.Context, vendorID string, status types.AnalysisStatus, label types.Sentiment, score float64, payload json.RawMessage) error
}

// SentimentClient classifies one text; treated as unreliable.
type SentimentClient interface {
	Classify(ctx context.Context, text string) (types.Sentiment, float64, error)
}

// AccountAnalysis is the per-account outcome of a bulk analysis request.
type AccountAnalysis struct {
	AccountID string               `json:"account_id"`
	Aggregate types.ChurnAggregate `json:"aggregate"`
	Error     string               `json:"error,omitempty"`
}

// Service computes account churn aggregates on demand, calling the hosted
// sentiment endpoint for transcripts that have not been analyzed yet.
type Service struct {
	store     Store
	sentiment SentimentClient
	log       *logger.Logger
	workers   int
}

func NewService(store Store, sentiment SentimentClient, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		sentiment: sentiment,
		log:       log.WithComponent("churn"),
		workers:   4,
	}
}

// AnalyzeAccounts produces a churn aggregate per requested account. Account
// failures are reported inline; the call itself only fails on an empty
// request.
func (s *Service) AnalyzeAccounts(ctx context.Context, accountIDs []string) ([]AccountAnalysis, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("no account ids provided")
	}

	out := make([]AccountAnalysis, 0, len(accountIDs))
	for _, id := range accountIDs {
		analysis := AccountAnalysis{AccountID: id}
		agg, err := s.analyzeAccount(ctx, id)
		if err != nil {
			analysis.Error = err.Error()
			analysis.Aggregate = types.ChurnAggregate{AccountID: id, ChurnRisk: types.ChurnLow}
			s.log.WithField("account_id", id).WithError(err).Warn("account analysis failed")
		} else {
			analysis.Aggregate = agg
		}
		out = append(out, analysis)
	}
	return out, nil
}

func (s *Service) analyzeAccount(ctx context.Context, accountID string) (types.ChurnAggregate, error) {
	transcripts, err := s.store.TranscriptsByAccount(ctx, accountID)
	if err != nil {
		return types.ChurnAggregate{}, fmt.Errorf("load transcripts: %w", err)
	}

	items := make([]Item, len(transcripts))

	// Fan out across the batch: each transcript writes a distinct row keyed
	// by its vendor id, so there is no shared mutable state between workers.
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i := range transcripts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			items[i] = s.analyzeTranscript(ctx, transcripts[i])
		}(i)
	}
	wg.Wait()

	agg := Aggregate(items)
	agg.AccountID = accountID
	agg.TranscriptCount = len(transcripts)
	return agg, nil
}

func (s *Service) analyzeTranscript(ctx context.Context, t types.Transcript) Item {
	if t.AnalysisStatus == types.AnalysisFinished && t.SentimentLabel != "" {
		return Item{Label: t.SentimentLabel, Confidence: t.SentimentScore}
	}

	label, score, err := s.sentiment.Classify(ctx, t.Text)
	if err != nil {
		// The inference endpoint is unreliable by contract: default to
		// neutral rather than failing the account. The error status keeps
		// the transcript eligible for re-analysis on the next request.
		s.log.WithField("vendor_id", t.VendorID).WithError(err).
			Debug("sentiment inference failed, defaulting to neutral")
		if err := s.store.MarkAnalysis(ctx, t.VendorID, types.AnalysisError, types.SentimentNeutral, 0, nil); err != nil {
			s.log.WithField("vendor_id", t.VendorID).WithError(err).Warn("record analysis failure")
		}
		return Item{Label: types.SentimentNeutral}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"label": label,
		"score": score,
	})
	if err := s.store.MarkAnalysis(ctx, t.VendorID, types.AnalysisFinished, label, score, payload); err != nil {
		s.log.WithField("vendor_id", t.VendorID).WithError(err).Warn("cache analysis failed")
	}

	return Item{Label: label, Confidence: score}
}
