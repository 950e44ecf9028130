package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

func TestClassifyParsesLabelAndScore(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["text"] == "" {
			t.Error("missing text in request")
		}
		fmt.Fprint(w, `{"label":"NEGATIVE","score":0.92}`)
	}))
	t.Cleanup(server.Close)

	client := New(config.SentimentConfig{URL: server.URL})
	label, score, err := client.Classify(context.Background(), "this is terrible")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if label != types.SentimentNegative {
		t.Fatalf("expected negative, got %s", label)
	}
	if score != 0.92 {
		t.Fatalf("expected score 0.92, got %f", score)
	}
}

func TestClassifyUnknownLabelIsNeutral(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"label":"mixed","score":0.5}`)
	}))
	t.Cleanup(server.Close)

	client := New(config.SentimentConfig{URL: server.URL})
	label, _, err := client.Classify(context.Background(), "some text to classify")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if label != types.SentimentNeutral {
		t.Fatalf("expected neutral for unknown label, got %s", label)
	}
}

func TestClassifyClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := New(config.SentimentConfig{URL: server.URL})
	label, _, err := client.Classify(context.Background(), "whatever")
	if err == nil {
		t.Fatal("expected error for 400")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
	if label != types.SentimentNeutral {
		t.Fatalf("failed calls must report neutral, got %s", label)
	}
}

func TestClassifyUnconfiguredEndpoint(t *testing.T) {
	t.Parallel()

	client := New(config.SentimentConfig{})
	if _, _, err := client.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error when endpoint is not configured")
	}
}
