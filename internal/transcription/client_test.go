package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/logger"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		config.VendorConfig{BaseURL: server.URL, APIKey: "test-key"},
		config.SyncConfig{PageSize: 2, MaxPages: 10},
		logger.New(),
	)
}

func TestListMeetingsPaginates(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/meetings" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("unexpected limit: %s", r.URL.Query().Get("limit"))
		}

		switch r.URL.Query().Get("page_token") {
		case "":
			fmt.Fprint(w, `{"items":[{"id":"m1"},{"id":"m2"}],"next_page_token":"p2"}`)
		case "p2":
			fmt.Fprint(w, `{"items":[{"id":"m3"}],"next_page_token":""}`)
		default:
			t.Errorf("unexpected page token")
			fmt.Fprint(w, `{"items":[]}`)
		}
	}))

	items, err := client.ListMeetings(context.Background())
	if err != nil {
		t.Fatalf("ListMeetings error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items across pages, got %d", len(items))
	}
	for _, it := range items {
		if it.Type != types.TranscriptMeeting {
			t.Fatalf("expected meeting type, got %s", it.Type)
		}
	}
}

func TestListStopsAtPageCeiling(t *testing.T) {
	t.Parallel()

	pages := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, `{"items":[{"id":"x"}],"next_page_token":"more"}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(
		config.VendorConfig{BaseURL: server.URL, APIKey: "k"},
		config.SyncConfig{PageSize: 1, MaxPages: 3},
		logger.New(),
	)

	if _, err := client.ListPhoneCalls(context.Background()); err != nil {
		t.Fatalf("ListPhoneCalls error: %v", err)
	}
	if pages != 3 {
		t.Fatalf("expected the page ceiling to stop at 3 requests, got %d", pages)
	}
}

func TestFetchTranscriptReturnsRawPayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/transcripts/abc" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[{"speaker":"Ana","text":"oi"}]`)
	}))

	raw, err := client.FetchTranscript(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FetchTranscript error: %v", err)
	}
	var segs []map[string]string
	if err := json.Unmarshal(raw, &segs); err != nil {
		t.Fatalf("payload not preserved: %v", err)
	}
	if len(segs) != 1 || segs[0]["speaker"] != "Ana" {
		t.Fatalf("unexpected payload: %s", raw)
	}
}

func TestFetchTranscriptClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusNotFound)
	}))

	if _, err := client.FetchTranscript(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}
