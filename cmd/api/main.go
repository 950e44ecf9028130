package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/churn"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/logger"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/roster"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/sentiment"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/storage"
	syncpkg "github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/sync"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/transcription"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "feedback-insights").Info("starting service")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("cannot reach database")
	}
	store := storage.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("schema bootstrap failed")
	}

	var ros roster.Roster
	if cfg.Roster.Path != "" {
		ros, err = roster.Load(cfg.Roster.Path)
		if err != nil {
			log.WithError(err).WithField("path", cfg.Roster.Path).
				Warn("roster unavailable, speaker resolution degrades to unknown")
		} else {
			log.WithField("sellers", len(ros.Sellers)).Info("seller roster loaded")
		}
	}

	vendor := transcription.NewClient(cfg.Vendor, cfg.Sync, log)
	tracker := syncpkg.NewTracker(cfg.Sync.ProgressTTL())
	orchestrator := syncpkg.NewOrchestrator(vendor, store, ros, tracker, cfg.Sync, log)
	analysis := churn.NewService(store, sentiment.New(cfg.Sentiment), log)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "sync")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reqLog.Info("sync requested")

		res, err := orchestrator.Run(r.Context())
		if err != nil {
			// Total vendor/store failure; partial failures come back as 200.
			reqLog.WithError(err).Error("sync aborted")
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
				"details": res,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"summary": map[string]int{
				"fetched": res.Fetched,
				"stored":  res.Stored,
				"skipped": res.Skipped,
				"errors":  len(res.Errors),
			},
			"details": res,
		})
	})

	mux.HandleFunc("/api/sync/progress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tracker.Latest())
	})

	mux.HandleFunc("/api/accounts/analyze", func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithRequest(r).WithField("handler", "analyze")
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			AccountIDs []string `json:"account_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		results, err := analysis.AnalyzeAccounts(r.Context(), req.AccountIDs)
		if err != nil {
			reqLog.WithError(err).Warn("bulk analysis rejected")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reqLog.WithField("accounts", len(results)).Info("bulk analysis done")

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"accounts": results,
		})
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Syncs over a few thousand vendor items run for minutes; the write
		// timeout has to outlive a whole run.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
