package sync

import (
	"sync"
	"time"
)

type Stage string

const (
	StageIdle        Stage = "idle"
	StageDiscovering Stage = "discovering"
	StageFetching    Stage = "fetching"
	StageStoring     Stage = "storing"
	StageExtracting  Stage = "extracting"
)

// Progress is the scratch telemetry of one in-flight sync run. It is not
// durable state and disappears on process restart.
type Progress struct {
	RunID        string    `json:"run_id"`
	Stage        Stage     `json:"stage"`
	Running      bool      `json:"running"`
	CurrentBatch int       `json:"current_batch"`
	Discovered   int       `json:"discovered"`
	Processed    int       `json:"processed"`
	Stored       int       `json:"stored"`
	Skipped      int       `json:"skipped"`
	Errors       int       `json:"errors"`
	RecentSteps  []string  `json:"recent_steps"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const maxRecentSteps = 20

// Tracker keeps run-scoped progress keyed by run id, so concurrent syncs
// cannot trample each other's counters. Finished entries are dropped after
// a fixed delay.
type Tracker struct {
	mu   sync.Mutex
	ttl  time.Duration
	runs map[string]*Progress
}

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{ttl: ttl, runs: map[string]*Progress{}}
}

// Start registers a new run and returns its progress handle id.
func (t *Tracker) Start(runID string) {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[runID] = &Progress{
		RunID:     runID,
		Stage:     StageIdle,
		Running:   true,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Update applies fn to the run's progress under the tracker lock.
func (t *Tracker) Update(runID string, fn func(*Progress)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.runs[runID]
	if !ok {
		return
	}
	fn(p)
	p.UpdatedAt = time.Now()
}

// Step appends one line to the run's rolling step log.
func (t *Tracker) Step(runID, msg string) {
	t.Update(runID, func(p *Progress) {
		p.RecentSteps = append(p.RecentSteps, msg)
		if len(p.RecentSteps) > maxRecentSteps {
			p.RecentSteps = p.RecentSteps[len(p.RecentSteps)-maxRecentSteps:]
		}
	})
}

// Finish marks the run as done and schedules its removal after the TTL.
func (t *Tracker) Finish(runID string) {
	t.Update(runID, func(p *Progress) {
		p.Running = false
		p.Stage = StageIdle
	})
	time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.runs, runID)
	})
}

// Latest returns a copy of the most recently started run's progress, or nil
// when no run is tracked.
func (t *Tracker) Latest() *Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	var latest *Progress
	for _, p := range t.runs {
		if latest == nil || p.StartedAt.After(latest.StartedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil
	}
	snapshot := *latest
	snapshot.RecentSteps = append([]string(nil), latest.RecentSteps...)
	return &snapshot
}
