package types

import (
	"encoding/json"
	"time"
)

type TranscriptType string

const (
	TranscriptMeeting   TranscriptType = "meeting"
	TranscriptPhoneCall TranscriptType = "phone_call"
)

type AnalysisStatus string

const (
	AnalysisPending  AnalysisStatus = "pending"
	AnalysisFinished AnalysisStatus = "finished"
	AnalysisError    AnalysisStatus = "error"
)

type FeedbackType string

const (
	FeedbackPainPoint      FeedbackType = "pain_point"
	FeedbackFeatureRequest FeedbackType = "feature_request"
	FeedbackPraise         FeedbackType = "praise"
	FeedbackConcern        FeedbackType = "concern"
	FeedbackQuestion       FeedbackType = "question"
)

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type SpeakerRole string

const (
	RoleSeller   SpeakerRole = "seller"
	RoleCustomer SpeakerRole = "customer"
	RoleUnknown  SpeakerRole = "unknown"
)

type ChurnRisk string

const (
	ChurnCritical ChurnRisk = "critical"
	ChurnHigh     ChurnRisk = "high"
	ChurnMedium   ChurnRisk = "medium"
	ChurnLow      ChurnRisk = "low"
)

// Attendee is one participant of a call or meeting, as reported by vendor
// metadata or by the seller roster.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Transcript is the persisted record of one vendor call/meeting. VendorID is
// the natural key; writes are upsert-by-vendor-id so a re-sync is idempotent.
type Transcript struct {
	VendorID       string          `json:"vendor_id"`
	Type           TranscriptType  `json:"type"`
	Title          string          `json:"title"`
	AccountID      string          `json:"account_id"`
	OccurredAt     time.Time       `json:"occurred_at"`
	DurationSec    int             `json:"duration_seconds"`
	Text           string          `json:"text"`
	Sellers        []Attendee      `json:"sellers,omitempty"`
	Customers      []Attendee      `json:"customers,omitempty"`
	AnalysisStatus AnalysisStatus  `json:"analysis_status"`
	Analysis       json.RawMessage `json:"analysis,omitempty"`
	SentimentLabel Sentiment       `json:"sentiment_label,omitempty"`
	SentimentScore float64         `json:"sentiment_score,omitempty"`
}

// FeedbackSegment is one classified excerpt extracted from a transcript.
type FeedbackSegment struct {
	TranscriptVendorID string       `json:"transcript_vendor_id"`
	Speaker            string       `json:"speaker"`
	SpeakerRole        SpeakerRole  `json:"speaker_role"`
	Text               string       `json:"text"`
	FeedbackType       FeedbackType `json:"feedback_type"`
	Urgency            Urgency      `json:"urgency"`
	Sentiment          Sentiment    `json:"sentiment"`
	Keywords           []string     `json:"keywords"`
}

type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// ChurnAggregate is the per-account rollup, recomputed on demand from the
// account's analyzed transcripts.
type ChurnAggregate struct {
	AccountID        string                `json:"account_id"`
	TranscriptCount  int                   `json:"transcript_count"`
	AnalyzedCount    int                   `json:"analyzed_count"`
	AverageSentiment float64               `json:"average_sentiment"`
	ChurnRisk        ChurnRisk             `json:"churn_risk"`
	Distribution     SentimentDistribution `json:"sentiment_distribution"`
}
