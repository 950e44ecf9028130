package classifier

import (
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Result is the classification of one transcript segment.
type Result struct {
	IsFeedback bool               `json:"is_feedback"`
	Type       types.FeedbackType `json:"feedback_type"`
	Urgency    types.Urgency      `json:"urgency"`
	Sentiment  types.Sentiment    `json:"sentiment"`
	Keywords   []string           `json:"keywords"`
}

const minFeedbackWords = 5

// typeOrder fixes the tie-break: when two types match the same number of
// keywords, the one checked first wins.
var typeOrder = []types.FeedbackType{
	types.FeedbackPainPoint,
	types.FeedbackFeatureRequest,
	types.FeedbackPraise,
	types.FeedbackConcern,
}

var typeKeywords = map[types.FeedbackType][]string{
	types.FeedbackPainPoint: {
		"problem", "issue", "broken", "doesn't work", "not working", "error",
		"fails", "failed", "bug", "slow", "crash", "stuck", "can't", "cannot",
		"unable", "frustrat", "difficult", "confusing", "payment", "billing",
		"charge", "invoice",
	},
	types.FeedbackFeatureRequest: {
		"feature", "would be nice", "wish", "could you add", "add support",
		"integration", "improvement", "enhancement", "request", "suggest",
		"it would help", "missing",
	},
	types.FeedbackPraise: {
		"love", "great", "excellent", "amazing", "awesome", "fantastic",
		"helpful", "works great", "happy", "perfect", "impressed",
		"easy to use", "wonderful", "smooth", "thank you",
	},
	types.FeedbackConcern: {
		"worried", "concern", "hesitant", "not sure", "unsure", "risk",
		"cancel", "churn", "competitor", "losing money", "disappointed",
		"unhappy", "thinking about leaving",
	},
}

var criticalKeywords = []string{
	"urgent", "asap", "critical", "immediately", "emergency", "losing money",
	"deal breaker", "escalate", "right now",
}

var highKeywords = []string{
	"as soon as possible", "important", "blocker", "blocking", "serious",
	"major issue", "frustrated", "priority", "this week",
}

// Classify decides whether a segment is feedback-worthy and, if so, its
// type, urgency, sentiment and matched keywords. Pure and deterministic;
// the only order sensitivity is the documented typeOrder tie-break.
func Classify(text string) Result {
	if len(strings.Fields(text)) < minFeedbackWords {
		return notFeedback()
	}

	lower := strings.ToLower(text)

	var (
		winner   = types.FeedbackQuestion
		bestHits int
		matched  []string
		seen     = map[string]bool{}
		hits     = map[types.FeedbackType]int{}
	)
	for _, ft := range typeOrder {
		count := 0
		for _, kw := range typeKeywords[ft] {
			if !strings.Contains(lower, kw) {
				continue
			}
			count++
			if !seen[kw] {
				seen[kw] = true
				matched = append(matched, kw)
			}
		}
		hits[ft] = count
		if count > bestHits {
			bestHits = count
			winner = ft
		}
	}
	if bestHits == 0 {
		return notFeedback()
	}

	urgency := types.UrgencyMedium
	switch {
	case containsAny(lower, criticalKeywords):
		urgency = types.UrgencyCritical
	case containsAny(lower, highKeywords):
		urgency = types.UrgencyHigh
	case winner == types.FeedbackPraise:
		urgency = types.UrgencyLow
	}

	positive := hits[types.FeedbackPraise]
	negative := hits[types.FeedbackPainPoint] + hits[types.FeedbackConcern]
	sentiment := types.SentimentNeutral
	if positive > negative+1 {
		sentiment = types.SentimentPositive
	} else if negative > positive+1 {
		sentiment = types.SentimentNegative
	}

	return Result{
		IsFeedback: true,
		Type:       winner,
		Urgency:    urgency,
		Sentiment:  sentiment,
		Keywords:   matched,
	}
}

func notFeedback() Result {
	return Result{
		IsFeedback: false,
		Type:       types.FeedbackQuestion,
		Urgency:    types.UrgencyLow,
		Sentiment:  types.SentimentNeutral,
	}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
