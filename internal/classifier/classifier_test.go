package classifier

import (
	"testing"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

func TestClassifyPainPointCritical(t *testing.T) {
	t.Parallel()

	res := Classify("The payment processing is broken and this is urgent, we are losing money")

	if !res.IsFeedback {
		t.Fatal("expected feedback")
	}
	if res.Type != types.FeedbackPainPoint {
		t.Fatalf("expected pain_point, got %s", res.Type)
	}
	if res.Urgency != types.UrgencyCritical {
		t.Fatalf("expected critical urgency, got %s", res.Urgency)
	}
	if res.Sentiment != types.SentimentNegative {
		t.Fatalf("expected negative sentiment, got %s", res.Sentiment)
	}
}

func TestClassifyPraise(t *testing.T) {
	t.Parallel()

	res := Classify("We love the new dashboard, it works great and is very helpful")

	if res.Type != types.FeedbackPraise {
		t.Fatalf("expected praise, got %s", res.Type)
	}
	if res.Urgency != types.UrgencyLow {
		t.Fatalf("expected low urgency, got %s", res.Urgency)
	}
	if res.Sentiment != types.SentimentPositive {
		t.Fatalf("expected positive sentiment, got %s", res.Sentiment)
	}
}

func TestClassifyShortSegmentsAreNotFeedback(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "ok", "this is broken", "love it so much"} {
		if res := Classify(text); res.IsFeedback {
			t.Fatalf("expected %q to be rejected as too short", text)
		}
	}
}

func TestClassifyNoMatchesDefaultsToQuestion(t *testing.T) {
	t.Parallel()

	res := Classify("when does the quarterly report usually arrive for us")
	if res.IsFeedback {
		t.Fatal("expected non-feedback")
	}
	if res.Type != types.FeedbackQuestion {
		t.Fatalf("expected question, got %s", res.Type)
	}
}

func TestClassifyTieKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	// One pain_point hit ("error") and one feature_request hit
	// ("integration"): pain_point is checked first and must win the tie.
	res := Classify("we hit an error with the integration yesterday afternoon")
	if res.Type != types.FeedbackPainPoint {
		t.Fatalf("tie-break broken: got %s", res.Type)
	}
	if res.Sentiment != types.SentimentNeutral {
		t.Fatalf("one negative hit must stay neutral, got %s", res.Sentiment)
	}
	if res.Urgency != types.UrgencyMedium {
		t.Fatalf("expected medium urgency, got %s", res.Urgency)
	}
}

func TestClassifyKeywordsAreDeduplicatedUnion(t *testing.T) {
	t.Parallel()

	res := Classify("the billing issue is a real problem and we are worried about the billing")

	seen := map[string]int{}
	for _, kw := range res.Keywords {
		seen[kw]++
		if seen[kw] > 1 {
			t.Fatalf("keyword %q duplicated", kw)
		}
	}
	for _, want := range []string{"billing", "problem", "worried", "issue"} {
		if seen[want] == 0 {
			t.Fatalf("expected keyword %q in union, got %v", want, res.Keywords)
		}
	}
}
