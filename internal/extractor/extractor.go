package extractor

import (
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/classifier"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/segmenter"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/speaker"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Extract runs the segment/classify/resolve pipeline over one transcript
// and returns the feedback-worthy segments. Non-feedback segments (too
// short, or no keyword matches) are dropped. Pure; never fails.
func Extract(t types.Transcript) []types.FeedbackSegment {
	var out []types.FeedbackSegment
	for _, sg := range segmenter.Split(t.Text) {
		res := classifier.Classify(sg.Text)
		if !res.IsFeedback {
			continue
		}
		out = append(out, types.FeedbackSegment{
			TranscriptVendorID: t.VendorID,
			Speaker:            sg.Speaker,
			SpeakerRole:        speaker.Resolve(sg.Speaker, t.Sellers, t.Customers),
			Text:               sg.Text,
			FeedbackType:       res.Type,
			Urgency:            res.Urgency,
			Sentiment:          res.Sentiment,
			Keywords:           res.Keywords,
		})
	}
	return out
}
