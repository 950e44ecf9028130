package transcription

import (
	"encoding/json"
	"fmt"
	"strings"
)

// corruptionMarker is the artifact left by an upstream stringification bug;
// it must never survive into stored transcript text.
const corruptionMarker = "[object Object]"

type payloadSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type payloadObject struct {
	Text       string           `json:"text"`
	Transcript string           `json:"transcript"`
	Segments   []payloadSegment `json:"segments"`
}

// Normalize collapses the vendor's transcript payload shapes into a single
// text blob. The shapes are tried exhaustively, in order:
//
//  1. plain JSON string
//  2. array of {speaker, text} segments, joined as "speaker: text" lines
//  3. object carrying text, transcript, or segments fields
//
// Anything else degrades to a best-effort string coercion of the raw bytes.
// Normalizing to empty text is not an error; callers skip such records.
func Normalize(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return clean(s)
	}

	var segs []payloadSegment
	if err := json.Unmarshal(raw, &segs); err == nil {
		return clean(joinSegments(segs))
	}

	var obj payloadObject
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case len(obj.Segments) > 0:
			return clean(joinSegments(obj.Segments))
		case obj.Text != "":
			return clean(obj.Text)
		case obj.Transcript != "":
			return clean(obj.Transcript)
		}
	}

	return clean(string(raw))
}

func joinSegments(segs []payloadSegment) string {
	lines := make([]string, 0, len(segs))
	for _, sg := range segs {
		text := strings.TrimSpace(strings.ReplaceAll(sg.Text, corruptionMarker, ""))
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(sg.Speaker)
		if speaker == "" {
			lines = append(lines, text)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
	}
	return strings.Join(lines, "\n")
}

func clean(s string) string {
	s = strings.ReplaceAll(s, corruptionMarker, "")
	return strings.TrimSpace(s)
}
