package segmenter

import (
	"regexp"
	"strings"
)

const unknownSpeaker = "Unknown"

// Segment is one speaker-attributed stretch of transcript text.
type Segment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Speaker-label prefixes recognized on a line: "Name: text", "[Name] text",
// and a line carrying only a capitalized name (body follows on later lines).
var (
	colonLabel   = regexp.MustCompile(`^([A-Z][\w.'-]*(?: [A-Z0-9][\w.'-]*){0,3}):\s*(.*)$`)
	bracketLabel = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)
	bareName     = regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+){0,3}$`)
)

// Split scans the transcript line by line and returns ordered speaker
// segments. It never fails: when no label pattern matches anywhere, the
// whole trimmed text comes back as a single segment for "Unknown".
func Split(text string) []Segment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var (
		out     []Segment
		speaker string
		buf     []string
		labeled bool
	)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		name := speaker
		if name == "" {
			name = unknownSpeaker
		}
		out = append(out, Segment{Speaker: name, Text: strings.Join(buf, " ")})
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := colonLabel.FindStringSubmatch(line); m != nil {
			flush()
			labeled = true
			speaker = strings.TrimSpace(m[1])
			if m[2] != "" {
				buf = append(buf, m[2])
			}
			continue
		}
		if m := bracketLabel.FindStringSubmatch(line); m != nil {
			flush()
			labeled = true
			speaker = strings.TrimSpace(m[1])
			if m[2] != "" {
				buf = append(buf, m[2])
			}
			continue
		}
		if bareName.MatchString(line) {
			flush()
			labeled = true
			speaker = line
			continue
		}

		buf = append(buf, line)
	}
	flush()

	if !labeled {
		return []Segment{{Speaker: unknownSpeaker, Text: trimmed}}
	}
	return out
}
