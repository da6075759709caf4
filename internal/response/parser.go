// Package response turns the model's free-text reply into a message and a
// structured metadata payload. Parsing never fails: when the payload cannot
// be decoded the whole reply is passed through as the message.
package response

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const fence = "```"

var openRe = regexp.MustCompile("(?i)```json")

// Parsed is the outcome of parsing one reply.
type Parsed struct {
	Message  string
	Metadata Metadata
	// Structured is false when no block was found or it failed to decode.
	Structured bool
}

// Parse extracts the first ```json fenced block from raw. The block is
// removed from the message and its keys are decoded independently over
// the defaults; a key with the wrong shape keeps its default. If there is
// no block, or the block is not a JSON object, the trimmed raw text is the
// message and the metadata is all defaults.
//
// A closing fence inside a JSON string does not end the block: each
// following fence is tried until the content decodes as an object.
func Parse(raw string) Parsed {
	fallback := Parsed{Message: strings.TrimSpace(raw), Metadata: DefaultMetadata()}

	open := openRe.FindStringIndex(raw)
	if open == nil {
		return fallback
	}

	for off := open[1]; ; {
		i := strings.Index(raw[off:], fence)
		if i < 0 {
			return fallback
		}
		end := off + i

		var fields map[string]json.RawMessage
		body := strings.TrimSpace(raw[open[1]:end])
		if err := json.Unmarshal([]byte(body), &fields); err == nil && fields != nil {
			return Parsed{
				Message:    strings.TrimSpace(raw[:open[0]] + raw[end+len(fence):]),
				Metadata:   decodeMetadata(fields),
				Structured: true,
			}
		}
		off = end + len(fence)
	}
}

func decodeMetadata(fields map[string]json.RawMessage) Metadata {
	md := DefaultMetadata()

	if v, ok := fields["next_questions"]; ok {
		md.NextQuestions = decodeStrings(v)
	}
	if v, ok := fields["missing_fields"]; ok {
		md.MissingFields = decodeStrings(v)
	}
	if v, ok := fields["extracted_facts"]; ok {
		// A non-object leaves the update empty.
		_ = json.Unmarshal(v, &md.ExtractedFacts)
	}
	if v, ok := fields["progress_percent"]; ok {
		md.ProgressPercent = decodePercent(v)
	}
	if v, ok := fields["safety_flags"]; ok {
		md.SafetyFlags = decodeEach[Flag](v, func(f Flag) bool {
			return strings.TrimSpace(f.Message) != ""
		})
	}
	if v, ok := fields["timeline_events"]; ok {
		md.TimelineEvents = decodeEach[Event](v, func(e Event) bool {
			return strings.TrimSpace(e.Title) != "" || strings.TrimSpace(e.Date) != ""
		})
	}
	if v, ok := fields["suggested_artifacts"]; ok {
		md.SuggestedArtifacts = decodeEach[Artifact](v, func(a Artifact) bool {
			return strings.TrimSpace(a.Content) != ""
		})
	}
	return md
}

// decodeEach decodes a JSON array element by element, keeping the elements
// that decode and satisfy keep. A non-array yields an empty slice.
func decodeEach[T any](data json.RawMessage, keep func(T) bool) []T {
	out := []T{}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return out
	}
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func decodeStrings(data json.RawMessage) []string {
	return decodeEach[string](data, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
}

// decodePercent accepts a number or a numeric string and clamps it to
// [0, 100].
func decodePercent(data json.RawMessage) int {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		f, err = strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}
