package response

import (
	"encoding/json"
	"strings"

	"github.com/elilinden/Support-bot/internal/facts"
)

// Severity of a safety flag.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category of a safety flag.
type Category string

const (
	CategoryDeadline     Category = "deadline"
	CategoryJurisdiction Category = "jurisdiction"
	CategorySensitive    Category = "sensitive"
	CategoryLegalLimit   Category = "legal_limit"
	CategorySafety       Category = "safety"
	CategoryGeneral      Category = "general"
)

// ArtifactType is the kind of draft document the model suggests.
type ArtifactType string

const (
	ArtifactTwoMinuteScript   ArtifactType = "two_minute_script"
	ArtifactFiveMinuteOutline ArtifactType = "five_minute_outline"
	ArtifactEvidenceChecklist ArtifactType = "evidence_checklist"
	ArtifactTimeline          ArtifactType = "timeline"
	ArtifactWhatToBring       ArtifactType = "what_to_bring"
	ArtifactWhatToExpect      ArtifactType = "what_to_expect"
	ArtifactGeneral           ArtifactType = "general"
)

var ArtifactLabels = map[ArtifactType]string{
	ArtifactTwoMinuteScript:   "2-Minute Script",
	ArtifactFiveMinuteOutline: "5-Minute Outline",
	ArtifactEvidenceChecklist: "Evidence Checklist",
	ArtifactTimeline:          "Incident Timeline",
	ArtifactWhatToBring:       "What to Bring",
	ArtifactWhatToExpect:      "What to Expect",
	ArtifactGeneral:           "General",
}

// The enum decoders below never fail. Anything that is not a known tag,
// including a non-string, becomes the default variant.

func (s *Severity) UnmarshalJSON(data []byte) error {
	*s = SeverityInfo
	switch v := Severity(decodeTag(data)); v {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		*s = v
	}
	return nil
}

func (c *Category) UnmarshalJSON(data []byte) error {
	*c = CategoryGeneral
	switch v := Category(decodeTag(data)); v {
	case CategoryDeadline, CategoryJurisdiction, CategorySensitive,
		CategoryLegalLimit, CategorySafety, CategoryGeneral:
		*c = v
	}
	return nil
}

func (t *ArtifactType) UnmarshalJSON(data []byte) error {
	*t = ArtifactGeneral
	if v := ArtifactType(decodeTag(data)); ArtifactLabels[v] != "" {
		*t = v
	}
	return nil
}

func decodeTag(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Flag is a safety flag as emitted by the model, before it is given an id
// and timestamp.
type Flag struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// Event is a timeline event as emitted by the model, before it is given
// an id.
type Event struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsDeadline  bool   `json:"isDeadline"`
}

// Artifact is a draft document suggested by the model.
type Artifact struct {
	Type    ArtifactType `json:"type"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
}

// Metadata is the structured payload that follows the model's reply.
type Metadata struct {
	NextQuestions      []string     `json:"next_questions"`
	ExtractedFacts     facts.Update `json:"extracted_facts"`
	MissingFields      []string     `json:"missing_fields"`
	ProgressPercent    int          `json:"progress_percent"`
	SafetyFlags        []Flag       `json:"safety_flags"`
	TimelineEvents     []Event      `json:"timeline_events"`
	SuggestedArtifacts []Artifact   `json:"suggested_artifacts"`
}

// DefaultMetadata returns metadata with every key at its default: empty
// sequences, an empty fact update and zero progress.
func DefaultMetadata() Metadata {
	return Metadata{
		NextQuestions:      []string{},
		MissingFields:      []string{},
		SafetyFlags:        []Flag{},
		TimelineEvents:     []Event{},
		SuggestedArtifacts: []Artifact{},
	}
}
