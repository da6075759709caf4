package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilinden/Support-bot/internal/facts"
)

func TestParseWithoutBlock(t *testing.T) {
	got := Parse("  plain text, no fences \n")

	assert.Equal(t, "plain text, no fences", got.Message)
	assert.Equal(t, DefaultMetadata(), got.Metadata)
	assert.False(t, got.Structured)
}

func TestParseHappyPath(t *testing.T) {
	raw := "Thanks for telling me.\n\n" + fence + `json
{
  "next_questions": ["Q1", "Q2"],
  "progress_percent": 25,
  "safety_flags": [{"severity": "info", "message": "Educational only.", "category": "legal_limit"}]
}
` + fence + "\n"

	got := Parse(raw)

	assert.True(t, got.Structured)
	assert.Equal(t, "Thanks for telling me.", got.Message)
	assert.NotContains(t, got.Message, "next_questions")
	require.Len(t, got.Metadata.NextQuestions, 2)
	assert.Equal(t, "Q1", got.Metadata.NextQuestions[0])
	assert.Equal(t, 25, got.Metadata.ProgressPercent)
	require.Len(t, got.Metadata.SafetyFlags, 1)
	assert.Equal(t, SeverityInfo, got.Metadata.SafetyFlags[0].Severity)
	assert.Equal(t, CategoryLegalLimit, got.Metadata.SafetyFlags[0].Category)
}

func TestParseMalformedJSON(t *testing.T) {
	raw := "Here you go.\n" + fence + "json\n{\"next_questions\": [\"Q1\",\n" + fence + "  "

	got := Parse(raw)

	assert.False(t, got.Structured)
	assert.Equal(t, "Here you go.\n"+fence+"json\n{\"next_questions\": [\"Q1\",\n"+fence, got.Message)
	assert.Equal(t, DefaultMetadata(), got.Metadata)
}

func TestParseNonObjectIsMalformed(t *testing.T) {
	for _, body := range []string{`["a", "b"]`, `"text"`, `null`, `42`} {
		t.Run(body, func(t *testing.T) {
			raw := "msg\n" + fence + "json\n" + body + "\n" + fence
			got := Parse(raw)
			assert.Equal(t, raw, got.Message)
			assert.Equal(t, DefaultMetadata(), got.Metadata)
		})
	}
}

func TestParsePartialMetadata(t *testing.T) {
	raw := "Reply." + fence + `json {"next_questions": ["Only one?"], "progress_percent": 40} ` + fence

	got := Parse(raw)

	assert.Equal(t, "Reply.", got.Message)
	assert.Equal(t, []string{"Only one?"}, got.Metadata.NextQuestions)
	assert.Equal(t, 40, got.Metadata.ProgressPercent)
	assert.Equal(t, []string{}, got.Metadata.MissingFields)
	assert.Equal(t, []Flag{}, got.Metadata.SafetyFlags)
	assert.Equal(t, []Event{}, got.Metadata.TimelineEvents)
	assert.Equal(t, []Artifact{}, got.Metadata.SuggestedArtifacts)
	assert.True(t, got.Metadata.ExtractedFacts.IsEmpty())
}

func TestParseWrongShapedKeysFallBack(t *testing.T) {
	raw := fence + `json
{
  "next_questions": "not a list",
  "missing_fields": ["relationship", 3, ""],
  "extracted_facts": ["nope"],
  "progress_percent": {"value": 10},
  "safety_flags": [{"severity": "urgent", "message": "Check the deadline", "category": "court"}, "junk", {"severity": "warning"}],
  "timeline_events": [{"date": "2024-01-10", "title": "Incident", "isDeadline": "yes"}, {"date": "2024-02-01", "title": "Hearing", "isDeadline": true}],
  "suggested_artifacts": [{"type": "speech", "title": "Script", "content": "TEMPLATE"}],
  "extra_key": {"ignored": true}
}
` + fence

	got := Parse(raw)
	md := got.Metadata

	assert.Equal(t, "", got.Message)
	assert.Equal(t, []string{}, md.NextQuestions)
	assert.Equal(t, []string{"relationship"}, md.MissingFields)
	assert.True(t, md.ExtractedFacts.IsEmpty())
	assert.Equal(t, 0, md.ProgressPercent)
	assert.Equal(t, []Flag{{Severity: SeverityInfo, Message: "Check the deadline", Category: CategoryGeneral}}, md.SafetyFlags)
	assert.Equal(t, []Event{{Date: "2024-02-01", Title: "Hearing", IsDeadline: true}}, md.TimelineEvents)
	assert.Equal(t, []Artifact{{Type: ArtifactGeneral, Title: "Script", Content: "TEMPLATE"}}, md.SuggestedArtifacts)
}

func TestParseExtractedFacts(t *testing.T) {
	raw := "ok\n" + fence + `json
{"extracted_facts": {"respondentName": "John", "safety.firearmsPresent": true}}
` + fence
	got := Parse(raw)

	u := got.Metadata.ExtractedFacts
	require.NotNil(t, u.RespondentName)
	assert.Equal(t, "John", *u.RespondentName)
	require.NotNil(t, u.Safety)
	assert.Equal(t, facts.Yes, *u.Safety.FirearmsPresent)
}

func TestParseProgressPercent(t *testing.T) {
	tests := map[string]int{
		`150`:    100,
		`-5`:     0,
		`33.6`:   34,
		`"45"`:   45,
		`"60%"`:  60,
		`"lots"`: 0,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got := Parse(fence + `json {"progress_percent": ` + in + `} ` + fence)
			assert.Equal(t, want, got.Metadata.ProgressPercent)
		})
	}
}

func TestParseRemovesOnlyFirstBlock(t *testing.T) {
	raw := "a " + fence + `json {"progress_percent": 10} ` + fence + " b " + fence + `json {"progress_percent": 90} ` + fence

	got := Parse(raw)

	assert.Equal(t, 10, got.Metadata.ProgressPercent)
	assert.Equal(t, "a  b "+fence+`json {"progress_percent": 90} `+fence, got.Message)
}

func TestParseTagIsCaseInsensitive(t *testing.T) {
	got := Parse("hi\n" + fence + "JSON\n{\"progress_percent\": 5}\n" + fence)
	assert.True(t, got.Structured)
	assert.Equal(t, 5, got.Metadata.ProgressPercent)
	assert.Equal(t, "hi", got.Message)
}

func TestParseUntaggedFenceIsIgnored(t *testing.T) {
	raw := "hi\n" + fence + "\n{\"progress_percent\": 5}\n" + fence
	got := Parse(raw)
	assert.False(t, got.Structured)
	assert.Equal(t, raw, got.Message)
}

func TestParseFenceInsideJSONString(t *testing.T) {
	raw := "Noted.\n" + fence + `json
{
  "extracted_facts": {"additionalNotes": "he wrote ` + fence + `json in a text"},
  "progress_percent": 15
}
` + fence + "\nTake care."

	got := Parse(raw)

	require.True(t, got.Structured)
	assert.Equal(t, 15, got.Metadata.ProgressPercent)
	require.NotNil(t, got.Metadata.ExtractedFacts.AdditionalNotes)
	assert.Equal(t, "he wrote "+fence+"json in a text", *got.Metadata.ExtractedFacts.AdditionalNotes)
	assert.Equal(t, "Noted.\n\nTake care.", got.Message)
}
