package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/response"
)

func TestNewDefaults(t *testing.T) {
	s := New("", facts.Jurisdiction{})
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, DefaultTitle, s.Title)
	assert.Equal(t, facts.DefaultJurisdiction(), s.Jurisdiction)
	assert.Equal(t, facts.Default(), s.OPFacts)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, key := range []string{"timeline", "conversation", "generatedArtifacts", "safetyFlags", "documents"} {
		assert.Equal(t, []any{}, m[key], key)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	s.AddMessage(coach.RoleUser, "hi")
	s.AddDocument(Document{Name: "a.txt", Snippets: []string{"one"}})
	s.OPFacts.Incidents = append(s.OPFacts.Incidents, facts.Incident{ID: "i"})

	c := s.Clone()
	c.Conversation[0].Content = "changed"
	c.Documents[0].Snippets[0] = "changed"
	c.OPFacts.Incidents[0].ID = "changed"

	assert.Equal(t, "hi", s.Conversation[0].Content)
	assert.Equal(t, "one", s.Documents[0].Snippets[0])
	assert.Equal(t, "i", s.OPFacts.Incidents[0].ID)
}

func TestApplyPatch(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	j := facts.Jurisdiction{System: "other", County: "Queens"}
	s.ApplyPatch(Patch{
		Title:           facts.Ptr("Renamed"),
		Jurisdiction:    &j,
		IntakeCompleted: facts.Ptr(true),
		IntakeStep:      facts.Ptr(3),
	})
	assert.Equal(t, "Renamed", s.Title)
	assert.Equal(t, "Queens", s.Jurisdiction.County)
	assert.Equal(t, facts.DefaultJurisdiction().System, s.Jurisdiction.System)
	assert.True(t, s.IntakeCompleted)
	assert.Equal(t, 3, s.IntakeStep)

	s.ApplyPatch(Patch{Title: facts.Ptr("  "), IntakeStep: facts.Ptr(-1)})
	assert.Equal(t, "Renamed", s.Title)
	assert.Equal(t, 3, s.IntakeStep)
}

func TestUpdateFactsReportsRealChanges(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	s.OPFacts.PetitionerName = "Jane"

	changed := s.UpdateFacts(facts.Update{
		PetitionerName: facts.Ptr("Jane"),
		RespondentName: facts.Ptr("John"),
		Safety:         &facts.SafetyUpdate{FirearmsPresent: facts.Ptr(facts.Yes)},
	})

	assert.Equal(t, []string{"respondentName", "safety.firearmsPresent"}, changed.ChangedFields())
	assert.Equal(t, "John", s.OPFacts.RespondentName)
	assert.Equal(t, facts.Yes, s.OPFacts.Safety.FirearmsPresent)
}

func TestTimelineStaysSorted(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	s.AddTimelineEvent(response.Event{Date: "2024-01-15", Title: "later"})
	first := s.AddTimelineEvent(response.Event{Date: "2024-01-10", Title: "earlier"})

	require.Len(t, s.Timeline, 2)
	assert.Equal(t, "2024-01-10", s.Timeline[0].Date)
	assert.Equal(t, "2024-01-15", s.Timeline[1].Date)

	assert.True(t, s.RemoveTimelineEvent(first.ID))
	assert.False(t, s.RemoveTimelineEvent(first.ID))
	assert.Len(t, s.Timeline, 1)
}

func TestAddArtifactDefaultsTitle(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	a := s.AddArtifact(response.Artifact{Type: response.ArtifactWhatToBring, Content: "plan"})
	assert.Equal(t, 1, a.Version)
	assert.Equal(t, response.ArtifactLabels[a.Type], a.Title)
	assert.NotEmpty(t, a.ID)
}

func TestApplyTurn(t *testing.T) {
	s := New("x", facts.Jurisdiction{})
	s.ProgressPercent = 40
	s.AddTimelineEvent(response.Event{Date: "2024-01-15", Title: "incident"})

	res := &coach.Result{
		AssistantMessage: "Thanks for telling me.",
		ExtractedFacts: facts.Update{
			RespondentName: facts.Ptr("John"),
			Safety:         &facts.SafetyUpdate{Strangulation: facts.Ptr(facts.Yes)},
		},
		SafetyFlags: []response.Flag{
			{Severity: response.SeverityCritical, Message: "strangulation reported", Category: response.CategorySafety},
		},
		TimelineEvents: []response.Event{
			{Date: "2024-01-10", Title: "first threat"},
		},
		SuggestedArtifacts: []response.Artifact{
			{Type: response.ArtifactGeneral, Title: "Notes", Content: "..."},
		},
	}

	changes := s.ApplyTurn("He choked me last week.", res)

	assert.Equal(t, TurnChanges{
		FactFields:     []string{"respondentName", "safety.strangulation"},
		TimelineEvents: 1,
		SafetyFlags:    1,
		Artifacts:      1,
	}, changes)

	require.Len(t, s.Conversation, 2)
	assert.Equal(t, coach.RoleUser, s.Conversation[0].Role)
	assert.Equal(t, "He choked me last week.", s.Conversation[0].Content)
	assert.Equal(t, coach.RoleAssistant, s.Conversation[1].Role)
	assert.NotEqual(t, s.Conversation[0].ID, s.Conversation[1].ID)

	require.Len(t, s.Timeline, 2)
	assert.Equal(t, "2024-01-10", s.Timeline[0].Date)
	assert.Equal(t, "2024-01-15", s.Timeline[1].Date)

	require.Len(t, s.SafetyFlags, 1)
	assert.Equal(t, "strangulation reported", s.SafetyFlags[0].Message)
	assert.Len(t, s.GeneratedArtifacts, 1)
	assert.Equal(t, facts.Yes, s.OPFacts.Safety.Strangulation)

	// A turn without a progress report keeps the old value.
	assert.Equal(t, 40, s.ProgressPercent)
	s.ApplyTurn("ok", &coach.Result{AssistantMessage: "ok", ProgressPercent: 55})
	assert.Equal(t, 55, s.ProgressPercent)
}

func TestCoachRequestCopiesState(t *testing.T) {
	s := New("x", facts.Jurisdiction{County: "Kings (Brooklyn)"})
	s.AddMessage(coach.RoleUser, "earlier")

	req := s.CoachRequest("now", prompts.ToneFormal, "chat")
	req.ConversationHistory[0].Content = "changed"

	assert.Equal(t, s.ID, req.SessionID)
	assert.Equal(t, "now", req.UserMessage)
	assert.Equal(t, prompts.ToneFormal, req.Tone)
	assert.Equal(t, "chat", req.Mode)
	assert.Equal(t, "Kings (Brooklyn)", req.Jurisdiction.County)
	assert.Equal(t, "earlier", s.Conversation[0].Content)
}
