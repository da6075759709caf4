package session

import (
	"strings"
	"time"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/response"
)

func (s *CaseSession) touch() time.Time {
	now := time.Now().UTC()
	s.UpdatedAt = now
	return now
}

// Patch holds the session attributes that can be changed directly.
type Patch struct {
	Title           *string             `json:"title,omitempty"`
	Jurisdiction    *facts.Jurisdiction `json:"jurisdiction,omitempty"`
	IntakeCompleted *bool               `json:"intakeCompleted,omitempty"`
	IntakeStep      *int                `json:"intakeStep,omitempty"`
}

// ApplyPatch sets the non-nil fields of p.
func (s *CaseSession) ApplyPatch(p Patch) {
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		s.Title = *p.Title
	}
	if p.Jurisdiction != nil {
		// Only the county is configurable.
		s.Jurisdiction.County = p.Jurisdiction.County
	}
	if p.IntakeCompleted != nil {
		s.IntakeCompleted = *p.IntakeCompleted
	}
	if p.IntakeStep != nil && *p.IntakeStep >= 0 {
		s.IntakeStep = *p.IntakeStep
	}
	s.touch()
}

// UpdateFacts merges u into the session's facts and returns the fields
// that actually changed.
func (s *CaseSession) UpdateFacts(u facts.Update) facts.Update {
	merged := facts.Merge(s.OPFacts, u)
	changed := facts.Diff(s.OPFacts, merged)
	s.OPFacts = merged
	s.touch()
	return changed
}

// AddMessage appends a message with a fresh id and timestamp.
func (s *CaseSession) AddMessage(role coach.MessageRole, content string) coach.Message {
	now := s.touch()
	m := coach.Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: now.Format(time.RFC3339Nano),
	}
	s.Conversation = append(s.Conversation, m)
	return m
}

// AddTimelineEvent inserts ev, keeping the timeline in date order.
func (s *CaseSession) AddTimelineEvent(ev response.Event) facts.TimelineEvent {
	s.touch()
	te := facts.TimelineEvent{
		ID:          newID(),
		Date:        ev.Date,
		Title:       ev.Title,
		Description: ev.Description,
		IsDeadline:  ev.IsDeadline,
	}
	s.Timeline = facts.InsertEvent(s.Timeline, te)
	return te
}

// RemoveTimelineEvent deletes the event with id and reports whether it
// existed.
func (s *CaseSession) RemoveTimelineEvent(id string) bool {
	tl, ok := facts.RemoveEvent(s.Timeline, id)
	if ok {
		s.Timeline = tl
		s.touch()
	}
	return ok
}

// AddArtifact appends a new artifact at version 1.
func (s *CaseSession) AddArtifact(a response.Artifact) Artifact {
	now := s.touch()
	out := Artifact{
		ID:        newID(),
		Type:      a.Type,
		Title:     a.Title,
		Content:   a.Content,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if out.Title == "" {
		out.Title = response.ArtifactLabels[out.Type]
	}
	s.GeneratedArtifacts = append(s.GeneratedArtifacts, out)
	return out
}

// AddSafetyFlags appends flags, each with its own id and a shared
// timestamp.
func (s *CaseSession) AddSafetyFlags(flags []response.Flag) []SafetyFlag {
	now := s.touch()
	out := make([]SafetyFlag, 0, len(flags))
	for _, f := range flags {
		out = append(out, SafetyFlag{
			ID:        newID(),
			Severity:  f.Severity,
			Message:   f.Message,
			Category:  f.Category,
			CreatedAt: now,
		})
	}
	s.SafetyFlags = append(s.SafetyFlags, out...)
	return out
}

// AddDocument appends an uploaded document.
func (s *CaseSession) AddDocument(d Document) Document {
	d.ID = newID()
	d.UploadedAt = s.touch()
	if d.Snippets == nil {
		d.Snippets = []string{}
	}
	s.Documents = append(s.Documents, d)
	return d
}

// TurnChanges summarises what ApplyTurn changed.
type TurnChanges struct {
	FactFields     []string
	TimelineEvents int
	SafetyFlags    int
	Artifacts      int
}

// ApplyTurn records a coaching turn: the user's message and the reply are
// appended to the conversation, extracted facts are merged, timeline
// events are inserted in date order, flags and artifacts are appended and
// progress is updated when the model reported any.
func (s *CaseSession) ApplyTurn(userMessage string, res *coach.Result) TurnChanges {
	s.AddMessage(coach.RoleUser, userMessage)
	s.AddMessage(coach.RoleAssistant, res.AssistantMessage)

	changes := TurnChanges{
		FactFields:     s.UpdateFacts(res.ExtractedFacts).ChangedFields(),
		TimelineEvents: len(res.TimelineEvents),
		SafetyFlags:    len(res.SafetyFlags),
		Artifacts:      len(res.SuggestedArtifacts),
	}
	for _, ev := range res.TimelineEvents {
		s.AddTimelineEvent(ev)
	}
	s.AddSafetyFlags(res.SafetyFlags)
	for _, a := range res.SuggestedArtifacts {
		s.AddArtifact(a)
	}
	// An interrupt's progress is a placeholder, not a measurement.
	if res.ProgressPercent > 0 && !res.SafetyInterrupt {
		s.ProgressPercent = res.ProgressPercent
	}
	return changes
}
