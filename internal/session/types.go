// Package session holds case sessions, applies coaching turns to them and
// persists them through interchangeable stores.
package session

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/response"
)

// DefaultTitle is used for sessions created without a title.
const DefaultTitle = "Order of Protection Case"

var newID = uuid.NewString

// SafetyFlag is a flag recorded on a session. Flags are appended and never
// changed.
type SafetyFlag struct {
	ID        string            `json:"id"`
	Severity  response.Severity `json:"severity"`
	Message   string            `json:"message"`
	Category  response.Category `json:"category"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Artifact is a generated draft document.
type Artifact struct {
	ID        string                `json:"id"`
	Type      response.ArtifactType `json:"type"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	Version   int                   `json:"version"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Document is an uploaded file's extracted text.
type Document struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	ExtractedText string    `json:"extractedText"`
	Snippets      []string  `json:"snippets"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// CaseSession is everything known about one case.
type CaseSession struct {
	ID                 string                `json:"id"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
	Jurisdiction       facts.Jurisdiction    `json:"jurisdiction"`
	Title              string                `json:"title"`
	OPFacts            facts.OPFacts         `json:"opFacts"`
	Timeline           []facts.TimelineEvent `json:"timeline"`
	Conversation       []coach.Message       `json:"conversation"`
	GeneratedArtifacts []Artifact            `json:"generatedArtifacts"`
	SafetyFlags        []SafetyFlag          `json:"safetyFlags"`
	Documents          []Document            `json:"documents"`
	IntakeCompleted    bool                  `json:"intakeCompleted"`
	IntakeStep         int                   `json:"intakeStep"`
	ProgressPercent    int                   `json:"progressPercent"`
}

// New returns an empty session. An empty title becomes DefaultTitle.
func New(title string, jurisdiction facts.Jurisdiction) *CaseSession {
	if title == "" {
		title = DefaultTitle
	}
	// Only the county varies; the court is always NY Family Court.
	j := facts.DefaultJurisdiction()
	j.County = jurisdiction.County
	now := time.Now().UTC()
	return &CaseSession{
		ID:                 newID(),
		CreatedAt:          now,
		UpdatedAt:          now,
		Jurisdiction:       j,
		Title:              title,
		OPFacts:            facts.Default(),
		Timeline:           []facts.TimelineEvent{},
		Conversation:       []coach.Message{},
		GeneratedArtifacts: []Artifact{},
		SafetyFlags:        []SafetyFlag{},
		Documents:          []Document{},
	}
}

// Clone returns a deep copy of s.
func (s *CaseSession) Clone() *CaseSession {
	out := *s
	out.OPFacts = s.OPFacts.Clone()
	out.Timeline = slices.Clone(s.Timeline)
	out.Conversation = slices.Clone(s.Conversation)
	out.GeneratedArtifacts = slices.Clone(s.GeneratedArtifacts)
	out.SafetyFlags = slices.Clone(s.SafetyFlags)
	out.Documents = make([]Document, len(s.Documents))
	for i, d := range s.Documents {
		d.Snippets = slices.Clone(d.Snippets)
		out.Documents[i] = d
	}
	return &out
}

// normalize replaces nil sequences after decoding and puts the timeline
// back in date order.
func (s *CaseSession) normalize() {
	s.OPFacts.Normalize()
	s.Timeline = facts.SortTimeline(s.Timeline)
	if s.Conversation == nil {
		s.Conversation = []coach.Message{}
	}
	if s.GeneratedArtifacts == nil {
		s.GeneratedArtifacts = []Artifact{}
	}
	if s.SafetyFlags == nil {
		s.SafetyFlags = []SafetyFlag{}
	}
	if s.Documents == nil {
		s.Documents = []Document{}
	}
}

// CoachRequest builds the coaching request for a new user message from the
// session's current state.
func (s *CaseSession) CoachRequest(message string, tone prompts.Tone, mode string) coach.Request {
	return coach.Request{
		SessionID:           s.ID,
		UserMessage:         message,
		OPFacts:             s.OPFacts.Clone(),
		Jurisdiction:        s.Jurisdiction,
		Timeline:            slices.Clone(s.Timeline),
		ConversationHistory: slices.Clone(s.Conversation),
		Tone:                tone,
		Mode:                mode,
	}
}
