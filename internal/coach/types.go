package coach

import (
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/response"
)

// MessageRole is the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one entry of a session's conversation.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
}

// Request is one coaching turn. The caller supplies the full current state;
// the coach keeps nothing between turns.
type Request struct {
	SessionID           string                `json:"sessionId"`
	UserMessage         string                `json:"userMessage"`
	OPFacts             facts.OPFacts         `json:"opFacts"`
	Jurisdiction        facts.Jurisdiction    `json:"jurisdiction"`
	Timeline            []facts.TimelineEvent `json:"timeline"`
	ConversationHistory []Message             `json:"conversationHistory"`
	Tone                prompts.Tone          `json:"tone"`
	Mode                string                `json:"mode,omitempty"`
}

// Result is the outcome of a turn: the reply to show and the state changes
// the caller should apply to its session.
type Result struct {
	AssistantMessage   string              `json:"assistant_message"`
	NextQuestions      []string            `json:"next_questions"`
	ExtractedFacts     facts.Update        `json:"extracted_facts"`
	MissingFields      []string            `json:"missing_fields"`
	ProgressPercent    int                 `json:"progress_percent"`
	SafetyFlags        []response.Flag     `json:"safety_flags"`
	TimelineEvents     []response.Event    `json:"timeline_events"`
	SuggestedArtifacts []response.Artifact `json:"suggested_artifacts"`

	Mode            prompts.Mode `json:"-"`
	SafetyInterrupt bool         `json:"-"`
	// Pattern names the danger pattern that caused an interrupt.
	Pattern string `json:"-"`
	// Structured is false when the reply carried no usable metadata block.
	Structured bool `json:"-"`
	// Model is the model that answered, empty on an interrupt.
	Model string    `json:"-"`
	Usage llm.Usage `json:"-"`
}
