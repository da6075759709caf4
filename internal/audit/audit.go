// Package audit records what each coaching turn did to a session. Entries
// carry counts and field names only, never user text.
package audit

import (
	"time"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/session"
)

// Entry is a single audit trail record.
type Entry struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	SessionID       string    `json:"sessionId"`
	Mode            string    `json:"mode"`
	Provider        string    `json:"provider,omitempty"`
	Model           string    `json:"model,omitempty"`
	SafetyInterrupt bool      `json:"safetyInterrupt"`
	Pattern         string    `json:"pattern,omitempty"`
	PatternVersion  string    `json:"patternVersion,omitempty"`
	Structured      bool      `json:"structured"`
	ChangedFields   []string  `json:"changedFields"`
	TimelineEvents  int       `json:"timelineEvents"`
	SafetyFlags     int       `json:"safetyFlags"`
	Artifacts       int       `json:"artifacts"`
	ProgressPercent int       `json:"progressPercent"`
	InputTokens     int       `json:"inputTokens"`
	OutputTokens    int       `json:"outputTokens"`
	CostUSD         float64   `json:"costUsd"`
	LatencyMS       int64     `json:"latencyMs"`
	Error           string    `json:"error,omitempty"`
}

// FromTurn builds the entry for a completed turn.
func FromTurn(sessionID, provider string, res *coach.Result, changes session.TurnChanges, latency time.Duration) Entry {
	e := Entry{
		SessionID:       sessionID,
		Mode:            string(res.Mode),
		Provider:        provider,
		Model:           res.Model,
		SafetyInterrupt: res.SafetyInterrupt,
		Pattern:         res.Pattern,
		Structured:      res.Structured,
		ChangedFields:   changes.FactFields,
		TimelineEvents:  changes.TimelineEvents,
		SafetyFlags:     changes.SafetyFlags,
		Artifacts:       changes.Artifacts,
		ProgressPercent: res.ProgressPercent,
		InputTokens:     res.Usage.InputTokens,
		OutputTokens:    res.Usage.OutputTokens,
		CostUSD:         res.Usage.CostUSD,
		LatencyMS:       latency.Milliseconds(),
	}
	if res.SafetyInterrupt {
		e.PatternVersion = danger.PatternVersion
		e.Provider = ""
	}
	return e
}

// Failed builds the entry for a turn that returned an error.
func Failed(sessionID, mode, provider string, err error, latency time.Duration) Entry {
	return Entry{
		SessionID: sessionID,
		Mode:      mode,
		Provider:  provider,
		LatencyMS: latency.Milliseconds(),
		Error:     err.Error(),
	}
}
