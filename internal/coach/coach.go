// Package coach runs one coaching turn: it screens the message for
// immediate danger, builds the prompt, calls the model and turns the reply
// into a Result the caller applies to its session.
package coach

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/redact"
	"github.com/elilinden/Support-bot/internal/response"
)

const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
)

// Options tunes model calls.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Coach is the coaching orchestrator. It holds no per-session state and is
// safe for concurrent use.
type Coach struct {
	provider llm.Provider
	opts     Options
	logger   *zap.Logger
}

// New creates a Coach that calls provider.
func New(provider llm.Provider, opts Options, logger *zap.Logger) *Coach {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{provider: provider, opts: opts, logger: logger}
}

// Provider returns the name of the model provider in use.
func (c *Coach) Provider() string { return c.provider.Name() }

// Validate checks the fields a turn cannot run without.
func Validate(req Request) error {
	if strings.TrimSpace(req.SessionID) == "" {
		return &ValidationError{Field: "sessionId", Reason: "is required"}
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		return &ValidationError{Field: "userMessage", Reason: "is required"}
	}
	return nil
}

// HandleTurn runs one turn. Validation errors match ErrInvalidRequest and
// model failures match ErrUpstreamUnavailable; a malformed model reply is
// never an error.
func (c *Coach) HandleTurn(ctx context.Context, req Request) (*Result, error) {
	mode := prompts.ParseMode(req.Mode)

	if err := Validate(req); err != nil {
		return nil, err
	}
	log := c.logger.With(zap.String("session_id", req.SessionID), zap.String("mode", string(mode)))

	if pattern, ok := danger.Match(req.UserMessage); ok {
		log.Warn("safety interrupt", zap.String("pattern", pattern), zap.String("pattern_version", danger.PatternVersion))
		res := safetyInterrupt(len(req.ConversationHistory) > 0)
		res.Mode = mode
		res.Pattern = pattern
		return res, nil
	}

	system := prompts.BuildSystemPrompt(prompts.Context{
		Facts:        req.OPFacts,
		Jurisdiction: req.Jurisdiction,
		Timeline:     facts.SortTimeline(req.Timeline),
		Tone:         req.Tone,
	}, mode)
	message := req.UserMessage + prompts.BuildExtractionSuffix()

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model:             c.opts.Model,
		SystemInstruction: system,
		History:           ToHistory(req.ConversationHistory),
		Message:           message,
		MaxTokens:         c.opts.MaxTokens,
		Temperature:       c.opts.Temperature,
	})
	if err != nil {
		log.Error("model call failed", zap.String("provider", c.provider.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		log.Error("model returned an empty reply", zap.String("provider", c.provider.Name()))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, llm.ErrEmptyResponse)
	}

	parsed := response.Parse(resp.Text)
	if !parsed.Structured {
		log.Debug("reply had no usable metadata block", zap.Int("raw_len", len(resp.Text)))
	}

	res := fromParsed(parsed)
	res.Mode = mode
	res.Model = resp.Model
	res.Usage = llm.UsageFor(resp, system+message)

	if findings := redact.Scan(req.UserMessage); len(findings) > 0 {
		res.SafetyFlags = append(res.SafetyFlags, response.Flag{
			Severity: response.SeverityWarning,
			Message:  redact.Warning(findings),
			Category: response.CategorySensitive,
		})
	}
	return res, nil
}

func fromParsed(p response.Parsed) *Result {
	md := p.Metadata
	return &Result{
		AssistantMessage:   p.Message,
		NextQuestions:      md.NextQuestions,
		ExtractedFacts:     md.ExtractedFacts,
		MissingFields:      md.MissingFields,
		ProgressPercent:    md.ProgressPercent,
		SafetyFlags:        md.SafetyFlags,
		TimelineEvents:     md.TimelineEvents,
		SuggestedArtifacts: md.SuggestedArtifacts,
		Structured:         p.Structured,
	}
}

// ToHistory maps a conversation to the model's two-party vocabulary.
// System messages are dropped and assistant messages become the model's
// turns. Leading model turns are dropped too, since the model expects the
// history to open with the user.
func ToHistory(msgs []Message) []llm.Turn {
	out := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		var role llm.Role
		switch m.Role {
		case RoleUser:
			role = llm.RoleUser
		case RoleAssistant:
			role = llm.RoleModel
		default:
			continue
		}
		if len(out) == 0 && role == llm.RoleModel {
			continue
		}
		out = append(out, llm.Turn{Role: role, Text: m.Content})
	}
	return out
}

