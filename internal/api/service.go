// Package api exposes the coach and case sessions over HTTP and
// websockets.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/audit"
	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/response"
	"github.com/elilinden/Support-bot/internal/session"
	"github.com/elilinden/Support-bot/internal/upload"
)

// turnFailedNote is appended to the conversation when the model could not
// be reached, so the user's message is kept and the failure is visible.
const turnFailedNote = "Sorry, I couldn't reach the coaching service just now. Your message was saved; please try sending again in a moment."

// Options holds the service defaults.
type Options struct {
	DefaultTone   prompts.Tone
	DefaultCounty string
	Health        llm.Health
}

// Service applies coaching turns and edits to stored sessions. Operations
// on one session are serialised; different sessions proceed in parallel.
type Service struct {
	coach   *coach.Coach
	store   session.Store
	audit   *audit.Store
	uploads *upload.Extractor
	opts    Options
	locks   *sessionLocks
	logger  *zap.Logger
}

// NewService wires the service. auditStore may be nil to disable the turn
// audit trail.
func NewService(c *coach.Coach, store session.Store, auditStore *audit.Store, uploads *upload.Extractor, opts Options, logger *zap.Logger) *Service {
	if !opts.DefaultTone.Valid() {
		opts.DefaultTone = prompts.TonePlain
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		coach:   c,
		store:   store,
		audit:   auditStore,
		uploads: uploads,
		opts:    opts,
		locks:   newSessionLocks(),
		logger:  logger,
	}
}

// Health reports the configured model collaborator.
func (s *Service) Health() llm.Health { return s.opts.Health }

func (s *Service) tone(t prompts.Tone) (prompts.Tone, error) {
	switch {
	case t == "":
		return s.opts.DefaultTone, nil
	case t.Valid():
		return t, nil
	default:
		return "", &coach.ValidationError{Field: "tone", Reason: `must be "plain" or "formal"`}
	}
}

func validateCounty(county string) error {
	if !facts.ValidCounty(county) {
		return &coach.ValidationError{Field: "county", Reason: "is not a New York county"}
	}
	return nil
}

// Coach runs a stateless turn: the caller supplies the whole state and
// nothing is stored.
func (s *Service) Coach(ctx context.Context, req coach.Request) (*coach.Result, error) {
	tone, err := s.tone(req.Tone)
	if err != nil {
		return nil, err
	}
	req.Tone = tone
	return s.coach.HandleTurn(ctx, req)
}

// CreateSession stores a new session.
func (s *Service) CreateSession(ctx context.Context, title, county string) (*session.CaseSession, error) {
	if county == "" {
		county = s.opts.DefaultCounty
	}
	if err := validateCounty(county); err != nil {
		return nil, err
	}
	cs := session.New(title, facts.Jurisdiction{County: county})
	if err := s.store.Create(ctx, cs); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	s.logger.Info("session created", zap.String("session_id", cs.ID))
	return cs, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*session.CaseSession, error) {
	return s.store.Load(ctx, id)
}

func (s *Service) ListSessions(ctx context.Context) ([]*session.CaseSession, error) {
	return s.store.List(ctx)
}

// DeleteSession removes a session and its audit trail.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		if _, err := s.audit.DeleteSession(ctx, id); err != nil {
			s.logger.Warn("deleting audit trail", zap.String("session_id", id), zap.Error(err))
		}
	}
	return nil
}

// update loads a session, applies fn and saves the result, holding the
// session's lock throughout.
func (s *Service) update(ctx context.Context, id string, fn func(*session.CaseSession) error) (*session.CaseSession, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	cs, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(cs); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cs); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return cs, nil
}

// PatchSession changes the session's directly editable attributes.
func (s *Service) PatchSession(ctx context.Context, id string, p session.Patch) (*session.CaseSession, error) {
	if p.Jurisdiction != nil {
		if err := validateCounty(p.Jurisdiction.County); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, id, func(cs *session.CaseSession) error {
		cs.ApplyPatch(p)
		return nil
	})
}

// UpdateFacts merges an intake form update into the session's facts and
// returns the fields that changed.
func (s *Service) UpdateFacts(ctx context.Context, id string, u facts.Update) (*session.CaseSession, []string, error) {
	var changed []string
	cs, err := s.update(ctx, id, func(cs *session.CaseSession) error {
		changed = cs.UpdateFacts(u).ChangedFields()
		return nil
	})
	if changed == nil {
		changed = []string{}
	}
	return cs, changed, err
}

// AddTimelineEvent inserts an event in date order.
func (s *Service) AddTimelineEvent(ctx context.Context, id string, ev response.Event) (*facts.TimelineEvent, error) {
	if ev.Title == "" && ev.Date == "" {
		return nil, &coach.ValidationError{Field: "title", Reason: "title or date is required"}
	}
	var added facts.TimelineEvent
	_, err := s.update(ctx, id, func(cs *session.CaseSession) error {
		added = cs.AddTimelineEvent(ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// RemoveTimelineEvent deletes an event. An unknown event id is
// session.ErrNotFound.
func (s *Service) RemoveTimelineEvent(ctx context.Context, id, eventID string) error {
	_, err := s.update(ctx, id, func(cs *session.CaseSession) error {
		if !cs.RemoveTimelineEvent(eventID) {
			return session.ErrNotFound
		}
		return nil
	})
	return err
}

// ExtractUpload validates an upload and returns its text.
func (s *Service) ExtractUpload(name, contentType string, r io.Reader) (*upload.Result, error) {
	res, err := s.uploads.Extract(name, contentType, r)
	if err != nil {
		if isUploadError(err) {
			return nil, &coach.ValidationError{Field: "file", Reason: err.Error()}
		}
		return nil, err
	}
	return res, nil
}

// AddDocument extracts an upload and attaches it to the session. A
// sensitive-data warning on the text is recorded as a flag.
func (s *Service) AddDocument(ctx context.Context, id, name, contentType string, r io.Reader) (*session.Document, *upload.Result, error) {
	res, err := s.ExtractUpload(name, contentType, r)
	if err != nil {
		return nil, nil, err
	}
	var doc session.Document
	_, err = s.update(ctx, id, func(cs *session.CaseSession) error {
		doc = cs.AddDocument(session.Document{
			Name:          res.Name,
			Type:          res.Type,
			ExtractedText: res.ExtractedText,
		})
		if res.Warning != "" {
			cs.AddSafetyFlags([]response.Flag{{
				Severity: response.SeverityWarning,
				Message:  res.Warning,
				Category: response.CategorySensitive,
			}})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &doc, res, nil
}

func isUploadError(err error) bool {
	return errors.Is(err, upload.ErrUnsupportedType) ||
		errors.Is(err, upload.ErrUnreadablePDF) ||
		errors.Is(err, upload.ErrNoPDFText) ||
		errors.Is(err, upload.ErrNotText) ||
		errors.Is(err, upload.ErrEmpty) ||
		errors.Is(err, upload.ErrTooLarge)
}

// TurnInput is a user message sent to a stored session.
type TurnInput struct {
	Message string       `json:"message"`
	Tone    prompts.Tone `json:"tone,omitempty"`
	Mode    string       `json:"mode,omitempty"`
}

// TurnOutput is the coach's result together with the updated session.
type TurnOutput struct {
	Result  *coach.Result        `json:"result"`
	Session *session.CaseSession `json:"session"`
}

// Turn runs a coaching turn against a stored session and persists the
// outcome. When the model cannot be reached the user's message is kept and
// a visible note is appended before the error is returned.
func (s *Service) Turn(ctx context.Context, id string, in TurnInput) (*TurnOutput, error) {
	tone, err := s.tone(in.Tone)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	cs, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.coach.HandleTurn(ctx, cs.CoachRequest(in.Message, tone, in.Mode))
	if err != nil {
		if errors.Is(err, coach.ErrInvalidRequest) {
			return nil, err
		}
		s.recordFailure(ctx, cs, in, err, time.Since(start))
		return nil, err
	}

	changes := cs.ApplyTurn(in.Message, res)
	if err := s.store.Save(ctx, cs); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	s.logAudit(ctx, audit.FromTurn(id, s.coach.Provider(), res, changes, time.Since(start)))

	return &TurnOutput{Result: res, Session: cs}, nil
}

func (s *Service) recordFailure(ctx context.Context, cs *session.CaseSession, in TurnInput, turnErr error, latency time.Duration) {
	// The request may have been cancelled; the note is still worth keeping.
	ctx = context.WithoutCancel(ctx)

	cs.AddMessage(coach.RoleUser, in.Message)
	cs.AddMessage(coach.RoleSystem, turnFailedNote)
	if err := s.store.Save(ctx, cs); err != nil {
		s.logger.Error("saving failed turn", zap.String("session_id", cs.ID), zap.Error(err))
	}
	mode := prompts.ParseMode(in.Mode)
	s.logAudit(ctx, audit.Failed(cs.ID, string(mode), s.coach.Provider(), turnErr, latency))
}

func (s *Service) logAudit(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, e); err != nil {
		s.logger.Warn("writing audit entry", zap.String("session_id", e.SessionID), zap.Error(err))
	}
}

// Audit returns the turn audit trail for a session, newest first.
func (s *Service) Audit(ctx context.Context, id string, filter audit.QueryFilter) ([]audit.Entry, error) {
	if _, err := s.store.Load(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.Entry{}, nil
	}
	filter.SessionID = id
	return s.audit.Query(ctx, filter)
}
