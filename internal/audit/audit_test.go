package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/danger"
	"github.com/elilinden/Support-bot/internal/db"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/session"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:              "test-1",
		SessionID:       "sess-1",
		Mode:            "interview",
		Provider:        "google",
		Model:           "gemini-2.5-flash",
		Structured:      true,
		ChangedFields:   []string{"respondentName", "safety.firearmsPresent"},
		TimelineEvents:  1,
		SafetyFlags:     2,
		ProgressPercent: 30,
		InputTokens:     1200,
		OutputTokens:    300,
		CostUSD:         0.0011,
		LatencyMS:       850,
	}

	if err := store.Log(ctx, entry); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.GetByID(ctx, "test-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if got.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "sess-1")
	}
	if got.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q, want %q", got.Model, "gemini-2.5-flash")
	}
	if !got.Structured || got.SafetyInterrupt {
		t.Errorf("Structured = %v, SafetyInterrupt = %v", got.Structured, got.SafetyInterrupt)
	}
	if len(got.ChangedFields) != 2 || got.ChangedFields[1] != "safety.firearmsPresent" {
		t.Errorf("ChangedFields = %v", got.ChangedFields)
	}
	if got.SafetyFlags != 2 || got.TimelineEvents != 1 || got.ProgressPercent != 30 {
		t.Errorf("counts = %d/%d/%d", got.SafetyFlags, got.TimelineEvents, got.ProgressPercent)
	}
	if got.InputTokens != 1200 || got.OutputTokens != 300 || got.LatencyMS != 850 {
		t.Errorf("usage = %d/%d/%d", got.InputTokens, got.OutputTokens, got.LatencyMS)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestLogGeneratesUUID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, Entry{SessionID: "sess-1", Mode: "chat"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	entries, err := store.Query(ctx, QueryFilter{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID == "" {
		t.Error("expected generated ID, got empty string")
	}
	if entries[0].ChangedFields == nil {
		t.Error("expected empty changed fields, got nil")
	}
}

func TestQueryFilterBySession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a"} {
		if err := store.Log(ctx, Entry{SessionID: id, Mode: "interview"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{SessionID: "a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for a, got %d", len(entries))
	}
}

func TestQueryFilterBySafetyInterrupt(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, interrupted := range []bool{true, false, false} {
		if err := store.Log(ctx, Entry{SessionID: "s", Mode: "interview", SafetyInterrupt: interrupted}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	yes := true
	entries, err := store.Query(ctx, QueryFilter{SafetyInterrupt: &yes})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 interrupted turn, got %d", len(entries))
	}
}

func TestQueryNewestFirst(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Log(ctx, Entry{ID: id, SessionID: "s", Mode: "chat", Timestamp: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 3 || entries[0].ID != "new" || entries[2].ID != "old" {
		t.Errorf("unexpected order: %+v", entries)
	}

	since := base.Add(30 * time.Minute)
	entries, err = store.Query(ctx, QueryFilter{Since: &since})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries since %v, got %d", since, len(entries))
	}
}

func TestQueryLimitOffset(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, Entry{SessionID: "s", Mode: "chat"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries with limit, got %d", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilter{Limit: 2, Offset: 3})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries with offset, got %d", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilter{Offset: 4})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry with offset only, got %d", len(entries))
	}
}

func TestDeleteBeforeAndSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "a", "b"} {
		if err := store.Log(ctx, Entry{SessionID: id, Mode: "chat"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	deleted, err := store.DeleteSession(ctx, "a")
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	// Delete entries before far in the future (should delete the rest).
	deleted, err = store.DeleteBefore(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
}

func TestSweepDeletesExpiredEntries(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.Log(ctx, Entry{ID: "old", SessionID: "s", Mode: "chat", Timestamp: time.Now().Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if err := store.Log(ctx, Entry{ID: "fresh", SessionID: "s", Mode: "chat"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- store.Sweep(ctx, 24*time.Hour, time.Hour, nil) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		entries, err := store.Query(context.Background(), QueryFilter{SessionID: "s"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(entries) == 1 {
			if entries[0].ID != "fresh" {
				t.Errorf("expected fresh entry to survive, got %q", entries[0].ID)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expired entry not swept, %d entries remain", len(entries))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Sweep returned %v", err)
	}
}

func TestSweepDisabled(t *testing.T) {
	store := setupStore(t)
	if err := store.Sweep(context.Background(), 0, time.Hour, nil); err != nil {
		t.Errorf("Sweep with zero retention returned %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.GetByID(context.Background(), "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent ID, got nil")
	}
}

func TestFromTurn(t *testing.T) {
	res := &coach.Result{
		Mode:            prompts.ModeInterview,
		Model:           "gemini-2.5-flash",
		Structured:      true,
		ProgressPercent: 20,
		Usage:           llm.Usage{InputTokens: 10, OutputTokens: 5},
	}
	changes := session.TurnChanges{FactFields: []string{"petitionerName"}, SafetyFlags: 1}

	e := FromTurn("s1", "google", res, changes, 1500*time.Millisecond)

	if e.SessionID != "s1" || e.Mode != "interview" || e.Provider != "google" {
		t.Errorf("unexpected identity fields: %+v", e)
	}
	if e.LatencyMS != 1500 || e.InputTokens != 10 || e.SafetyFlags != 1 {
		t.Errorf("unexpected counts: %+v", e)
	}
	if e.PatternVersion != "" {
		t.Errorf("PatternVersion = %q, want empty for a normal turn", e.PatternVersion)
	}

	interrupted := &coach.Result{Mode: prompts.ModeInterview, SafetyInterrupt: true, Pattern: "call_police"}
	e = FromTurn("s1", "google", interrupted, session.TurnChanges{SafetyFlags: 1}, 0)
	if e.PatternVersion != danger.PatternVersion || e.Pattern != "call_police" {
		t.Errorf("pattern = %q@%q", e.Pattern, e.PatternVersion)
	}
	if e.Provider != "" {
		t.Errorf("Provider = %q, want empty when the model was not called", e.Provider)
	}
}

func TestFailed(t *testing.T) {
	e := Failed("s1", "chat", "openai", errors.New("upstream unavailable"), time.Second)
	if e.Error != "upstream unavailable" || e.LatencyMS != 1000 {
		t.Errorf("unexpected entry: %+v", e)
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r, store
}

func TestHTTPGetByID(t *testing.T) {
	r, store := setupRouter(t)

	if err := store.Log(context.Background(), Entry{ID: "http-1", SessionID: "s1", Mode: "chat"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit/http-1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got Entry
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "http-1" || got.SessionID != "s1" {
		t.Errorf("got %+v", got)
	}
}

func TestHTTPGetByIDNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/audit/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "not_found" {
		t.Errorf("code = %q, want not_found", body["code"])
	}
}

func TestHTTPQueryWithFilter(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a"} {
		if err := store.Log(ctx, Entry{SessionID: id, Mode: "chat"}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/audit?session_id=a&limit=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var entries []Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for a, got %d", len(entries))
	}
}
