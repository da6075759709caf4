package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elilinden/Support-bot/internal/db"
)

// Store provides persistence for audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

const columns = `id, timestamp, session_id, mode, provider, model, safety_interrupt,
	pattern, pattern_version, structured, changed_fields, timeline_events,
	safety_flags, artifacts, progress_percent, input_tokens, output_tokens,
	cost_usd, latency_ms, error`

// Log inserts a new audit entry. If entry.ID is empty a UUID is generated,
// and a zero Timestamp becomes the current time.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ChangedFields == nil {
		entry.ChangedFields = []string{}
	}

	changed, err := json.Marshal(entry.ChangedFields)
	if err != nil {
		return fmt.Errorf("marshalling changed fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO turn_audit (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.DateTime),
		entry.SessionID,
		entry.Mode,
		entry.Provider,
		entry.Model,
		entry.SafetyInterrupt,
		entry.Pattern,
		entry.PatternVersion,
		entry.Structured,
		string(changed),
		entry.TimelineEvents,
		entry.SafetyFlags,
		entry.Artifacts,
		entry.ProgressPercent,
		entry.InputTokens,
		entry.OutputTokens,
		entry.CostUSD,
		entry.LatencyMS,
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM turn_audit WHERE id = ?`, id)
	return scanInto(row)
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	SessionID       string
	SafetyInterrupt *bool
	Since           *time.Time
	Until           *time.Time
	Limit           int
	Offset          int
}

// Query returns audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.SafetyInterrupt != nil {
		clauses = append(clauses, "safety_interrupt = ?")
		args = append(args, *filter.SafetyInterrupt)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := "SELECT " + columns + " FROM turn_audit"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteSession removes every entry for a session. Returns the number of
// deleted rows.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM turn_audit WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("deleting session audit entries: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBefore removes all audit entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM turn_audit WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e           Entry
		ts, changed string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.SessionID, &e.Mode, &e.Provider, &e.Model, &e.SafetyInterrupt,
		&e.Pattern, &e.PatternVersion, &e.Structured, &changed, &e.TimelineEvents,
		&e.SafetyFlags, &e.Artifacts, &e.ProgressPercent, &e.InputTokens, &e.OutputTokens,
		&e.CostUSD, &e.LatencyMS, &e.Error,
	)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	}

	if err := json.Unmarshal([]byte(changed), &e.ChangedFields); err != nil || e.ChangedFields == nil {
		e.ChangedFields = []string{}
	}

	return &e, nil
}
