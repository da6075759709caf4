package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/elilinden/Support-bot/internal/db"
)

// tsLayout sorts lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists sessions as JSON documents in the case_sessions
// table.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store backed by the given database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Create(ctx context.Context, cs *CaseSession) error {
	data, err := encode(cs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO case_sessions (id, title, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		cs.ID, cs.Title, string(data),
		cs.CreatedAt.UTC().Format(tsLayout),
		cs.UpdatedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*CaseSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM case_sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return decode([]byte(data))
}

func (s *SQLiteStore) Save(ctx context.Context, cs *CaseSession) error {
	data, err := encode(cs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE case_sessions SET title = ?, data = ?, updated_at = ? WHERE id = ?`,
		cs.Title, string(data), cs.UpdatedAt.UTC().Format(tsLayout), cs.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return expectOne(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM case_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return expectOne(res)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*CaseSession, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM case_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	out := []*CaseSession{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		cs, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
