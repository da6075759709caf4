package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Store persists case sessions. Implementations return copies, so callers
// may modify a loaded session freely until they Save it.
type Store interface {
	Create(ctx context.Context, s *CaseSession) error
	Load(ctx context.Context, id string) (*CaseSession, error)
	Save(ctx context.Context, s *CaseSession) error
	Delete(ctx context.Context, id string) error
	// List returns every session, most recently updated first.
	List(ctx context.Context) ([]*CaseSession, error)
}

func encode(s *CaseSession) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
	}
	return b, nil
}

func decode(data []byte) (*CaseSession, error) {
	var s CaseSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	s.normalize()
	return &s, nil
}

func sortByUpdated(list []*CaseSession) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}
