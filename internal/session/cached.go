package session

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of sessions CachedStore keeps by default.
const DefaultCacheSize = 256

// CachedStore keeps recently used sessions in an LRU in front of another
// store. Writes go through to the backing store first.
type CachedStore struct {
	next  Store
	cache *lru.Cache[string, *CaseSession]
}

// NewCachedStore wraps next with an LRU of the given size.
func NewCachedStore(next Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *CaseSession](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{next: next, cache: c}, nil
}

func (c *CachedStore) Create(ctx context.Context, s *CaseSession) error {
	if err := c.next.Create(ctx, s); err != nil {
		return err
	}
	c.cache.Add(s.ID, s.Clone())
	return nil
}

func (c *CachedStore) Load(ctx context.Context, id string) (*CaseSession, error) {
	if s, ok := c.cache.Get(id); ok {
		return s.Clone(), nil
	}
	s, err := c.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, s.Clone())
	return s, nil
}

func (c *CachedStore) Save(ctx context.Context, s *CaseSession) error {
	if err := c.next.Save(ctx, s); err != nil {
		c.cache.Remove(s.ID)
		return err
	}
	c.cache.Add(s.ID, s.Clone())
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	c.cache.Remove(id)
	return c.next.Delete(ctx, id)
}

// List always reads through to the backing store.
func (c *CachedStore) List(ctx context.Context) ([]*CaseSession, error) {
	return c.next.List(ctx)
}
