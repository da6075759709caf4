package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/db"
	"github.com/elilinden/Support-bot/internal/facts"
)

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	older := New("First", facts.Jurisdiction{})
	older.UpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := New("", facts.Jurisdiction{})
	newer.UpdatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))

	got, err := store.Load(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, older.OPFacts, got.OPFacts)
	assert.Equal(t, facts.DefaultJurisdiction(), got.Jurisdiction)

	// Loaded copies are independent of the stored value.
	got.Title = "changed locally"
	again, err := store.Load(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", again.Title)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, DefaultTitle, list[0].Title)

	again.AddMessage(coach.RoleUser, "hello")
	again.UpdatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, again))

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.ID, list[0].ID)
	require.Len(t, list[0].Conversation, 1)
	assert.Equal(t, "hello", list[0].Conversation[0].Content)

	require.NoError(t, store.Delete(ctx, older.ID))
	_, err = store.Load(ctx, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, older.ID), ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, New("ghost", facts.Jurisdiction{})), ErrNotFound)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewSQLiteStore(database)
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, openSQLite(t))
}

func TestSQLiteStoreEmptyList(t *testing.T) {
	list, err := openSQLite(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCachedStore(t *testing.T) {
	cs, err := NewCachedStore(NewMemoryStore(), 4)
	require.NoError(t, err)
	testStore(t, cs)
}

func TestCachedStoreServesCopies(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	cs, err := NewCachedStore(backing, 0)
	require.NoError(t, err)

	s := New("cached", facts.Jurisdiction{})
	require.NoError(t, cs.Create(ctx, s))
	s.Title = "mutated after create"

	got, err := cs.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Title)

	require.NoError(t, cs.Delete(ctx, s.ID))
	_, err = cs.Load(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("OPCOACH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("OPCOACH_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.FlushDB(ctx).Err())

	testStore(t, NewRedisStore(client))
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("OPCOACH_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("OPCOACH_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	pool, err := ConnectPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE case_sessions`)
	require.NoError(t, err)

	testStore(t, NewPostgresStore(pool))
}

func TestConnectRedisBadURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "not a url")
	assert.ErrorContains(t, err, "parse redis URL")
}

func TestDecodeOrdersTimeline(t *testing.T) {
	s, err := decode([]byte(`{"id": "s1", "timeline": [
		{"id": "b", "date": "2024-03-01", "title": "Hearing"},
		{"id": "c", "date": "later"},
		{"id": "a", "date": "2024-01", "title": "First incident"}
	]}`))
	require.NoError(t, err)

	var ids []string
	for _, ev := range s.Timeline {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.NotNil(t, s.Conversation)
}
