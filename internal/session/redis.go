package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "opcoach:session:"
	// redisIndexKey is a sorted set of session ids scored by update time.
	redisIndexKey = "opcoach:sessions"
)

// RedisStore keeps each session as a JSON string under its own key.
type RedisStore struct {
	client *redis.Client
}

// ConnectRedis creates a Redis client from a URL and checks it responds.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Create(ctx context.Context, s *CaseSession) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, redisKey(s.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	return r.index(ctx, s)
}

func (r *RedisStore) index(ctx context.Context, s *CaseSession) error {
	err := r.client.ZAdd(ctx, redisIndexKey, redis.Z{
		Score:  float64(s.UpdatedAt.UnixMilli()),
		Member: s.ID,
	}).Err()
	if err != nil {
		return fmt.Errorf("indexing session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (*CaseSession, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, s *CaseSession) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, redisKey(s.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return r.index(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, redisKey(id))
		p.ZRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]*CaseSession, error) {
	ids, err := r.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(ids) == 0 {
		return []*CaseSession{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	out := make([]*CaseSession, 0, len(vals))
	for _, v := range vals {
		// Entries deleted between the two calls come back as nil.
		str, ok := v.(string)
		if !ok {
			continue
		}
		s, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
