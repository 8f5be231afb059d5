package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots in Redis. All writes go through pipelines so
// the payload key and its index entries stay consistent.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore. ttl bounds the lifetime of session
// snapshots and test payloads; zero keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) SaveTest(ctx context.Context, t *model.TestSession) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal test: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.StoreKey.TestPayloadKey(t.ID.String()), payload, s.ttl)
	pipe.Set(ctx, config.StoreKey.CurrentTestKey(), payload, s.ttl)
	for i := range t.Questions {
		q := &t.Questions[i]
		qJSON, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question: %w", err)
		}
		pipe.Set(ctx, config.StoreKey.QuestionKey(q.ID.String()), qJSON, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save test: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadTest(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return s.getTest(ctx, config.StoreKey.TestPayloadKey(id.String()))
}

func (s *RedisStore) CurrentTest(ctx context.Context) (*model.TestSession, error) {
	return s.getTest(ctx, config.StoreKey.CurrentTestKey())
}

func (s *RedisStore) getTest(ctx context.Context, key string) (*model.TestSession, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	var t model.TestSession
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal test: %w", err)
	}
	return &t, nil
}

func (s *RedisStore) LoadQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	data, err := s.rdb.Get(ctx, config.StoreKey.QuestionKey(id.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	var q model.Question
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal question: %w", err)
	}
	return &q, nil
}

func (s *RedisStore) SaveSessionState(ctx context.Context, state *model.SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	key := config.StoreKey.SessionStateKey(state.TestID.String())
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadSessionState(ctx context.Context, testID uuid.UUID) (*model.SessionState, error) {
	key := config.StoreKey.SessionStateKey(testID.String())
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}

	return decodeSessionState(data, testID), nil
}

func (s *RedisStore) SaveResult(ctx context.Context, r *model.SubmitResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.StoreKey.ResultKey(r.ResultID.String()), payload, s.ttl)
	pipe.Set(ctx, config.StoreKey.LatestResultKey(), payload, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdateResult(ctx context.Context, r *model.SubmitResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if err := s.rdb.Set(ctx, config.StoreKey.ResultKey(r.ResultID.String()), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("update result: %w", err)
	}

	// Refresh the latest snapshot only when it is this result.
	latest, err := s.LatestResult(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if latest.ResultID == r.ResultID {
		if err := s.rdb.Set(ctx, config.StoreKey.LatestResultKey(), payload, s.ttl).Err(); err != nil {
			return fmt.Errorf("update latest result: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) LoadResult(ctx context.Context, id uuid.UUID) (*model.SubmitResult, error) {
	return s.getResult(ctx, config.StoreKey.ResultKey(id.String()))
}

func (s *RedisStore) LatestResult(ctx context.Context) (*model.SubmitResult, error) {
	return s.getResult(ctx, config.StoreKey.LatestResultKey())
}

func (s *RedisStore) getResult(ctx context.Context, key string) (*model.SubmitResult, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	var r model.SubmitResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &r, nil
}
