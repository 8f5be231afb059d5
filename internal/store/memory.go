package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used in tests and single-node dev runs.
// Values are stored as JSON so round-trip behavior matches RedisStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	currentTest  []byte
	latestResult []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Corrupt overwrites the raw snapshot for a key, for fault-injection tests.
func (s *MemoryStore) Corrupt(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
}

func (s *MemoryStore) SaveTest(_ context.Context, t *model.TestSession) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data["test:"+t.ID.String()] = payload
	s.currentTest = payload
	for i := range t.Questions {
		qJSON, err := json.Marshal(&t.Questions[i])
		if err != nil {
			return err
		}
		s.data["question:"+t.Questions[i].ID.String()] = qJSON
	}
	return nil
}

func (s *MemoryStore) LoadTest(_ context.Context, id uuid.UUID) (*model.TestSession, error) {
	s.mu.RLock()
	raw, ok := s.data["test:"+id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var t model.TestSession
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MemoryStore) CurrentTest(_ context.Context) (*model.TestSession, error) {
	s.mu.RLock()
	raw := s.currentTest
	s.mu.RUnlock()
	if raw == nil {
		return nil, ErrNotFound
	}

	var t model.TestSession
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MemoryStore) LoadQuestion(_ context.Context, id uuid.UUID) (*model.Question, error) {
	s.mu.RLock()
	raw, ok := s.data["question:"+id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var q model.Question
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *MemoryStore) SaveSessionState(_ context.Context, state *model.SessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data["testState:"+state.TestID.String()] = payload
	return nil
}

func (s *MemoryStore) LoadSessionState(_ context.Context, testID uuid.UUID) (*model.SessionState, error) {
	s.mu.RLock()
	raw, ok := s.data["testState:"+testID.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	return decodeSessionState(raw, testID), nil
}

func (s *MemoryStore) SaveResult(_ context.Context, r *model.SubmitResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data["result:"+r.ResultID.String()] = payload
	s.latestResult = payload
	return nil
}

func (s *MemoryStore) UpdateResult(ctx context.Context, r *model.SubmitResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data["result:"+r.ResultID.String()] = payload

	if s.latestResult != nil {
		var latest model.SubmitResult
		if json.Unmarshal(s.latestResult, &latest) == nil && latest.ResultID == r.ResultID {
			s.latestResult = payload
		}
	}
	return nil
}

func (s *MemoryStore) LoadResult(_ context.Context, id uuid.UUID) (*model.SubmitResult, error) {
	s.mu.RLock()
	raw, ok := s.data["result:"+id.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var r model.SubmitResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MemoryStore) LatestResult(_ context.Context) (*model.SubmitResult, error) {
	s.mu.RLock()
	raw := s.latestResult
	s.mu.RUnlock()
	if raw == nil {
		return nil, ErrNotFound
	}

	var r model.SubmitResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
