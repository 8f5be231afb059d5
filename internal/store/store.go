// Package store is the persistence port for session snapshots, test payloads
// and results. The controller holds state in memory and calls this port at
// defined mutation points, so tests can substitute the in-memory fake.
package store

import (
	"context"
	"errors"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: not found")

// Store is the key-value persistence port.
type Store interface {
	// SaveTest stores the test payload, indexes its questions and marks it
	// as the current test.
	SaveTest(ctx context.Context, t *model.TestSession) error
	LoadTest(ctx context.Context, id uuid.UUID) (*model.TestSession, error)
	CurrentTest(ctx context.Context) (*model.TestSession, error)
	LoadQuestion(ctx context.Context, id uuid.UUID) (*model.Question, error)

	// SaveSessionState writes through the full snapshot for its test id.
	SaveSessionState(ctx context.Context, s *model.SessionState) error
	// LoadSessionState returns ErrNotFound when no snapshot exists. A
	// corrupted snapshot is decoded field by field, falling back to
	// defaults per field rather than failing the whole load.
	LoadSessionState(ctx context.Context, testID uuid.UUID) (*model.SessionState, error)

	// SaveResult stores the result and marks it as the latest.
	SaveResult(ctx context.Context, r *model.SubmitResult) error
	// UpdateResult rewrites a stored result in place, refreshing the
	// latest snapshot only if it points at the same result.
	UpdateResult(ctx context.Context, r *model.SubmitResult) error
	LoadResult(ctx context.Context, id uuid.UUID) (*model.SubmitResult, error)
	LatestResult(ctx context.Context) (*model.SubmitResult, error)
}
