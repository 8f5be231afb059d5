// Package session implements the test-session state machine: question
// navigation, answer capture, bookmarking, countdown handling and
// write-through persistence of the session snapshot.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/google/uuid"
)

// SubmitState tracks the submission lifecycle explicitly so re-entrant
// submit attempts (double click, duplicate expiry signal) are rejected
// instead of racing a boolean flag.
type SubmitState string

const (
	SubmitIdle     SubmitState = "IDLE"
	SubmitInFlight SubmitState = "IN_FLIGHT"
	SubmitDone     SubmitState = "DONE"
)

var (
	ErrSubmitInFlight   = errors.New("session: submit already in flight")
	ErrAlreadySubmitted = errors.New("session: already submitted")
)

// Controller owns the in-memory state of one test attempt and reconciles it
// with the persisted snapshot through the store port. Every mutation writes
// the full snapshot back (write-through, no debouncing).
type Controller struct {
	mu sync.Mutex
	st store.Store

	testID          uuid.UUID
	questions       []model.Question
	answers         map[string]string
	bookmarks       map[string]struct{}
	index           int
	durationMinutes int
	started         bool
	remaining       int
	submit          SubmitState
}

// NewController initializes a controller for the given test, resuming from
// the persisted snapshot when one exists. The persisted remaining-seconds
// value is preferred over the full duration as the timer seed, so a reload
// cannot be used to reset the clock.
func NewController(ctx context.Context, st store.Store, test *model.TestSession, defaultDurationMinutes int) (*Controller, error) {
	c := &Controller{
		st:              st,
		testID:          test.ID,
		questions:       test.Questions,
		answers:         map[string]string{},
		bookmarks:       map[string]struct{}{},
		durationMinutes: test.DurationMinutes,
		started:         test.Started,
	}
	if c.durationMinutes <= 0 {
		c.durationMinutes = defaultDurationMinutes
	}

	clockRestored := false
	prev, err := st.LoadSessionState(ctx, test.ID)
	switch {
	case err == nil:
		clockRestored = c.restore(prev)
	case errors.Is(err, store.ErrNotFound):
		// Fresh session.
	default:
		return nil, err
	}

	c.clampIndex()
	// A started snapshot keeps its remaining seconds, even zero: a clock
	// that ran out while disconnected expires on the next start instead of
	// handing the time back. Everything else seeds the full duration.
	if !clockRestored {
		c.remaining = c.durationMinutes * 60
	}
	return c, nil
}

// restore merges a persisted snapshot into the controller. Answers,
// bookmarks and position always carry over; the clock carries over only when
// the snapshot was taken after the test started, so a pre-start snapshot
// cannot pin a stale duration. Reports whether the clock was restored.
func (c *Controller) restore(prev *model.SessionState) bool {
	if prev.Answers != nil {
		c.answers = prev.Answers
	}
	for _, id := range prev.Bookmarks {
		c.bookmarks[id] = struct{}{}
	}
	c.index = prev.CurrentIndex

	if !prev.Started {
		return false
	}
	c.started = true
	if prev.DurationMinutes > 0 {
		c.durationMinutes = prev.DurationMinutes
	}
	c.remaining = prev.RemainingSeconds
	return true
}

// TestID returns the owning test id.
func (c *Controller) TestID() uuid.UUID {
	return c.testID
}

// TimerSeed returns the second count the countdown should start from.
func (c *Controller) TimerSeed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Started reports whether the test was started with a duration.
func (c *Controller) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// RecordAnswer sets or overwrites the answer for a question (last write
// wins). The value is an option key for multiple-choice questions or free
// text otherwise; no client-side validation against option existence.
func (c *Controller) RecordAnswer(ctx context.Context, questionID, value string) error {
	c.mu.Lock()
	c.answers[questionID] = value
	c.mu.Unlock()
	return c.persist(ctx)
}

// ToggleBookmark flips the bookmark for a question and returns the new
// membership. Toggling twice restores the original set.
func (c *Controller) ToggleBookmark(ctx context.Context, questionID string) (bool, error) {
	c.mu.Lock()
	_, present := c.bookmarks[questionID]
	if present {
		delete(c.bookmarks, questionID)
	} else {
		c.bookmarks[questionID] = struct{}{}
	}
	c.mu.Unlock()
	return !present, c.persist(ctx)
}

// Goto navigates to an absolute index, clamped into [0, len-1].
func (c *Controller) Goto(ctx context.Context, index int) (int, error) {
	c.mu.Lock()
	c.index = index
	c.clampIndex()
	idx := c.index
	c.mu.Unlock()
	return idx, c.persist(ctx)
}

// Step navigates relative to the current index, clamped into range.
func (c *Controller) Step(ctx context.Context, delta int) (int, error) {
	c.mu.Lock()
	c.index += delta
	c.clampIndex()
	idx := c.index
	c.mu.Unlock()
	return idx, c.persist(ctx)
}

// FirstUnanswered jumps to the first question in list order whose answer is
// absent or empty. No-op when every question is answered.
func (c *Controller) FirstUnanswered(ctx context.Context) (int, error) {
	c.mu.Lock()
	moved := false
	for i, q := range c.questions {
		if c.answers[q.ID.String()] == "" {
			c.index = i
			moved = true
			break
		}
	}
	idx := c.index
	c.mu.Unlock()
	if !moved {
		return idx, nil
	}
	return idx, c.persist(ctx)
}

// Tick records the countdown value reported by the timer. Remaining seconds
// never increase while the session is active, so late or duplicate ticks
// cannot hand time back.
func (c *Controller) Tick(ctx context.Context, remainingSeconds int) error {
	c.mu.Lock()
	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	if remainingSeconds < c.remaining {
		c.remaining = remainingSeconds
	}
	c.mu.Unlock()
	return c.persist(ctx)
}

// BeginSubmit transitions Idle→InFlight. It fails when a submission is
// already running or done, giving the single-flight guarantee.
func (c *Controller) BeginSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.submit {
	case SubmitInFlight:
		return ErrSubmitInFlight
	case SubmitDone:
		return ErrAlreadySubmitted
	}
	c.submit = SubmitInFlight
	return nil
}

// FinishSubmit resolves the in-flight submission: success is terminal,
// failure returns to Idle so the user can retry.
func (c *Controller) FinishSubmit(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.submit = SubmitDone
	} else {
		c.submit = SubmitIdle
	}
}

// SubmitState returns the current submission state.
func (c *Controller) SubmitState() SubmitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submit
}

// Answers returns a copy of the answers mapping, with null entries for
// questions that were never answered, in the wire shape of the submit call.
func (c *Controller) Answers() map[string]*string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]*string, len(c.questions))
	for _, q := range c.questions {
		id := q.ID.String()
		if v, ok := c.answers[id]; ok && v != "" {
			val := v
			out[id] = &val
		} else {
			out[id] = nil
		}
	}
	return out
}

// Snapshot builds the persisted representation of the current state.
// Bookmarks are sorted so snapshots are deterministic.
func (c *Controller) Snapshot() *model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() *model.SessionState {
	answers := make(map[string]string, len(c.answers))
	for k, v := range c.answers {
		answers[k] = v
	}
	bookmarks := make([]string, 0, len(c.bookmarks))
	for id := range c.bookmarks {
		bookmarks = append(bookmarks, id)
	}
	sort.Strings(bookmarks)

	return &model.SessionState{
		TestID:           c.testID,
		Answers:          answers,
		Bookmarks:        bookmarks,
		CurrentIndex:     c.index,
		DurationMinutes:  c.durationMinutes,
		Started:          c.started,
		RemainingSeconds: c.remaining,
	}
}

func (c *Controller) persist(ctx context.Context) error {
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return c.st.SaveSessionState(ctx, snap)
}

func (c *Controller) clampIndex() {
	if len(c.questions) == 0 {
		c.index = 0
		return
	}
	if c.index < 0 {
		c.index = 0
	}
	if c.index > len(c.questions)-1 {
		c.index = len(c.questions) - 1
	}
}
