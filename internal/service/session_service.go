package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/session"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExplainQueue hands explain jobs to the background worker. A nil queue
// disables backfilling; the wrong-answer fallback text stays in place.
type ExplainQueue interface {
	Push(ctx context.Context, job model.ExplainJob) error
}

// SessionService owns the live controllers for in-progress attempts and the
// scoring pipeline. One controller per test id; all transports (REST and
// WebSocket) share the same instance so answers and the countdown stay
// consistent.
type SessionService struct {
	st    store.Store
	eval  *evalclient.Client
	queue ExplainQueue
	log   zerolog.Logger

	defaultDurationMinutes int

	mu   sync.Mutex
	live map[uuid.UUID]*session.Controller
}

func NewSessionService(st store.Store, eval *evalclient.Client, queue ExplainQueue, defaultDurationMinutes int, log zerolog.Logger) *SessionService {
	return &SessionService{
		st:                     st,
		eval:                   eval,
		queue:                  queue,
		log:                    log.With().Str("component", "session_service").Logger(),
		defaultDurationMinutes: defaultDurationMinutes,
		live:                   make(map[uuid.UUID]*session.Controller),
	}
}

// Attach returns the live controller for a test, creating one from the
// persisted snapshot on first use.
func (s *SessionService) Attach(ctx context.Context, testID uuid.UUID) (*session.Controller, error) {
	s.mu.Lock()
	if ctrl, ok := s.live[testID]; ok {
		s.mu.Unlock()
		return ctrl, nil
	}
	s.mu.Unlock()

	test, err := s.st.LoadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	ctrl, err := session.NewController(ctx, s.st, test, s.defaultDurationMinutes)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another attach may have won the race; keep the first controller.
	if existing, ok := s.live[testID]; ok {
		return existing, nil
	}
	s.live[testID] = ctrl
	return ctrl, nil
}

// Refresh rebuilds the live controller for a test from its stored record.
// The start endpoint rewrites the stored test; a controller attached before
// that would keep serving the unstarted snapshot with the old duration, so
// the countdown and the expiry auto-submit would never run for it.
// Controllers with a submission in flight or finished keep their guards and
// are left alone.
func (s *SessionService) Refresh(ctx context.Context, testID uuid.UUID) {
	s.mu.Lock()
	ctrl, ok := s.live[testID]
	s.mu.Unlock()
	if !ok || ctrl.SubmitState() != session.SubmitIdle {
		return
	}

	test, err := s.st.LoadTest(ctx, testID)
	if err == nil {
		var fresh *session.Controller
		if fresh, err = session.NewController(ctx, s.st, test, s.defaultDurationMinutes); err == nil {
			s.mu.Lock()
			s.live[testID] = fresh
			s.mu.Unlock()
			return
		}
	}

	// Dropping the stale entry is still correct: the next Attach reloads
	// everything from the store.
	s.log.Warn().
		Err(err).
		Str("test_id", testID.String()).
		Msg("Session refresh failed, dropped live controller")
	s.mu.Lock()
	delete(s.live, testID)
	s.mu.Unlock()
}

// State returns the current session snapshot, preferring the live controller
// over the persisted copy.
func (s *SessionService) State(ctx context.Context, testID uuid.UUID) (*model.SessionState, error) {
	s.mu.Lock()
	ctrl, ok := s.live[testID]
	s.mu.Unlock()
	if ok {
		return ctrl.Snapshot(), nil
	}
	return s.st.LoadSessionState(ctx, testID)
}

// Submit scores a test attempt exactly once. When answers is nil, the live
// session's captured answers are used (the auto-submit path). Each question
// is graded through the evaluation service; a per-question failure degrades
// to a wrong-answer fallback instead of failing the whole submission.
func (s *SessionService) Submit(ctx context.Context, testID uuid.UUID, answers map[string]*string) (*model.SubmitResult, error) {
	test, err := s.st.LoadTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	ctrl, err := s.Attach(ctx, testID)
	if err != nil {
		return nil, err
	}
	if err := ctrl.BeginSubmit(); err != nil {
		return nil, err
	}

	if answers == nil {
		answers = ctrl.Answers()
	}

	result := s.score(ctx, test, answers)
	if err := s.st.SaveResult(ctx, result); err != nil {
		ctrl.FinishSubmit(false)
		return nil, fmt.Errorf("save result: %w", err)
	}
	// The controller stays in the live map so its Done state keeps guarding
	// against repeat submissions of the same attempt.
	ctrl.FinishSubmit(true)

	s.enqueueMissingExplanations(ctx, result)

	s.log.Info().
		Str("test_id", testID.String()).
		Str("result_id", result.ResultID.String()).
		Int("correct", result.CorrectCount).
		Int("wrong", result.WrongCount).
		Msg("Test submitted")
	return result, nil
}

func (s *SessionService) score(ctx context.Context, test *model.TestSession, answers map[string]*string) *model.SubmitResult {
	details := make([]model.ResultDetail, 0, len(test.Questions))
	correct := 0

	for i := range test.Questions {
		q := &test.Questions[i]

		userAnswer := answers[q.ID.String()]
		value := ""
		if userAnswer != nil {
			value = *userAnswer
		}

		eval, err := s.eval.Evaluate(ctx, q.Text, q.OptionMap(), value)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("question_id", q.ID.String()).
				Msg("Evaluation failed, recording fallback detail")
			details = append(details, model.ResultDetail{
				QuestionID:    q.ID,
				UserAnswer:    userAnswer,
				CorrectAnswer: "Unavailable",
				IsCorrect:     false,
				Explanation:   "Could not evaluate this answer.",
			})
			continue
		}

		if eval.IsCorrect {
			correct++
		}
		details = append(details, model.ResultDetail{
			QuestionID:    q.ID,
			UserAnswer:    userAnswer,
			CorrectAnswer: eval.CorrectAnswer,
			IsCorrect:     eval.IsCorrect,
			Explanation:   eval.Explanation,
		})
	}

	total := len(test.Questions)
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	return &model.SubmitResult{
		ResultID:     uuid.New(),
		TestID:       test.ID,
		Score:        float64(correct),
		Accuracy:     accuracy,
		CorrectCount: correct,
		WrongCount:   total - correct,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
}

// enqueueMissingExplanations queues backfill jobs for wrong answers whose
// explanation could not be produced synchronously.
func (s *SessionService) enqueueMissingExplanations(ctx context.Context, result *model.SubmitResult) {
	if s.queue == nil {
		return
	}
	for _, d := range result.Details {
		if d.IsCorrect || d.Explanation != "" || d.CorrectAnswer == "Unavailable" {
			continue
		}
		job := model.ExplainJob{
			ResultID:      result.ResultID,
			QuestionID:    d.QuestionID,
			CorrectAnswer: d.CorrectAnswer,
		}
		if err := s.queue.Push(ctx, job); err != nil {
			s.log.Warn().
				Err(err).
				Str("question_id", d.QuestionID.String()).
				Msg("Failed to queue explain job")
		}
	}
}
