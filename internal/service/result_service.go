package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/review"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ResultService reads stored results and serves the review screen.
type ResultService struct {
	st   store.Store
	eval *evalclient.Client
	log  zerolog.Logger
}

func NewResultService(st store.Store, eval *evalclient.Client, log zerolog.Logger) *ResultService {
	return &ResultService{
		st:   st,
		eval: eval,
		log:  log.With().Str("component", "result_service").Logger(),
	}
}

// Latest returns the most recently stored result.
func (s *ResultService) Latest(ctx context.Context) (*model.SubmitResult, error) {
	return s.st.LatestResult(ctx)
}

// Get loads a result by id.
func (s *ResultService) Get(ctx context.Context, id uuid.UUID) (*model.SubmitResult, error) {
	return s.st.LoadResult(ctx, id)
}

// Review returns the result's details filtered for the review screen. The
// bookmarked filter consults the session snapshot of the attempt; a missing
// snapshot simply means nothing was bookmarked.
func (s *ResultService) Review(ctx context.Context, id uuid.UUID, filter review.Filter) (*model.SubmitResult, []model.ResultDetail, error) {
	result, err := s.st.LoadResult(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	bookmarks := map[string]struct{}{}
	if filter == review.FilterBookmarked {
		state, err := s.st.LoadSessionState(ctx, result.TestID)
		switch {
		case err == nil:
			bookmarks = review.BookmarkSet(state.Bookmarks)
		case errors.Is(err, store.ErrNotFound):
			// No snapshot, no bookmarks.
		default:
			return nil, nil, err
		}
	}

	return result, review.Apply(result.Details, bookmarks, filter), nil
}

// Explain generates an on-demand explanation for a stored question.
func (s *ResultService) Explain(ctx context.Context, req *model.ExplanationRequest) (*model.ExplanationResponse, error) {
	q, err := s.st.LoadQuestion(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	explanation, err := s.eval.Explain(ctx, q.Text, q.OptionMap(), req.CorrectAnswer)
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	return &model.ExplanationResponse{
		QuestionID:  req.QuestionID,
		Explanation: explanation,
	}, nil
}
