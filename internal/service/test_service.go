// Package service implements the application use cases on top of the store
// port and the evaluation service client.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoQuestions means the uploaded document yielded zero questions.
	ErrNoQuestions = errors.New("service: no questions found in document")
	// ErrCompanyModeDisabled means company assessments are switched off.
	ErrCompanyModeDisabled = errors.New("service: company mode is disabled")
)

// TestService creates and manages test sessions.
type TestService struct {
	st   store.Store
	eval *evalclient.Client
	cfg  *config.Config
	log  zerolog.Logger
}

func NewTestService(st store.Store, eval *evalclient.Client, cfg *config.Config, log zerolog.Logger) *TestService {
	return &TestService{
		st:   st,
		eval: eval,
		cfg:  cfg,
		log:  log.With().Str("component", "test_service").Logger(),
	}
}

// CreateFromPDF extracts questions from an uploaded PDF and stores a new,
// not-yet-started test. Returns ErrNoQuestions when extraction comes back
// empty.
func (s *TestService) CreateFromPDF(ctx context.Context, filename string, content []byte) (*model.TestSession, error) {
	extracted, err := s.eval.ExtractQuestions(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("extract questions: %w", err)
	}
	if len(extracted) == 0 {
		return nil, ErrNoQuestions
	}

	test := &model.TestSession{
		ID:              uuid.New(),
		Source:          filename,
		DurationMinutes: s.cfg.DefaultDurationMinutes,
		CreatedAt:       time.Now().UTC(),
		Questions:       buildQuestions(extracted),
	}

	if err := s.st.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("source", filename).
		Int("questions", len(test.Questions)).
		Msg("Test created from PDF")
	return test, nil
}

// Get loads a test by id.
func (s *TestService) Get(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return s.st.LoadTest(ctx, id)
}

// Current loads the most recently created test.
func (s *TestService) Current(ctx context.Context) (*model.TestSession, error) {
	return s.st.CurrentTest(ctx)
}

// Start marks a test as started with the chosen duration. Starting an
// already-started test is idempotent: the original start time and duration
// are kept.
func (s *TestService) Start(ctx context.Context, id uuid.UUID, durationMinutes int) (*model.TestSession, error) {
	test, err := s.st.LoadTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Started {
		return test, nil
	}

	now := time.Now().UTC()
	test.Started = true
	test.StartedAt = &now
	test.DurationMinutes = durationMinutes

	if err := s.st.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Int("duration_minutes", durationMinutes).
		Msg("Test started")
	return test, nil
}

// Retry creates a fresh, not-started test over the same questions. The new
// attempt gets its own id, so the old session snapshot and result stay
// untouched.
func (s *TestService) Retry(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	prev, err := s.st.LoadTest(ctx, id)
	if err != nil {
		return nil, err
	}

	test := &model.TestSession{
		ID:              uuid.New(),
		Source:          prev.Source,
		DurationMinutes: prev.DurationMinutes,
		CreatedAt:       time.Now().UTC(),
		Questions:       prev.Questions,
	}

	if err := s.st.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("previous_test_id", prev.ID.String()).
		Msg("Retry test created")
	return test, nil
}

// CreateFromCompany generates a company-themed assessment through the
// evaluation service. The upstream difficulty and duration are kept, with
// fallbacks when the profile omits them.
func (s *TestService) CreateFromCompany(ctx context.Context, req *model.CompanyTestRequest) (*model.CompanyTestResponse, error) {
	if !s.cfg.CompanyModeEnabled {
		return nil, ErrCompanyModeDisabled
	}

	assessment, err := s.eval.CompanyAssessment(ctx, req.Company, req.UseCache)
	if err != nil {
		return nil, fmt.Errorf("company assessment: %w", err)
	}
	if len(assessment.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	duration := assessment.DurationMinutes
	if duration <= 0 {
		duration = 90
	}
	difficulty := assessment.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}
	name := assessment.CompanyName
	if name == "" {
		name = req.Company
	}

	test := &model.TestSession{
		ID:              uuid.New(),
		Source:          name,
		DurationMinutes: duration,
		CreatedAt:       time.Now().UTC(),
		Questions:       buildQuestions(assessment.Questions),
	}

	if err := s.st.SaveTest(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}

	s.log.Info().
		Str("test_id", test.ID.String()).
		Str("company", name).
		Int("questions", len(test.Questions)).
		Msg("Company assessment created")

	return &model.CompanyTestResponse{
		TestID:          test.ID,
		CompanyName:     name,
		TotalQuestions:  len(test.Questions),
		Difficulty:      difficulty,
		DurationMinutes: duration,
		Message:         fmt.Sprintf("Assessment generated for %s", name),
	}, nil
}

// CachedCompanies lists companies with a cached research profile.
func (s *TestService) CachedCompanies(ctx context.Context) ([]string, error) {
	if !s.cfg.CompanyModeEnabled {
		return nil, ErrCompanyModeDisabled
	}
	return s.eval.CachedCompanies(ctx)
}

// CompanyProfile returns the research profile behind a company assessment.
func (s *TestService) CompanyProfile(ctx context.Context, company string) (json.RawMessage, error) {
	if !s.cfg.CompanyModeEnabled {
		return nil, ErrCompanyModeDisabled
	}
	return s.eval.CompanyProfile(ctx, company)
}

func buildQuestions(extracted []evalclient.ExtractedQuestion) []model.Question {
	questions := make([]model.Question, 0, len(extracted))
	for i, eq := range extracted {
		number := eq.Number
		if number <= 0 {
			number = i + 1
		}
		questions = append(questions, model.NewQuestion(number, eq.Text, eq.Options))
	}
	return questions
}
