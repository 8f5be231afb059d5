package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/review"
	"github.com/Anikesh0001/test-practice/internal/session"
	"github.com/Anikesh0001/test-practice/internal/store"
)

// evalStub fakes the evaluation service. Answers equal to "B" grade as
// correct.
func evalStub(t *testing.T) *evalclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/extract":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"questions": []map[string]interface{}{
					{"number": 1, "text": "Pick B.", "options": map[string]string{"A": "no", "B": "yes"}},
					{"number": 2, "text": "Explain interfaces."},
				},
			})
		case "/v1/evaluate":
			var payload struct {
				UserAnswer string `json:"user_answer"`
			}
			json.NewDecoder(r.Body).Decode(&payload)
			json.NewEncoder(w).Encode(evalclient.Evaluation{
				CorrectAnswer: "B",
				IsCorrect:     payload.UserAnswer == "B",
				Explanation:   "B is the answer.",
			})
		case "/v1/explain":
			json.NewEncoder(w).Encode(map[string]string{"explanation": "Because B."})
		case "/v1/company-assessment":
			json.NewEncoder(w).Encode(evalclient.Assessment{
				CompanyName: "Initech",
				Questions:   []evalclient.ExtractedQuestion{{Number: 1, Text: "TPS reports?"}},
			})
		case "/v1/companies":
			json.NewEncoder(w).Encode(map[string][]string{"companies": {"Initech"}})
		case "/v1/companies/Initech":
			json.NewEncoder(w).Encode(map[string]string{"company_name": "Initech", "industry": "Software"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return evalclient.New(srv.URL, 5*time.Second, zerolog.Nop())
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultDurationMinutes: 30,
		CompanyModeEnabled:     true,
	}
}

type captureQueue struct {
	jobs []model.ExplainJob
}

func (q *captureQueue) Push(_ context.Context, job model.ExplainJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestCreateFromPDFBuildsTaggedQuestions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewTestService(st, evalStub(t), testConfig(), zerolog.Nop())

	test, err := svc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("CreateFromPDF: %v", err)
	}
	if len(test.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(test.Questions))
	}
	if test.Questions[0].Kind != model.QuestionMultipleChoice {
		t.Errorf("question 1 kind = %s, want multiple choice", test.Questions[0].Kind)
	}
	if test.Questions[1].Kind != model.QuestionFreeText {
		t.Errorf("question 2 kind = %s, want free text", test.Questions[1].Kind)
	}
	if test.Started {
		t.Error("new test must not be started")
	}

	// The payload is stored and marked current.
	if _, err := st.LoadTest(ctx, test.ID); err != nil {
		t.Errorf("LoadTest: %v", err)
	}
	current, err := st.CurrentTest(ctx)
	if err != nil || current.ID != test.ID {
		t.Errorf("CurrentTest = %v, %v", current, err)
	}
}

func TestCreateFromPDFEmptyExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"questions": []interface{}{}})
	}))
	defer srv.Close()

	svc := NewTestService(store.NewMemoryStore(), evalclient.New(srv.URL, time.Second, zerolog.Nop()), testConfig(), zerolog.Nop())

	_, err := svc.CreateFromPDF(context.Background(), "empty.pdf", []byte("%PDF"))
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("err = %v, want ErrNoQuestions", err)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewTestService(st, evalStub(t), testConfig(), zerolog.Nop())

	test, err := svc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}

	started, err := svc.Start(ctx, test.ID, 45)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !started.Started || started.StartedAt == nil || started.DurationMinutes != 45 {
		t.Fatalf("started test = %+v", started)
	}

	firstStart := *started.StartedAt
	again, err := svc.Start(ctx, test.ID, 90)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if !again.StartedAt.Equal(firstStart) {
		t.Errorf("started_at changed on second start")
	}
	if again.DurationMinutes != 45 {
		t.Errorf("duration changed on second start: %d", again.DurationMinutes)
	}
}

func TestRetryCreatesFreshAttempt(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewTestService(st, evalStub(t), testConfig(), zerolog.Nop())

	test, err := svc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, test.ID, 30); err != nil {
		t.Fatal(err)
	}

	retry, err := svc.Retry(ctx, test.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if retry.ID == test.ID {
		t.Error("retry must have a new test id")
	}
	if retry.Started || retry.StartedAt != nil {
		t.Error("retry must not be started")
	}
	if len(retry.Questions) != len(test.Questions) || retry.Questions[0].ID != test.Questions[0].ID {
		t.Error("retry must reuse the same questions")
	}
}

func TestSubmitScoresAndGuards(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	cfg := testConfig()
	testSvc := NewTestService(st, eval, cfg, zerolog.Nop())
	queue := &captureQueue{}
	sessionSvc := NewSessionService(st, eval, queue, cfg.DefaultDurationMinutes, zerolog.Nop())

	test, err := testSvc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := testSvc.Start(ctx, test.ID, 30); err != nil {
		t.Fatal(err)
	}

	right := "B"
	answers := map[string]*string{
		test.Questions[0].ID.String(): &right,
		test.Questions[1].ID.String(): nil,
	}

	result, err := sessionSvc.Submit(ctx, test.ID, answers)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.CorrectCount != 1 || result.WrongCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", result.CorrectCount, result.WrongCount)
	}
	if result.Score != 1 {
		t.Errorf("score = %v, want 1", result.Score)
	}
	if result.Accuracy != 50 {
		t.Errorf("accuracy = %v, want 50", result.Accuracy)
	}
	if len(result.Details) != 2 {
		t.Fatalf("details = %d, want 2", len(result.Details))
	}
	if result.Details[0].QuestionID != test.Questions[0].ID {
		t.Error("details must keep question order")
	}

	// The result is stored and becomes the latest.
	latest, err := st.LatestResult(ctx)
	if err != nil || latest.ResultID != result.ResultID {
		t.Errorf("LatestResult = %v, %v", latest, err)
	}

	// Second submit for the same attempt is rejected.
	if _, err := sessionSvc.Submit(ctx, test.ID, answers); !errors.Is(err, session.ErrAlreadySubmitted) {
		t.Errorf("second submit = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitUsesLiveAnswersWhenNil(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	cfg := testConfig()
	testSvc := NewTestService(st, eval, cfg, zerolog.Nop())
	sessionSvc := NewSessionService(st, eval, nil, cfg.DefaultDurationMinutes, zerolog.Nop())

	test, err := testSvc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := testSvc.Start(ctx, test.ID, 30); err != nil {
		t.Fatal(err)
	}

	ctrl, err := sessionSvc.Attach(ctx, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.RecordAnswer(ctx, test.Questions[0].ID.String(), "B"); err != nil {
		t.Fatal(err)
	}

	result, err := sessionSvc.Submit(ctx, test.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.CorrectCount != 1 {
		t.Errorf("correct = %d, want 1 (captured live answer)", result.CorrectCount)
	}
}

func TestRefreshPicksUpStartAfterEarlyAttach(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	cfg := testConfig()
	testSvc := NewTestService(st, eval, cfg, zerolog.Nop())
	sessionSvc := NewSessionService(st, eval, nil, cfg.DefaultDurationMinutes, zerolog.Nop())

	test, err := testSvc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}

	// Client connects before the test is started.
	early, err := sessionSvc.Attach(ctx, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if early.Started() {
		t.Fatal("controller attached before start must not be started")
	}
	if err := early.RecordAnswer(ctx, test.Questions[0].ID.String(), "B"); err != nil {
		t.Fatal(err)
	}

	if _, err := testSvc.Start(ctx, test.ID, 10); err != nil {
		t.Fatal(err)
	}
	sessionSvc.Refresh(ctx, test.ID)

	ctrl, err := sessionSvc.Attach(ctx, test.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ctrl.Started() {
		t.Error("reattached controller must see the started flag")
	}
	if got := ctrl.TimerSeed(); got != 10*60 {
		t.Errorf("timer seed = %d, want %d (chosen duration)", got, 10*60)
	}
	if ctrl.Answers()[test.Questions[0].ID.String()] == nil {
		t.Error("answer recorded before start must survive the refresh")
	}
}

func TestRefreshKeepsFinishedAttemptGuard(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	cfg := testConfig()
	testSvc := NewTestService(st, eval, cfg, zerolog.Nop())
	sessionSvc := NewSessionService(st, eval, nil, cfg.DefaultDurationMinutes, zerolog.Nop())

	test, err := testSvc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := testSvc.Start(ctx, test.ID, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := sessionSvc.Submit(ctx, test.ID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sessionSvc.Refresh(ctx, test.ID)

	if _, err := sessionSvc.Submit(ctx, test.ID, nil); !errors.Is(err, session.ErrAlreadySubmitted) {
		t.Errorf("submit after refresh = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitDegradesPerQuestionOnEvalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()
	broken := evalclient.New(srv.URL, time.Second, zerolog.Nop())

	ctx := context.Background()
	st := store.NewMemoryStore()
	sessionSvc := NewSessionService(st, broken, nil, 30, zerolog.Nop())

	test := &model.TestSession{
		ID:              uuid.New(),
		DurationMinutes: 30,
		Started:         true,
		CreatedAt:       time.Now().UTC(),
		Questions:       []model.Question{model.NewQuestion(1, "q", nil)},
	}
	if err := st.SaveTest(ctx, test); err != nil {
		t.Fatal(err)
	}

	result, err := sessionSvc.Submit(ctx, test.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v (per-question failures must not fail the submission)", err)
	}
	if result.CorrectCount != 0 || result.WrongCount != 1 {
		t.Errorf("counts = %d/%d, want 0/1", result.CorrectCount, result.WrongCount)
	}
	d := result.Details[0]
	if d.CorrectAnswer != "Unavailable" || d.IsCorrect {
		t.Errorf("fallback detail = %+v", d)
	}
}

func TestCompanyModeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.CompanyModeEnabled = false
	svc := NewTestService(store.NewMemoryStore(), evalStub(t), cfg, zerolog.Nop())

	_, err := svc.CreateFromCompany(context.Background(), &model.CompanyTestRequest{Company: "Initech"})
	if !errors.Is(err, ErrCompanyModeDisabled) {
		t.Errorf("err = %v, want ErrCompanyModeDisabled", err)
	}
	if _, err := svc.CachedCompanies(context.Background()); !errors.Is(err, ErrCompanyModeDisabled) {
		t.Errorf("cached companies err = %v, want ErrCompanyModeDisabled", err)
	}
	if _, err := svc.CompanyProfile(context.Background(), "Initech"); !errors.Is(err, ErrCompanyModeDisabled) {
		t.Errorf("company profile err = %v, want ErrCompanyModeDisabled", err)
	}
}

func TestCompanyProfilePassesThrough(t *testing.T) {
	svc := NewTestService(store.NewMemoryStore(), evalStub(t), testConfig(), zerolog.Nop())

	profile, err := svc.CompanyProfile(context.Background(), "Initech")
	if err != nil {
		t.Fatalf("CompanyProfile: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(profile, &decoded); err != nil {
		t.Fatalf("profile is not valid JSON: %v", err)
	}
	if decoded["industry"] != "Software" {
		t.Errorf("profile = %v", decoded)
	}
}

func TestCompanyAssessmentDefaults(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewTestService(st, evalStub(t), testConfig(), zerolog.Nop())

	// The stub omits difficulty and duration; defaults fill them in.
	resp, err := svc.CreateFromCompany(ctx, &model.CompanyTestRequest{Company: "Initech"})
	if err != nil {
		t.Fatalf("CreateFromCompany: %v", err)
	}
	if resp.DurationMinutes != 90 {
		t.Errorf("duration = %d, want default 90", resp.DurationMinutes)
	}
	if resp.Difficulty != "Medium" {
		t.Errorf("difficulty = %q, want default Medium", resp.Difficulty)
	}

	test, err := st.LoadTest(ctx, resp.TestID)
	if err != nil {
		t.Fatalf("LoadTest: %v", err)
	}
	if test.DurationMinutes != 90 || test.Source != "Initech" {
		t.Errorf("stored test = %+v", test)
	}
}

func TestReviewBookmarkedUsesSessionSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	resultSvc := NewResultService(st, eval, zerolog.Nop())

	testID := uuid.New()
	q1, q2 := uuid.New(), uuid.New()
	result := &model.SubmitResult{
		ResultID: uuid.New(),
		TestID:   testID,
		Details: []model.ResultDetail{
			{QuestionID: q1, IsCorrect: true},
			{QuestionID: q2, IsCorrect: false},
		},
	}
	if err := st.SaveResult(ctx, result); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveSessionState(ctx, &model.SessionState{
		TestID:    testID,
		Answers:   map[string]string{},
		Bookmarks: []string{q1.String()},
	}); err != nil {
		t.Fatal(err)
	}

	_, details, err := resultSvc.Review(ctx, result.ResultID, review.FilterBookmarked)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if len(details) != 1 || details[0].QuestionID != q1 {
		t.Errorf("bookmarked details = %+v, want only %s", details, q1)
	}

	// Missing snapshot means an empty bookmarked view, not an error.
	other := &model.SubmitResult{ResultID: uuid.New(), TestID: uuid.New(), Details: result.Details}
	if err := st.SaveResult(ctx, other); err != nil {
		t.Fatal(err)
	}
	_, details, err = resultSvc.Review(ctx, other.ResultID, review.FilterBookmarked)
	if err != nil {
		t.Fatalf("Review without snapshot: %v", err)
	}
	if len(details) != 0 {
		t.Errorf("details = %+v, want empty", details)
	}
}

func TestExplainLoadsStoredQuestion(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	eval := evalStub(t)
	testSvc := NewTestService(st, eval, testConfig(), zerolog.Nop())
	resultSvc := NewResultService(st, eval, zerolog.Nop())

	test, err := testSvc.CreateFromPDF(ctx, "quiz.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatal(err)
	}

	resp, err := resultSvc.Explain(ctx, &model.ExplanationRequest{
		QuestionID:    test.Questions[0].ID,
		CorrectAnswer: "B",
	})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if resp.Explanation != "Because B." {
		t.Errorf("explanation = %q", resp.Explanation)
	}

	if _, err := resultSvc.Explain(ctx, &model.ExplanationRequest{
		QuestionID:    uuid.New(),
		CorrectAnswer: "B",
	}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown question err = %v, want ErrNotFound", err)
	}
}
