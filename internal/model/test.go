package model

import (
	"time"

	"github.com/google/uuid"
)

// TestSession is one generated test: an ordered question list plus the
// chosen duration and start flag.
type TestSession struct {
	ID              uuid.UUID  `json:"test_id"`
	Source          string     `json:"source,omitempty"` // uploaded filename or company name
	DurationMinutes int        `json:"duration_minutes"`
	Started         bool       `json:"started"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Questions       []Question `json:"questions"`
}

// QuestionByID returns the question with the given id, or nil.
func (t *TestSession) QuestionByID(id uuid.UUID) *Question {
	for i := range t.Questions {
		if t.Questions[i].ID == id {
			return &t.Questions[i]
		}
	}
	return nil
}

// SessionState is the persisted per-test snapshot of an in-progress attempt.
// It is written through on every mutation and reloaded verbatim on resume.
type SessionState struct {
	TestID uuid.UUID `json:"test_id"`
	// Answers maps question id → the user's current answer. An empty
	// string counts as unanswered. Keys for questions no longer in the
	// active list are tolerated but never displayed.
	Answers          map[string]string `json:"answers"`
	Bookmarks        []string          `json:"bookmarks"`
	CurrentIndex     int               `json:"current_index"`
	DurationMinutes  int               `json:"duration_minutes"`
	Started          bool              `json:"started"`
	RemainingSeconds int               `json:"remaining_seconds"`
}

// StartTestRequest is the payload for starting a test.
type StartTestRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required,min=1,max=240"`
}

// SubmitTestRequest carries the full answers mapping for scoring. Values may
// be null for questions that were shown but never answered.
type SubmitTestRequest struct {
	Answers map[string]*string `json:"answers" binding:"required"`
}

// CompanyTestRequest asks for a company-themed assessment.
type CompanyTestRequest struct {
	Company  string `json:"company" binding:"required,min=1,max=120"`
	UseCache bool   `json:"use_cache"`
}

// CompanyTestResponse summarizes a generated company assessment.
type CompanyTestResponse struct {
	TestID          uuid.UUID `json:"test_id"`
	CompanyName     string    `json:"company_name"`
	TotalQuestions  int       `json:"total_questions"`
	Difficulty      string    `json:"difficulty"`
	DurationMinutes int       `json:"duration_minutes"`
	Message         string    `json:"message"`
}

// ExplanationRequest asks for an explanation of a question's correct answer.
type ExplanationRequest struct {
	QuestionID    uuid.UUID `json:"question_id" binding:"required"`
	CorrectAnswer string    `json:"correct_answer" binding:"required"`
}

// ExplanationResponse carries the generated explanation.
type ExplanationResponse struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Explanation string    `json:"explanation"`
}
