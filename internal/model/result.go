package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultDetail is the per-question outcome of a submission.
type ResultDetail struct {
	QuestionID    uuid.UUID `json:"question_id"`
	UserAnswer    *string   `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	Explanation   string    `json:"explanation"`
}

// SubmitResult is the scored outcome of one test submission. Details keep
// the original question order.
type SubmitResult struct {
	ResultID     uuid.UUID      `json:"result_id"`
	TestID       uuid.UUID      `json:"test_id"`
	Score        float64        `json:"score"`
	Accuracy     float64        `json:"accuracy"`
	CorrectCount int            `json:"correct_count"`
	WrongCount   int            `json:"wrong_count"`
	Details      []ResultDetail `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}
