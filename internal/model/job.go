package model

import "github.com/google/uuid"

// ExplainJob is a queued request to backfill the explanation of one result
// detail. Jobs are produced after scoring and consumed by the explain worker.
type ExplainJob struct {
	ResultID      uuid.UUID `json:"result_id"`
	QuestionID    uuid.UUID `json:"question_id"`
	CorrectAnswer string    `json:"correct_answer"`
}
