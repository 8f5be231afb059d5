package model

import (
	"sort"

	"github.com/google/uuid"
)

// QuestionKind discriminates the two question shapes. The kind is fixed at
// construction time: questions extracted with options are multiple-choice,
// everything else is answered as free text.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "MULTIPLE_CHOICE"
	QuestionFreeText       QuestionKind = "FREE_TEXT"
)

// Option is a single selectable choice of a multiple-choice question.
type Option struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Question represents a single test question.
type Question struct {
	ID     uuid.UUID    `json:"id"`
	Number int          `json:"number"`
	Text   string       `json:"text"`
	Kind   QuestionKind `json:"kind"`
	// Options is ordered and present only for multiple-choice questions.
	Options []Option `json:"options,omitempty"`
}

// NewQuestion builds a Question, picking the variant from the options map:
// a non-empty map yields a multiple-choice question with options ordered by
// key; an empty or nil map yields a free-text question.
func NewQuestion(number int, text string, options map[string]string) Question {
	q := Question{
		ID:     uuid.New(),
		Number: number,
		Text:   text,
		Kind:   QuestionFreeText,
	}

	if len(options) == 0 {
		return q
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q.Kind = QuestionMultipleChoice
	q.Options = make([]Option, 0, len(keys))
	for _, k := range keys {
		q.Options = append(q.Options, Option{Key: k, Text: options[k]})
	}
	return q
}

// OptionMap rebuilds the key→text mapping consumed by the evaluation service.
// Returns nil for free-text questions.
func (q Question) OptionMap() map[string]string {
	if q.Kind != QuestionMultipleChoice {
		return nil
	}
	m := make(map[string]string, len(q.Options))
	for _, o := range q.Options {
		m[o.Key] = o.Text
	}
	return m
}
