package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/google/uuid"
)

func sampleResult(details int) (*model.SubmitResult, *model.TestSession) {
	test := &model.TestSession{
		ID:        uuid.New(),
		Questions: make([]model.Question, 0, details),
	}
	resultDetails := make([]model.ResultDetail, 0, details)

	for i := 0; i < details; i++ {
		q := model.NewQuestion(i+1, "Sample question text", map[string]string{"A": "yes", "B": "no"})
		test.Questions = append(test.Questions, q)

		answer := "A"
		resultDetails = append(resultDetails, model.ResultDetail{
			QuestionID:    q.ID,
			UserAnswer:    &answer,
			CorrectAnswer: "B",
			IsCorrect:     false,
			Explanation:   "The correct option is B.",
		})
	}

	return &model.SubmitResult{
		ResultID:     uuid.New(),
		TestID:       test.ID,
		Score:        0,
		Accuracy:     0,
		CorrectCount: 0,
		WrongCount:   details,
		Details:      resultDetails,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}, test
}

func TestPaginateRespectsLineBudget(t *testing.T) {
	tests := []struct {
		name      string
		lines     int
		wantPages int
		wantLast  int
	}{
		{"empty", 0, 0, 0},
		{"one short page", 5, 1, 5},
		{"exactly one page", LinesPerPage, 1, LinesPerPage},
		{"one line over", LinesPerPage + 1, 2, 1},
		{"several pages", LinesPerPage*3 + 7, 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]string, tt.lines)
			pages := Paginate(lines, LinesPerPage)
			if len(pages) != tt.wantPages {
				t.Fatalf("pages = %d, want %d", len(pages), tt.wantPages)
			}
			for i, p := range pages {
				if len(p) > LinesPerPage {
					t.Errorf("page %d has %d lines, budget is %d", i, len(p), LinesPerPage)
				}
			}
			if tt.wantPages > 0 {
				if got := len(pages[len(pages)-1]); got != tt.wantLast {
					t.Errorf("last page has %d lines, want %d", got, tt.wantLast)
				}
			}
		})
	}
}

func TestBuildLinesContainsSummaryAndQuestions(t *testing.T) {
	result, test := sampleResult(2)
	result.Accuracy = 50
	result.Score = 1
	result.CorrectCount = 1
	result.WrongCount = 1

	lines := BuildLines(result, test)
	text := strings.Join(lines, "\n")

	for _, want := range []string{
		"Test Report",
		"Accuracy: 50.0%",
		"Correct: 1   Wrong: 1",
		"Q1. Sample question text",
		"Q2. Sample question text",
		"Your answer: A  [WRONG]",
		"Correct answer: B",
		"Explanation: The correct option is B.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report lines missing %q", want)
		}
	}
}

func TestBuildLinesHandlesMissingQuestionAndAnswer(t *testing.T) {
	result, _ := sampleResult(1)
	result.Details[0].UserAnswer = nil

	// No test payload at all: the detail still renders with a placeholder.
	lines := BuildLines(result, nil)
	text := strings.Join(lines, "\n")

	if !strings.Contains(text, "(question unavailable)") {
		t.Error("missing question placeholder not rendered")
	}
	if !strings.Contains(text, "(not answered)") {
		t.Error("missing answer placeholder not rendered")
	}
}

func TestWrapLongLines(t *testing.T) {
	long := "Explanation: " + strings.Repeat("word ", 60)
	lines := wrap(long)

	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d line(s)", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n > wrapWidth {
			t.Errorf("line %d has %d runes, budget is %d", i, n, wrapWidth)
		}
	}
	for i := 1; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], "    ") {
			t.Errorf("continuation line %d lacks indent: %q", i, lines[i])
		}
	}
}
