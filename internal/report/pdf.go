// Package report renders a submitted result as a downloadable PDF. Layout is
// computed as plain text lines first, then paginated with a fixed per-page
// line budget, so the pagination logic stays testable without a PDF library.
package report

import (
	"fmt"
	"strings"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/signintech/gopdf"
)

const (
	// LinesPerPage is the fixed line budget of one report page.
	LinesPerPage = 40
	// wrapWidth is the character budget of one report line.
	wrapWidth = 92

	pageMarginX = 40.0
	pageMarginY = 40.0
	lineHeight  = 18.0
	fontSize    = 11
)

// BuildLines flattens a result into report lines: a summary header followed
// by one block per question in original order. A nil test renders every
// question text as a placeholder.
func BuildLines(result *model.SubmitResult, test *model.TestSession) []string {
	lines := []string{
		"Test Report",
		"",
		fmt.Sprintf("Result: %s", result.ResultID),
		fmt.Sprintf("Score: %.0f / %d", result.Score, len(result.Details)),
		fmt.Sprintf("Accuracy: %.1f%%", result.Accuracy),
		fmt.Sprintf("Correct: %d   Wrong: %d", result.CorrectCount, result.WrongCount),
		fmt.Sprintf("Submitted: %s", result.CreatedAt.Format("2006-01-02 15:04 MST")),
		"",
	}

	for i, d := range result.Details {
		text := "(question unavailable)"
		if test != nil {
			if q := test.QuestionByID(d.QuestionID); q != nil {
				text = q.Text
			}
		}

		answer := "(not answered)"
		if d.UserAnswer != nil && *d.UserAnswer != "" {
			answer = *d.UserAnswer
		}
		verdict := "WRONG"
		if d.IsCorrect {
			verdict = "CORRECT"
		}

		lines = append(lines, wrap(fmt.Sprintf("Q%d. %s", i+1, text))...)
		lines = append(lines, wrap(fmt.Sprintf("    Your answer: %s  [%s]", answer, verdict))...)
		lines = append(lines, wrap(fmt.Sprintf("    Correct answer: %s", d.CorrectAnswer))...)
		if d.Explanation != "" {
			lines = append(lines, wrap(fmt.Sprintf("    Explanation: %s", d.Explanation))...)
		}
		lines = append(lines, "")
	}

	return lines
}

// Paginate splits lines into pages of at most linesPerPage lines each. The
// split is by count only; blocks are not kept together.
func Paginate(lines []string, linesPerPage int) [][]string {
	if linesPerPage <= 0 {
		linesPerPage = LinesPerPage
	}

	var pages [][]string
	for start := 0; start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

// wrap breaks a line into chunks of at most wrapWidth runes, splitting on
// spaces where possible. Continuation lines keep a four-space indent.
func wrap(line string) []string {
	runes := []rune(line)
	if len(runes) <= wrapWidth {
		return []string{line}
	}

	var out []string
	indent := ""
	for len(runes) > wrapWidth {
		cut := wrapWidth
		for i := wrapWidth; i > wrapWidth/2; i-- {
			if runes[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, indent+strings.TrimRight(string(runes[:cut]), " "))
		runes = []rune(strings.TrimLeft(string(runes[cut:]), " "))
		indent = "    "
	}
	if len(runes) > 0 {
		out = append(out, indent+string(runes))
	}
	return out
}

// Generator renders report pages to PDF bytes.
type Generator struct {
	fontPath string
}

func NewGenerator(fontPath string) *Generator {
	return &Generator{fontPath: fontPath}
}

// Render produces the PDF for a result. It fails when the configured TTF
// font cannot be loaded; callers degrade to a report-unavailable response.
func (g *Generator) Render(result *model.SubmitResult, test *model.TestSession) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFont("report", g.fontPath); err != nil {
		return nil, fmt.Errorf("load report font: %w", err)
	}
	if err := pdf.SetFont("report", "", fontSize); err != nil {
		return nil, fmt.Errorf("set report font: %w", err)
	}

	pages := Paginate(BuildLines(result, test), LinesPerPage)
	for _, page := range pages {
		pdf.AddPage()
		y := pageMarginY
		for _, line := range page {
			pdf.SetXY(pageMarginX, y)
			if line != "" {
				if err := pdf.Cell(nil, line); err != nil {
					return nil, fmt.Errorf("write report line: %w", err)
				}
			}
			y += lineHeight
		}
	}

	return pdf.GetBytesPdf(), nil
}
