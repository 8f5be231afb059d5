package evalclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestExtractQuestionsSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("path = %s, want /v1/extract", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "quiz.pdf" {
			t.Errorf("filename = %s, want quiz.pdf", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "%PDF-1.4 fake" {
			t.Errorf("file content = %q", content)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"questions": []map[string]interface{}{
				{"number": 1, "text": "What is Go?", "options": map[string]string{"A": "a language", "B": "a board game"}},
				{"number": 2, "text": "Explain channels."},
			},
		})
	})

	questions, err := client.ExtractQuestions(context.Background(), "quiz.pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("ExtractQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if len(questions[0].Options) != 2 {
		t.Errorf("question 1 options = %v", questions[0].Options)
	}
	if questions[1].Options != nil {
		t.Errorf("question 2 options = %v, want nil (free text)", questions[1].Options)
	}
}

func TestEvaluatePostsAnswerPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/evaluate" {
			t.Errorf("path = %s, want /v1/evaluate", r.URL.Path)
		}
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["user_answer"] != "B" {
			t.Errorf("user_answer = %v, want B", payload["user_answer"])
		}

		json.NewEncoder(w).Encode(Evaluation{
			CorrectAnswer: "B",
			IsCorrect:     true,
			Explanation:   "B is right.",
		})
	})

	eval, err := client.Evaluate(context.Background(), "Pick B.", map[string]string{"A": "no", "B": "yes"}, "B")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !eval.IsCorrect || eval.CorrectAnswer != "B" {
		t.Errorf("evaluation = %+v", eval)
	}
}

func TestErrorStatusSurfacesAsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	if _, err := client.Evaluate(context.Background(), "q", nil, "a"); err == nil {
		t.Fatal("expected error on 503 response")
	}
	if _, err := client.CachedCompanies(context.Background()); err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestCompanyAssessment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/company-assessment" {
			t.Errorf("path = %s, want /v1/company-assessment", r.URL.Path)
		}
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["company"] != "Initech" {
			t.Errorf("company = %v, want Initech", payload["company"])
		}
		if payload["use_cache"] != true {
			t.Errorf("use_cache = %v, want true", payload["use_cache"])
		}

		json.NewEncoder(w).Encode(Assessment{
			CompanyName:     "Initech",
			Difficulty:      "Hard",
			DurationMinutes: 60,
			Questions:       []ExtractedQuestion{{Number: 1, Text: "TPS reports?"}},
		})
	})

	a, err := client.CompanyAssessment(context.Background(), "Initech", true)
	if err != nil {
		t.Fatalf("CompanyAssessment: %v", err)
	}
	if a.Difficulty != "Hard" || len(a.Questions) != 1 {
		t.Errorf("assessment = %+v", a)
	}
}

func TestOptionsDecodeFromListShape(t *testing.T) {
	var q ExtractedQuestion
	payload := `{"number":1,"text":"Pick one.","options":["A) first","B) second"]}`
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Options["A"] != "first" || q.Options["B"] != "second" {
		t.Errorf("options = %v, want parsed list entries", q.Options)
	}

	// The object shape keeps decoding as before.
	payload = `{"number":2,"text":"Pick one.","options":{"A":"first"}}`
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		t.Fatalf("unmarshal object shape: %v", err)
	}
	if q.Options["A"] != "first" {
		t.Errorf("options = %v", q.Options)
	}

	if err := json.Unmarshal([]byte(`{"options":42}`), &q); err == nil {
		t.Error("expected error for non-object, non-list options")
	}
}

func TestCompanyProfileEscapesPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/v1/companies/Wayne%20Corp" {
			t.Errorf("path = %s, want /v1/companies/Wayne%%20Corp", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(map[string]string{"company_name": "Wayne Corp"})
	})

	profile, err := client.CompanyProfile(context.Background(), "Wayne Corp")
	if err != nil {
		t.Fatalf("CompanyProfile: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(profile, &decoded); err != nil {
		t.Fatalf("profile is not valid JSON: %v", err)
	}
	if decoded["company_name"] != "Wayne Corp" {
		t.Errorf("profile = %v", decoded)
	}
}

func TestParseOptionList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want map[string]string
	}{
		{"nil", nil, nil},
		{"standard", []string{"A) first", "B) second"}, map[string]string{"A": "first", "B": "second"}},
		{"no separator dropped", []string{"just text"}, nil},
		{"mixed", []string{"A) kept", "dropped"}, map[string]string{"A": "kept"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOptionList(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
