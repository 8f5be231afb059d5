// Package evalclient is the HTTP client for the external AI evaluation
// service. PDF question extraction, answer grading, explanation generation
// and company research all happen on the remote side; this client is a thin
// JSON pass-through with timeouts and typed errors.
package evalclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the evaluation service.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// New creates a Client for the given base URL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "evalclient").Logger(),
	}
}

// OptionMap is the key→text options shape. Upstream payloads are not
// consistent here: extraction returns an object, while assessments built
// from older profile caches carry an "A) text" string list. Both decode
// into the same map.
type OptionMap map[string]string

func (m *OptionMap) UnmarshalJSON(data []byte) error {
	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err == nil {
		*m = asMap
		return nil
	}

	var asList []string
	if err := json.Unmarshal(data, &asList); err != nil {
		return fmt.Errorf("options: expected object or string list")
	}
	*m = ParseOptionList(asList)
	return nil
}

// ExtractedQuestion is a question as returned by the extraction endpoint.
// Empty options mean free text.
type ExtractedQuestion struct {
	Number  int       `json:"number"`
	Text    string    `json:"text"`
	Options OptionMap `json:"options,omitempty"`
}

// Evaluation is the graded outcome for one question.
type Evaluation struct {
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// Assessment is a generated company assessment.
type Assessment struct {
	CompanyName     string              `json:"company_name"`
	Difficulty      string              `json:"difficulty"`
	DurationMinutes int                 `json:"duration_minutes"`
	Questions       []ExtractedQuestion `json:"questions"`
}

// ExtractQuestions uploads a PDF and returns the questions found in it.
// An empty slice (no error) means the document contained no questions.
func (c *Client) ExtractQuestions(ctx context.Context, filename string, content []byte) ([]ExtractedQuestion, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		Questions []ExtractedQuestion `json:"questions"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// Evaluate grades a single answer against a question.
func (c *Client) Evaluate(ctx context.Context, questionText string, options map[string]string, userAnswer string) (*Evaluation, error) {
	payload := map[string]interface{}{
		"question":    questionText,
		"options":     options,
		"user_answer": userAnswer,
	}

	var out Evaluation
	if err := c.postJSON(ctx, "/v1/evaluate", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Explain generates an explanation of the correct answer for a question.
func (c *Client) Explain(ctx context.Context, questionText string, options map[string]string, correctAnswer string) (string, error) {
	payload := map[string]interface{}{
		"question":       questionText,
		"options":        options,
		"correct_answer": correctAnswer,
	}

	var out struct {
		Explanation string `json:"explanation"`
	}
	if err := c.postJSON(ctx, "/v1/explain", payload, &out); err != nil {
		return "", err
	}
	return out.Explanation, nil
}

// CompanyAssessment asks the service to research a company and generate a
// themed assessment from its hiring profile.
func (c *Client) CompanyAssessment(ctx context.Context, company string, useCache bool) (*Assessment, error) {
	payload := map[string]interface{}{
		"company":   company,
		"use_cache": useCache,
	}

	var out Assessment
	if err := c.postJSON(ctx, "/v1/company-assessment", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompanyProfile fetches the research profile for one company. The service
// returns the cached document or researches the company on demand; the shape
// is free-form, so it is passed through untouched.
func (c *Client) CompanyProfile(ctx context.Context, company string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/companies/"+url.PathEscape(company), nil)
	if err != nil {
		return nil, err
	}

	var out json.RawMessage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CachedCompanies lists companies with a cached research profile upstream.
func (c *Client) CachedCompanies(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/companies", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Companies []string `json:"companies"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Companies, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("evaluation service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("path", req.URL.Path).
			Msg("Evaluation service error")
		return fmt.Errorf("evaluation service %s: status %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode evaluation response: %w", err)
	}
	return nil
}

// ParseOptionList converts upstream list-shaped options ("A) text") into the
// key→text map used everywhere else. Entries without a ")" separator are
// dropped.
func ParseOptionList(options []string) map[string]string {
	if len(options) == 0 {
		return nil
	}
	out := make(map[string]string, len(options))
	for _, o := range options {
		key, value, found := strings.Cut(o, ")")
		if !found {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
