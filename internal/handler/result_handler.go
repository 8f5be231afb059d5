package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/report"
	"github.com/Anikesh0001/test-practice/internal/response"
	"github.com/Anikesh0001/test-practice/internal/review"
	"github.com/Anikesh0001/test-practice/internal/service"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/Anikesh0001/test-practice/internal/validator"
)

// ResultHandler serves stored results, the review screen and the PDF report.
type ResultHandler struct {
	resultService *service.ResultService
	testService   *service.TestService
	reports       *report.Generator
	log           zerolog.Logger
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService, testService *service.TestService, reports *report.Generator, log zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		testService:   testService,
		reports:       reports,
		log:           log.With().Str("component", "result_handler").Logger(),
	}
}

// LatestResult godoc
// GET /api/v1/results/latest
// Returns the most recent result.
func (h *ResultHandler) LatestResult(c *gin.Context) {
	result, err := h.resultService.Latest(c.Request.Context())
	if err != nil {
		failStore(c, err, response.ErrNoResult)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetResult godoc
// GET /api/v1/results/:result_id
// Returns a result by id.
func (h *ResultHandler) GetResult(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.resultService.Get(c.Request.Context(), resultID)
	if err != nil {
		failStore(c, err, response.ErrNoResult)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ReviewResult godoc
// GET /api/v1/results/:result_id/review?filter=all|incorrect|bookmarked
// Returns the result details filtered for the review screen.
func (h *ResultHandler) ReviewResult(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	filter, err := review.ParseFilter(c.Query("filter"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidFilter)
		return
	}

	result, details, err := h.resultService.Review(c.Request.Context(), resultID, filter)
	if err != nil {
		failStore(c, err, response.ErrNoResult)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result_id":     result.ResultID,
		"test_id":       result.TestID,
		"score":         result.Score,
		"accuracy":      result.Accuracy,
		"correct_count": result.CorrectCount,
		"wrong_count":   result.WrongCount,
		"filter":        filter,
		"details":       details,
	})
}

// DownloadReport godoc
// GET /api/v1/results/:result_id/report
// Renders the result as a PDF attachment.
func (h *ResultHandler) DownloadReport(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.resultService.Get(c.Request.Context(), resultID)
	if err != nil {
		failStore(c, err, response.ErrNoResult)
		return
	}

	// The test payload is optional: an expired payload still yields a
	// report, with placeholders instead of question text.
	var test *model.TestSession
	if loaded, err := h.testService.Get(c.Request.Context(), result.TestID); err == nil {
		test = loaded
	} else if !errors.Is(err, store.ErrNotFound) {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	pdf, err := h.reports.Render(result, test)
	if err != nil {
		h.log.Error().Err(err).Str("result_id", resultID.String()).Msg("Report render failed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrReportUnavailable)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="test-report-%s.pdf"`, resultID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Explain godoc
// POST /api/v1/explanations
// Generates an on-demand explanation for a question's correct answer.
func (h *ResultHandler) Explain(c *gin.Context) {
	var req model.ExplanationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.resultService.Explain(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailed)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
