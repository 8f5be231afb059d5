// Package handler wires HTTP requests to the service layer. Handlers only
// translate: bind and validate input, call a service, map errors to response
// codes.
package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/response"
	"github.com/Anikesh0001/test-practice/internal/service"
	"github.com/Anikesh0001/test-practice/internal/validator"
)

// TestHandler handles test creation and lifecycle endpoints.
type TestHandler struct {
	testService    *service.TestService
	sessionService *service.SessionService
	maxUploadBytes int64
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService, sessionService *service.SessionService, maxUploadBytes int64) *TestHandler {
	return &TestHandler{
		testService:    testService,
		sessionService: sessionService,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadTest godoc
// POST /api/v1/tests/upload
// Accepts a PDF upload and creates a test from the questions found in it.
func (h *TestHandler) UploadTest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if int64(len(content)) > h.maxUploadBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	test, err := h.testService.CreateFromPDF(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestions) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailed)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// StartTest godoc
// POST /api/v1/tests/:test_id/start
// Starts the countdown for a test. Starting twice keeps the original start.
func (h *TestHandler) StartTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StartTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Start(c.Request.Context(), testID, req.DurationMinutes)
	if err != nil {
		failStore(c, err, response.ErrTestNotFound)
		return
	}

	// A session attached before the start (an early WebSocket connect) holds
	// the unstarted test; rebuild it so the countdown picks up the chosen
	// duration.
	h.sessionService.Refresh(c.Request.Context(), testID)

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// RetryTest godoc
// POST /api/v1/tests/:test_id/retry
// Creates a fresh attempt over the same questions.
func (h *TestHandler) RetryTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.testService.Retry(c.Request.Context(), testID)
	if err != nil {
		failStore(c, err, response.ErrTestNotFound)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// CreateCompanyTest godoc
// POST /api/v1/tests/company
// Generates a company-themed assessment.
func (h *TestHandler) CreateCompanyTest(c *gin.Context) {
	var req model.CompanyTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.testService.CreateFromCompany(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyModeDisabled):
			response.Fail(c, http.StatusForbidden, response.ErrCompanyModeDisabled)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailed)
		}
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ListCachedCompanies godoc
// GET /api/v1/tests/company/cached
// Lists companies with a cached research profile.
func (h *TestHandler) ListCachedCompanies(c *gin.Context) {
	companies, err := h.testService.CachedCompanies(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrCompanyModeDisabled) {
			response.Fail(c, http.StatusForbidden, response.ErrCompanyModeDisabled)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"companies": companies})
}

// GetCompanyProfile godoc
// GET /api/v1/tests/company/:company_name/profile
// Returns the research profile for a company, fetching it when not cached.
func (h *TestHandler) GetCompanyProfile(c *gin.Context) {
	company := strings.TrimSpace(c.Param("company_name"))
	if company == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	profile, err := h.testService.CompanyProfile(c.Request.Context(), company)
	if err != nil {
		if errors.Is(err, service.ErrCompanyModeDisabled) {
			response.Fail(c, http.StatusForbidden, response.ErrCompanyModeDisabled)
			return
		}
		response.Fail(c, http.StatusBadGateway, response.ErrEvaluationFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"company": company,
		"profile": profile,
	})
}
