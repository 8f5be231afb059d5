package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/Anikesh0001/test-practice/internal/response"
	"github.com/Anikesh0001/test-practice/internal/service"
	"github.com/Anikesh0001/test-practice/internal/session"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/Anikesh0001/test-practice/internal/validator"
)

// SessionHandler serves the in-progress attempt: test payload, saved session
// state and submission.
type SessionHandler struct {
	testService    *service.TestService
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(testService *service.TestService, sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		testService:    testService,
		sessionService: sessionService,
	}
}

// GetTest godoc
// GET /api/v1/tests/:test_id
// Returns the full test payload with questions.
func (h *SessionHandler) GetTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.testService.Get(c.Request.Context(), testID)
	if err != nil {
		failStore(c, err, response.ErrTestNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// GetState godoc
// GET /api/v1/tests/:test_id/state
// Returns the saved session snapshot for resuming an attempt.
func (h *SessionHandler) GetState(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.State(c.Request.Context(), testID)
	if err != nil {
		failStore(c, err, response.ErrStateNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SubmitTest godoc
// POST /api/v1/tests/:test_id/submit
// Scores the attempt. Safe to call once: concurrent and repeated submits are
// rejected with a conflict.
func (h *SessionHandler) SubmitTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), testID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSubmitInFlight):
			response.Fail(c, http.StatusConflict, response.ErrSubmitInFlight)
		case errors.Is(err, session.ErrAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadySubmitted)
		case errors.Is(err, store.ErrNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// failStore maps a store error to a not-found or internal response.
func failStore(c *gin.Context, err error, notFound response.ErrCode) {
	if errors.Is(err, store.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, notFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
