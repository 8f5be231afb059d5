package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Anikesh0001/test-practice/internal/service"
	"github.com/Anikesh0001/test-practice/internal/session"
	"github.com/Anikesh0001/test-practice/internal/store"
	ws "github.com/Anikesh0001/test-practice/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live test session: answers, bookmarks, navigation and
// the server-owned countdown over one WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TestStream godoc
// WS /ws/v1/tests/:test_id/stream
// Upgrades to WebSocket for live answer capture and countdown ticks. The
// countdown runs server-side; the client only renders tick events.
func (h *WSHandler) TestStream(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	ctrl, err := h.sessionService.Attach(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "test not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewSafeConn(rawConn)
	defer conn.Close()

	wsLog := h.log.With().Str("test_id", testID.String()).Logger()
	wsLog.Info().Msg("Session connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Countdown. The timer is owned by the ticker goroutine; the seed comes
	// from the persisted snapshot so a reconnect cannot reset the clock.
	timer := session.NewTimer(
		ctrl.TimerSeed(),
		uint64(time.Now().UnixNano()),
		func(remaining int) {
			if err := ctrl.Tick(ctx, remaining); err != nil {
				wsLog.Warn().Err(err).Msg("Tick persist failed")
			}
			conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: remaining})
		},
		func() {
			conn.WriteTyped(ws.ExpiredResponse{Event: ws.EventExpired})
			h.submit(ctx, conn, wsLog, testID, true)
		},
	)

	if ctrl.Started() {
		go h.runCountdown(ctx, timer)
	}

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, conn, ctrl, &msg)
		case ws.ActionBookmark:
			h.handleBookmark(ctx, conn, ctrl, &msg)
		case ws.ActionNavigate:
			h.handleNavigate(ctx, conn, ctrl, &msg)
		case ws.ActionSubmit:
			h.submit(ctx, conn, wsLog, testID, false)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// runCountdown drives the timer at one tick per second until the connection
// context ends or the timer expires.
func (h *WSHandler) runCountdown(ctx context.Context, timer *session.Timer) {
	timer.Start()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timer.Tick()
			if timer.State() == session.TimerExpired {
				return
			}
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *ws.SafeConn, ctrl *session.Controller, msg *ws.RequestPayload) {
	if msg.QID == "" {
		conn.WriteError("q_id is required")
		return
	}
	if _, err := uuid.Parse(msg.QID); err != nil {
		conn.WriteError("invalid q_id format")
		return
	}

	if err := ctrl.RecordAnswer(ctx, msg.QID, msg.Answer); err != nil {
		conn.WriteError("save failed")
		return
	}
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleBookmark(ctx context.Context, conn *ws.SafeConn, ctrl *session.Controller, msg *ws.RequestPayload) {
	if msg.QID == "" {
		conn.WriteError("q_id is required")
		return
	}
	if _, err := uuid.Parse(msg.QID); err != nil {
		conn.WriteError("invalid q_id format")
		return
	}

	bookmarked, err := ctrl.ToggleBookmark(ctx, msg.QID)
	if err != nil {
		conn.WriteError("save failed")
		return
	}
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID, Bookmarked: &bookmarked})
}

func (h *WSHandler) handleNavigate(ctx context.Context, conn *ws.SafeConn, ctrl *session.Controller, msg *ws.RequestPayload) {
	var (
		index int
		err   error
	)
	switch msg.Mode {
	case ws.NavigateGoto:
		index, err = ctrl.Goto(ctx, msg.Index)
	case ws.NavigateStep:
		index, err = ctrl.Step(ctx, msg.Delta)
	case ws.NavigateFirstUnanswered:
		index, err = ctrl.FirstUnanswered(ctx)
	default:
		conn.WriteError("unknown navigate mode: " + string(msg.Mode))
		return
	}
	if err != nil {
		conn.WriteError("save failed")
		return
	}
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Index: index})
}

// submit scores the attempt. The controller's submit state machine makes
// the expiry-driven and user-driven paths collapse into one submission.
func (h *WSHandler) submit(ctx context.Context, conn *ws.SafeConn, wsLog zerolog.Logger, testID uuid.UUID, auto bool) {
	result, err := h.sessionService.Submit(ctx, testID, nil)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadySubmitted), errors.Is(err, session.ErrSubmitInFlight):
			if !auto {
				conn.WriteError("already submitted")
			}
		default:
			wsLog.Error().Err(err).Bool("auto", auto).Msg("Submit failed")
			conn.WriteError("submit failed")
		}
		return
	}

	wsLog.Info().
		Str("result_id", result.ResultID.String()).
		Bool("auto", auto).
		Float64("score", result.Score).
		Msg("Session submitted and graded")

	conn.WriteTyped(ws.GradedResponse{
		Event:    ws.EventGraded,
		ResultID: result.ResultID.String(),
		Score:    result.Score,
		Accuracy: result.Accuracy,
	})
}
