package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionBookmark Action = "bookmark"
	ActionNavigate Action = "navigate"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// NavigateMode selects how the navigate payload is interpreted.
type NavigateMode string

const (
	NavigateGoto            NavigateMode = "goto"
	NavigateStep            NavigateMode = "step"
	NavigateFirstUnanswered NavigateMode = "first_unanswered"
)

// RequestPayload is the single inbound message shape. Action decides which
// fields are meaningful.
type RequestPayload struct {
	Action Action `json:"action"`

	// answer / bookmark
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`

	// navigate
	Mode  NavigateMode `json:"mode,omitempty"`
	Index int          `json:"index,omitempty"`
	Delta int          `json:"delta,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSaved   Event = "saved"
	EventState   Event = "state"
	EventTick    Event = "tick"
	EventExpired Event = "expired"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

// SavedResponse acknowledges an answer or bookmark mutation.
type SavedResponse struct {
	Event      Event  `json:"event"`
	QID        string `json:"q_id"`
	Bookmarked *bool  `json:"bookmarked,omitempty"`
}

// StateResponse carries the current index after navigation.
type StateResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// TickResponse is pushed once per second while the countdown runs.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// ExpiredResponse signals that the countdown hit zero and auto-submit ran.
type ExpiredResponse struct {
	Event Event `json:"event"`
}

// GradedResponse delivers the scored result id after a submit.
type GradedResponse struct {
	Event    Event   `json:"event"`
	ResultID string  `json:"result_id"`
	Score    float64 `json:"score"`
	Accuracy float64 `json:"accuracy"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
