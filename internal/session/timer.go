package session

// TimerState enumerates the countdown lifecycle. Running→Expired is
// terminal for a timer instance; a new instance (new reset token) is
// required to count down again.
type TimerState string

const (
	TimerIdle    TimerState = "IDLE"
	TimerRunning TimerState = "RUNNING"
	TimerExpired TimerState = "EXPIRED"
)

// Timer is a single countdown primitive. It is driven externally, one Tick
// per second, and is owned by exactly one goroutine (the live-session loop).
// The expiry callback fires exactly once even if Tick keeps being delivered
// at zero.
type Timer struct {
	state     TimerState
	remaining int
	token     uint64
	onTick    func(remaining int)
	onExpire  func()
}

// NewTimer creates an idle timer seeded with the given second count.
func NewTimer(seed int, token uint64, onTick func(int), onExpire func()) *Timer {
	if seed < 0 {
		seed = 0
	}
	return &Timer{
		state:     TimerIdle,
		remaining: seed,
		token:     token,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start moves the timer to Running. A zero seed expires immediately.
func (t *Timer) Start() {
	if t.state != TimerIdle {
		return
	}
	t.state = TimerRunning
	if t.remaining <= 0 {
		t.expire()
	}
}

// Tick decrements the countdown by one second. Ticks while idle or expired
// are no-ops, which makes duplicate expiry signals harmless.
func (t *Timer) Tick() {
	if t.state != TimerRunning {
		return
	}

	t.remaining--
	if t.remaining < 0 {
		t.remaining = 0
	}
	if t.onTick != nil {
		t.onTick(t.remaining)
	}
	if t.remaining == 0 {
		t.expire()
	}
}

// Reset reinitializes the countdown, but only when the reset token changes.
// Re-supplying the same token is a no-op, so a parent re-rendering with the
// same seed cannot restart the clock.
func (t *Timer) Reset(seed int, token uint64) {
	if token == t.token {
		return
	}
	if seed < 0 {
		seed = 0
	}
	t.token = token
	t.state = TimerIdle
	t.remaining = seed
}

// State returns the current lifecycle state.
func (t *Timer) State() TimerState {
	return t.state
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	return t.remaining
}

func (t *Timer) expire() {
	if t.state == TimerExpired {
		return
	}
	t.state = TimerExpired
	if t.onExpire != nil {
		t.onExpire()
	}
}
