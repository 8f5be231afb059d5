package store

import (
	"encoding/json"

	"github.com/Anikesh0001/test-practice/internal/model"
	"github.com/google/uuid"
)

// decodeSessionState turns a raw persisted snapshot into a SessionState.
// Decoding is per-field tolerant: a missing or malformed field falls back to
// its default instead of failing the whole load, so a partially corrupted
// snapshot still resumes the session.
func decodeSessionState(raw []byte, testID uuid.UUID) *model.SessionState {
	s := defaultSessionState(testID)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return s
	}

	if v, ok := fields["answers"]; ok {
		var answers map[string]string
		if json.Unmarshal(v, &answers) == nil && answers != nil {
			s.Answers = answers
		}
	}
	if v, ok := fields["bookmarks"]; ok {
		var bookmarks []string
		if json.Unmarshal(v, &bookmarks) == nil && bookmarks != nil {
			s.Bookmarks = bookmarks
		}
	}
	if v, ok := fields["current_index"]; ok {
		var idx int
		if json.Unmarshal(v, &idx) == nil && idx >= 0 {
			s.CurrentIndex = idx
		}
	}
	if v, ok := fields["duration_minutes"]; ok {
		var d int
		if json.Unmarshal(v, &d) == nil && d > 0 {
			s.DurationMinutes = d
		}
	}
	if v, ok := fields["started"]; ok {
		var b bool
		if json.Unmarshal(v, &b) == nil {
			s.Started = b
		}
	}
	if v, ok := fields["remaining_seconds"]; ok {
		var r int
		if json.Unmarshal(v, &r) == nil && r >= 0 {
			s.RemainingSeconds = r
		}
	}

	return s
}

func defaultSessionState(testID uuid.UUID) *model.SessionState {
	return &model.SessionState{
		TestID:    testID,
		Answers:   map[string]string{},
		Bookmarks: []string{},
	}
}
