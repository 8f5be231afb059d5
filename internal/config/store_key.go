package config

import (
	"fmt"
)

type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// SessionStateKey returns the store key for a test's persisted session state.
func (r *StoreKeyStruct) SessionStateKey(testID string) string {
	return fmt.Sprintf("testState:%s", testID)
}

// TestPayloadKey returns the store key for a test's question payload.
func (r *StoreKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// QuestionKey returns the store key for a single question, indexed by its own id.
func (r *StoreKeyStruct) QuestionKey(questionID string) string {
	return fmt.Sprintf("question:%s", questionID)
}

// ResultKey returns the store key for a stored submission result.
func (r *StoreKeyStruct) ResultKey(resultID string) string {
	return fmt.Sprintf("result:%s", resultID)
}

// CurrentTestKey returns the store key holding the active test snapshot.
func (r *StoreKeyStruct) CurrentTestKey() string {
	return "currentTest"
}

// LatestResultKey returns the store key holding the most recent result snapshot.
func (r *StoreKeyStruct) LatestResultKey() string {
	return "latestResult"
}

var StoreKey = NewStoreKeyStruct()

// WorkerKeyStruct names the Redis queues consumed by background workers.
type WorkerKeyStruct struct {
	ExplainQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ExplainQueue: "explain_queue",
}
