package model

import (
	"encoding/json"
	"time"
)

const DefaultMaxRetries = 3

// QueuedAttempt is one verification attempt buffered while the store was
// unreachable. Only RetryCount changes after enqueue.
type QueuedAttempt struct {
	ID         string          `json:"id"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
	RetryCount int             `json:"retryCount"`
	MaxRetries int             `json:"maxRetries"`
}

// AttemptPayload is the payload the server queues for replay through
// the verification service.
type AttemptPayload struct {
	GoalID      string    `json:"goalId"`
	UserID      string    `json:"userId"`
	Signals     Signals   `json:"signals"`
	AttemptedAt time.Time `json:"attemptedAt"`
}
