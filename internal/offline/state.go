package offline

import "fmt"

// State is the lifecycle position of a queued attempt within a flush.
type State int

const (
	StatePending State = iota + 1
	StateProcessing
	StateSuccess
	StateRetrying
	StateDropped
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateSuccess:
		return "success"
	case StateRetrying:
		return "retrying"
	case StateDropped:
		return "dropped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether the attempt leaves the queue in this state.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateDropped
}

// Transition is emitted for every state change during a flush.
type Transition struct {
	AttemptID  string
	From       State
	To         State
	RetryCount int
	Err        error
}

// Observer receives transitions synchronously, in order.
type Observer func(Transition)

// Observers fans a transition out to each non-nil observer.
func Observers(obs ...Observer) Observer {
	return func(t Transition) {
		for _, o := range obs {
			if o != nil {
				o(t)
			}
		}
	}
}
