package checkout

// Status tracks one checkout attempt. Both entry paths, manual card entry and
// the express wallet channel, move through the same machine.
type Status string

const (
	StatusIdle            Status = "IDLE"
	StatusIntentRequested Status = "INTENT_REQUESTED"
	StatusIntentReady     Status = "INTENT_READY"
	StatusConfirming      Status = "CONFIRMING"
	StatusSucceeded       Status = "SUCCEEDED"
	StatusFailed          Status = "FAILED"
)

var statusTransitions = map[Status][]Status{
	// idle with a retained intent may re-enter confirming directly: a failed
	// confirmation keeps its intent so the same client secret can be retried.
	StatusIdle:            {StatusIntentRequested, StatusConfirming},
	StatusIntentRequested: {StatusIntentReady, StatusIdle},
	// an express attempt abandons a ready manual intent and requests a fresh one
	StatusIntentReady: {StatusConfirming, StatusIntentRequested},
	StatusConfirming:  {StatusSucceeded, StatusFailed},
	StatusFailed:      {StatusIdle},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
