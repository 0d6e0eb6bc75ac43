package pipeline

import (
	"strings"
	"time"
)

type EventType string

const (
	EventAttempt       EventType = "attempt"
	EventSwitchModel   EventType = "switch_model"
	EventPolicyBlocked EventType = "policy_blocked"
	EventWaitRetry     EventType = "wait_retry"
	EventStorageNoop   EventType = "storage_noop"
	EventSucceeded     EventType = "succeeded"
	EventFailed        EventType = "failed"
)

// maxCompactErrorRune bounds the error text shown to the user.
const maxCompactErrorRune = 360

// Event is a progress notification from the runner.
type Event struct {
	Type        EventType
	Attempt     int
	MaxAttempts int
	Model       string
	NextModel   string
	Wait        time.Duration
	Message     string
}

// EventHandler receives runner events synchronously.
type EventHandler func(Event)

var backoffSchedule = []time.Duration{3 * time.Second, 8 * time.Second, 15 * time.Second, 25 * time.Second}

// BackoffDelay is the wait after the given 1-based attempt. The last step
// of the schedule repeats.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	idx := min(attempt-1, len(backoffSchedule)-1)
	return backoffSchedule[idx]
}

// CompactError collapses whitespace and caps the text at 360 runes.
func CompactError(text string) string {
	compact := strings.Join(strings.Fields(text), " ")
	r := []rune(compact)
	if len(r) <= maxCompactErrorRune {
		return compact
	}
	return string(r[:maxCompactErrorRune-3]) + "..."
}
