package worker

import (
	"time"
)

// Job asks the worker for one cleanup pass.
type Job struct {
	Trigger string // "schedule", "startup", "signal"
	At      time.Time
}
