package risk

import (
	"context"
	"time"
)

// ResultSlot is the fixed name of the per-session result slot.
const ResultSlot = "diabetesResults"

// ResultStore keeps the latest assessment of a session so the results view
// can be rendered from it.
type ResultStore interface {
	Save(ctx context.Context, sessionID string, assessment Assessment, ttl time.Duration) error
	// Load reports ok=false when the slot is absent or holds undecodable data.
	Load(ctx context.Context, sessionID string) (Assessment, bool, error)
}

// Sink forwards a finished assessment to the remote collector.
type Sink interface {
	Submit(ctx context.Context, submission Submission) error
}

// Recorder receives assessment counters.
type Recorder interface {
	ObserveAssessment(category, idrsCategory string, total int)
	ValidationFailed()
	SubmissionResult(outcome string)
}
