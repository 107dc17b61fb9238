package notify

import (
	"encoding/json"
	"time"
)

// RunEvent is the message published for pipeline lifecycle events.
type RunEvent struct {
	Event     string    `json:"event"`
	RunID     string    `json:"run_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventRunStarted    = "run_started"
	EventRunCompleted  = "run_completed"
	EventExportWritten = "export_written"
)

// NewRunEvent creates an event stamped with the current time.
func NewRunEvent(event, runID, detail string) *RunEvent {
	return &RunEvent{
		Event:     event,
		RunID:     runID,
		Detail:    detail,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RunEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RunEventFromJSON creates an event from JSON bytes.
func RunEventFromJSON(data []byte) (*RunEvent, error) {
	var e RunEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
