package notify

import (
	"context"
	"testing"
	"time"

	"pdw/internal/log"
)

func TestNewRunEvent(t *testing.T) {
	e := NewRunEvent(EventRunStarted, "run-123", "")

	if e.Event != EventRunStarted {
		t.Errorf("NewRunEvent() Event = %v, want %v", e.Event, EventRunStarted)
	}
	if e.RunID != "run-123" {
		t.Errorf("NewRunEvent() RunID = %v, want run-123", e.RunID)
	}
	if e.Timestamp.IsZero() {
		t.Error("NewRunEvent() Timestamp should not be zero")
	}
	if time.Since(e.Timestamp) > time.Second {
		t.Error("NewRunEvent() Timestamp should be recent")
	}
}

func TestRunEvent_JSON(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := &RunEvent{
		Event:     EventExportWritten,
		RunID:     "run-123",
		Detail:    "/out/LANCAMENTOS_GERAIS.v2.csv",
		Timestamp: timestamp,
	}

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := RunEventFromJSON(data)
	if err != nil {
		t.Fatalf("RunEventFromJSON() error = %v", err)
	}

	if parsed.Event != e.Event {
		t.Errorf("Parsed Event = %v, want %v", parsed.Event, e.Event)
	}
	if parsed.Detail != e.Detail {
		t.Errorf("Parsed Detail = %v, want %v", parsed.Detail, e.Detail)
	}
	if !parsed.Timestamp.Equal(e.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, e.Timestamp)
	}
}

func TestRunEvent_InvalidJSON(t *testing.T) {
	if _, err := RunEventFromJSON([]byte(`{"event": 42}`)); err == nil {
		t.Error("RunEventFromJSON() should fail with invalid JSON")
	}
}

func TestDisabledNotifier(t *testing.T) {
	n, err := NewNotifier("", "pdw_events", "pdw_events", log.New(log.DefaultConfig()))
	if err != nil {
		t.Fatalf("NewNotifier() with empty URL error = %v", err)
	}
	if n.Enabled() {
		t.Error("Notifier without a broker URL should be disabled")
	}

	// Publishing and closing on a disabled notifier must be no-ops.
	n.Publish(context.Background(), NewRunEvent(EventRunStarted, "run-123", ""))
	if err := n.Close(); err != nil {
		t.Errorf("Close() on disabled notifier error = %v", err)
	}

	var nilNotifier *Notifier
	nilNotifier.Publish(context.Background(), NewRunEvent(EventRunStarted, "run-123", ""))
	if err := nilNotifier.Close(); err != nil {
		t.Errorf("Close() on nil notifier error = %v", err)
	}
}
