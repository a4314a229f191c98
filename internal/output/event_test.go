package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONEmitterSerializesEvent(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewJSONEmitter(buf)

	event := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     LevelInfo,
		Event:     EventRunStarted,
		RunID:     "b2c0ffee",
		Message:   "compilation started",
		Details: map[string]any{
			"tasks": 10,
		},
	}

	if err := emitter.Emit(event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	if decoded["event"] != string(EventRunStarted) {
		t.Fatalf("unexpected event name: %v", decoded["event"])
	}
	if decoded["run_id"] != "b2c0ffee" {
		t.Fatalf("unexpected run id: %v", decoded["run_id"])
	}
	if decoded["message"] != "compilation started" {
		t.Fatalf("unexpected message: %v", decoded["message"])
	}
}

func TestHumanEmitterRoutesBySeverity(t *testing.T) {
	var stdout, stderr bytes.Buffer
	emitter := NewHumanEmitter(&stdout, &stderr, false, false)

	events := []Event{
		{Level: LevelInfo, Event: EventTaskFinished, Message: "Synthesis Complete"},
		{Level: LevelWarn, Event: EventTaskProgress, Message: "channel width not set"},
		{Level: LevelError, Event: EventTaskFailed, Message: "Design counter routing failed"},
	}
	for _, event := range events {
		if err := emitter.Emit(event); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	if !strings.Contains(stdout.String(), "Synthesis Complete") {
		t.Fatalf("info line missing from stdout: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "WARN: channel width not set") {
		t.Fatalf("warn line missing from stderr: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "ERROR: Design counter routing failed") {
		t.Fatalf("error line missing from stderr: %q", stderr.String())
	}
}

func TestHumanEmitterQuietKeepsRunSummary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	emitter := NewHumanEmitter(&stdout, &stderr, true, false)

	_ = emitter.Emit(Event{Level: LevelInfo, Event: EventTaskFinished, Message: "Packing Complete"})
	_ = emitter.Emit(Event{Level: LevelInfo, Event: EventRunFinished, Message: "compilation finished"})

	if strings.Contains(stdout.String(), "Packing Complete") {
		t.Fatalf("quiet mode should suppress task lines: %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "compilation finished") {
		t.Fatalf("quiet mode should keep run summary: %q", stdout.String())
	}
}
