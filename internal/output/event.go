package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventRunStarted    EventName = "run_started"
	EventTaskStarted   EventName = "task_started"
	EventTaskProgress  EventName = "task_progress"
	EventTaskFinished  EventName = "task_finished"
	EventTaskFailed    EventName = "task_failed"
	EventRunFinished   EventName = "run_finished"
	EventReportCreated EventName = "report_created"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	RunID     string         `json:"run_id,omitempty"`
	Task      string         `json:"task,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
