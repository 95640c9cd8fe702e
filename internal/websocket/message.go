package websocket

import (
	"time"

	"dsstool/internal/operations"
	"dsstool/internal/runlog"
)

// Message types
const (
	TypeConnection = "connection"
	TypeRunLog     = "run:log"
	TypeRunStatus  = "run:status"
)

// Message is the envelope of everything sent to clients.
type Message struct {
	Type      string      `json:"type"`
	RunID     string      `json:"run_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// LogData is the payload of a run:log message.
type LogData struct {
	runlog.Entry
	Line string `json:"line"`
}

// StatusData is the payload of a run:status message.
type StatusData struct {
	Status operations.RunStatus `json:"status"`
}

// ConnectionData is the payload of the greeting sent on connect.
type ConnectionData struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
	RunID    string `json:"run_id,omitempty"`
}
