// Package plugin runs external programs in response to counting events, such
// as announcing each repetition or appending it to a training log.
package plugin

import (
	"encoding/json"
	"time"
)

// Event names a counting event plugins can subscribe to.
type Event string

const (
	// EventRepCounted fires for every counted repetition.
	EventRepCounted Event = "rep_counted"
	// EventSessionStarted fires when an exercise is selected or the counter
	// is reset.
	EventSessionStarted Event = "session_started"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []Event         `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the plugin subscribes to e.
func (m Manifest) Handles(e Event) bool {
	for _, ev := range m.Events {
		if ev == e {
			return true
		}
	}
	return false
}

// Request is written to a plugin's stdin as JSON.
type Request struct {
	Event     Event           `json:"event"`
	Exercise  string          `json:"exercise"`
	SessionID string          `json:"session_id"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
