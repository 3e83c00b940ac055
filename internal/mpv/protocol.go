package mpv

import "encoding/json"

// request is one command line of mpv's JSON IPC protocol.
type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is one decoded IPC line: either a command reply (request_id set)
// or an asynchronous event (event set).
type message struct {
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`

	Event  string   `json:"event,omitempty"`
	ID     int64    `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Args   []string `json:"args,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// Event is an asynchronous notification from the player.
type Event struct {
	Name string
	// Data is the property value for property-change events.
	Data json.RawMessage
	// Reason is set for end-file events.
	Reason string
}
