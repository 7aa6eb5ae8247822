package tools

import (
	"encoding/json"
	"fmt"
)

// RequestContext identifies who asked for a tool call and where the
// conversation originated. It is immutable and passed by value to every
// collaborator; authorization decisions never trust model-generated
// arguments over these fields.
type RequestContext struct {
	RequesterID   string
	OriginGuildID string // empty for direct messages
	ChannelID     string
}

// IsDM reports whether the conversation originated from a direct message
func (rc RequestContext) IsDM() bool {
	return rc.OriginGuildID == ""
}

// Result represents the outcome of a tool execution. Errors are carried in
// the result, never thrown across the dispatch boundary.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`

	// RetryAfter, in seconds, is set when a collaborator signaled a rate
	// limit. The orchestrator may wait and re-issue the call.
	RetryAfter float64 `json:"retry_after,omitempty"`

	// Public marks a result whose output is already channel-visible text
	// (e.g. a sent message). The orchestrator finishes silently when the
	// model has nothing more to say after one of these.
	Public bool `json:"-"`

	// Acted marks results of state-changing actions, visible or not. Used
	// to stop the typing indicator once something actually happened.
	Acted bool `json:"-"`
}

// Payload renders the result as the JSON string fed back to the model as a
// tool turn.
func (r *Result) Payload() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"unencodable tool result"}`
	}
	return string(b)
}

// Errorf builds a failed result
func Errorf(format string, args ...interface{}) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}
