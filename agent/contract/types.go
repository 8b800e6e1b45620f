package contract

import (
	"encoding/json"
	"maps"
)

type ModelRole string

const (
	ModelRoleDecide    ModelRole = "decide"
	ModelRoleSummarize ModelRole = "summarize"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the JSON object every tool returns. It always carries "status"
// and "message"; the remaining keys depend on the tool.
type Envelope map[string]any

func Success(message string) Envelope {
	return Envelope{"status": StatusSuccess, "message": message}
}

func Failure(message string) Envelope {
	return Envelope{"status": StatusError, "message": message}
}

func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

func (e Envelope) Status() string {
	s, _ := e["status"].(string)
	return s
}

func (e Envelope) Message() string {
	s, _ := e["message"].(string)
	return s
}

func (e Envelope) OK() bool {
	return e.Status() == StatusSuccess
}

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ToolResult struct {
	CallID string   `json:"call_id,omitempty"`
	Tool   string   `json:"tool"`
	Result Envelope `json:"result"`
}

// TurnResult is what one conversational turn hands back to the presentation
// layer. Fields holds structured values lifted from tool results
// (restaurants, reservation, bookings, offers, ...) and is flattened into the
// top level when encoded.
type TurnResult struct {
	TurnID      string         `json:"turn_id,omitempty"`
	Text        string         `json:"text"`
	Payload     map[string]any `json:"payload,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Error       string         `json:"error,omitempty"`
	Fields      map[string]any `json:"-"`
}

func (r TurnResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+5)
	maps.Copy(out, r.Fields)

	out["text"] = r.Text
	if r.TurnID != "" {
		out["turn_id"] = r.TurnID
	}
	if r.Payload != nil {
		out["payload"] = r.Payload
	}
	if len(r.ToolResults) > 0 {
		out["tool_results"] = r.ToolResults
	}
	if r.Error != "" {
		out["error"] = r.Error
	}
	return json.Marshal(out)
}
