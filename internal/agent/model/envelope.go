package model

import "encoding/json"

// ChatRequest is the inbound body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	Template  string `json:"template,omitempty"`
	ToolsOnly bool   `json:"toolsOnly,omitempty"`
	KBMode    string `json:"kbMode,omitempty"`
}

// KBModeDB forces catalog-grounded tool search.
const KBModeDB = "db"

// RequestMeta carries transport data the engine needs but the body does not.
type RequestMeta struct {
	TraceID   string
	SessionID string
	ClientKey string
}

type TierDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Model       string `json:"model"`
}

type SlotOption struct {
	Label string `json:"label"`
	Send  string `json:"send"`
}

type SlotPrompt struct {
	Intent  string       `json:"intent"`
	Message string       `json:"message"`
	Options []SlotOption `json:"options"`
}

// Envelope is built exactly once per request, including error paths.
type Envelope struct {
	Response      string          `json:"response"`
	Tools         []CandidateItem `json:"tools,omitempty"`
	Tier          TierDescriptor  `json:"tier"`
	Premium       bool            `json:"premium"`
	Authenticated bool            `json:"authenticated"`
	TraceID       string          `json:"traceId"`
	Act           string          `json:"act,omitempty"`
	Strategy      string          `json:"strategy,omitempty"`
	SlotPrompt    *SlotPrompt     `json:"slotPrompt,omitempty"`
	Code          string          `json:"code,omitempty"`
}

// MarshalJSON emits "tools": [] for an explicit empty result and omits the key when Tools is nil.
func (e Envelope) MarshalJSON() ([]byte, error) {
	type plain Envelope
	out := struct {
		plain
		Tools *[]CandidateItem `json:"tools,omitempty"`
	}{plain: plain(e)}
	if e.Tools != nil {
		out.Tools = &e.Tools
	}
	return json.Marshal(out)
}
