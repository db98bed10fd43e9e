package bridge

import (
	"encoding/json"

	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

// Message types, client to server.
const (
	TypeReset   = "reset"
	TypeStep    = "step"
	TypeRender  = "render"
	TypeRules   = "rules"
	TypeSuggest = "suggest"
)

// Message types, server to client.
const (
	TypeObservation = "observation"
	TypeAction      = "action"
	TypeError       = "error"
)

// Error codes other than the core action codes.
const (
	CodeBadMessage  = "BAD_MESSAGE"
	CodeUnknownType = "UNKNOWN_TYPE"
	CodeTerminated  = "TERMINATED"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ResetRequest optionally reseeds the connection's env.
type ResetRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

// StepRequest carries one router action.
type StepRequest struct {
	Action core.Action `json:"action"`
}

// Observation is the wire form of core.Observation with plain integer arrays.
type Observation struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Board      []int  `json:"board"`
	Directions []int  `json:"directions"`
	EditMask   []int  `json:"edit_mask"`
	StepsHint  int    `json:"steps_hint"`
	Phase      string `json:"phase"`
}

// FromCore converts an engine observation.
func FromCore(o core.Observation) Observation {
	return Observation{
		Width:      o.Width,
		Height:     o.Height,
		Board:      ints(o.Board),
		Directions: ints(o.Directions),
		EditMask:   ints(o.EditMask),
		StepsHint:  o.StepsHint,
		Phase:      o.Phase,
	}
}

func ints(b []uint8) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// ObservationPayload answers reset and step.
type ObservationPayload struct {
	Observation Observation    `json:"observation"`
	Reward      float64        `json:"reward"`
	Terminated  bool           `json:"terminated"`
	Info        map[string]any `json:"info"`
	Score       *core.Score    `json:"score,omitempty"` // set once terminated
}

// RenderPayload answers render.
type RenderPayload struct {
	Text string `json:"text"`
}

// RulesPayload answers rules.
type RulesPayload struct {
	Variant    string     `json:"variant"`
	Categories int        `json:"categories"`
	Rules      core.Rules `json:"rules"`
}

// ActionPayload answers suggest.
type ActionPayload struct {
	Router string      `json:"router"`
	Action core.Action `json:"action"`
}

// ErrorPayload reports a failed request. The connection stays open.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMessage(typ string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: typ, Data: raw}, nil
}
