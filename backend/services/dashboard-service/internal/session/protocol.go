package session

import (
	"brewdash/backend/services/dashboard-service/internal/presentation"
)

// Inbound message types.
const (
	MessageSetRangeStart = "setRangeStart"
	MessageSetRangeEnd   = "setRangeEnd"
	MessageSort          = "sort"
)

// Outbound frame types.
const (
	FrameDisplay = "display"
	FrameError   = "error"
)

// ClientMessage is sent by the page when the user edits the range or the sort.
type ClientMessage struct {
	Type string                 `json:"type"`
	Time string                 `json:"time,omitempty"`
	Sort *presentation.SortSpec `json:"sort,omitempty"`
}

// RangeFrame carries the current bounds as RFC3339 strings.
type RangeFrame struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Frame is pushed to the page after every state change.
type Frame struct {
	Type    string                    `json:"type"`
	Session string                    `json:"session"`
	Range   RangeFrame                `json:"range"`
	MinDate string                    `json:"minDate,omitempty"`
	Dirty   bool                      `json:"dirty"`
	Loading bool                      `json:"loading"`
	Notice  string                    `json:"notice,omitempty"`
	Outcome string                    `json:"outcome,omitempty"`
	Detail  string                    `json:"detail,omitempty"`
	Table   *presentation.Table       `json:"table,omitempty"`
	Chart   []presentation.ChartPoint `json:"chart,omitempty"`
}
