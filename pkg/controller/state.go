package controller

import (
	"time"

	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/student"
)

// Status is the backend connectivity shown to the user.
type Status string

const (
	StatusUnknown      Status = "UNKNOWN"
	StatusConnected    Status = "CONNECTED"
	StatusDisconnected Status = "DISCONNECTED"
)

// Color is the indicator color for the status.
func (s Status) Color() string {
	switch s {
	case StatusConnected:
		return "#00ff9d"
	case StatusDisconnected:
		return "#ff4757"
	default:
		return "#8892b0"
	}
}

// State is everything a view needs to draw a session.
type State struct {
	// Query is the raw contents of the search input.
	Query string `json:"query"`
	// LastTerm is the trimmed term behind the rendered results.
	LastTerm string `json:"last_term"`

	Results     []student.Record `json:"results"`
	Cards       []student.Card   `json:"cards"`
	ResultCount int              `json:"result_count"`

	Status       Status   `json:"status"`
	TotalRecords *int     `json:"total_records,omitempty"`
	Columns      []string `json:"columns,omitempty"`

	// Latency of the last search that received an answer.
	Latency    time.Duration `json:"latency"`
	HasLatency bool          `json:"has_latency"`

	Loading bool `json:"loading"`
	// ShowPlaceholder is the empty state shown before any search and after
	// a reset.
	ShowPlaceholder bool `json:"show_placeholder"`
	// NoResults is set when the last rendered result set was empty.
	NoResults bool `json:"no_results"`

	Detail        *student.Detail       `json:"detail,omitempty"`
	Notifications []notify.Notification `json:"notifications"`

	Revision uint64 `json:"revision"`
}

// ShowResults reports whether the result area is visible.
func (s State) ShowResults() bool {
	return !s.Loading && !s.ShowPlaceholder
}

func initialState() State {
	return State{
		Status:          StatusUnknown,
		ShowPlaceholder: true,
	}
}

// snapshot copies s so callers can read it without holding the lock.
func (s State) snapshot() State {
	out := s
	if s.Results != nil {
		out.Results = append([]student.Record(nil), s.Results...)
	}
	if s.Cards != nil {
		out.Cards = append([]student.Card(nil), s.Cards...)
	}
	if s.Columns != nil {
		out.Columns = append([]string(nil), s.Columns...)
	}
	if s.TotalRecords != nil {
		n := *s.TotalRecords
		out.TotalRecords = &n
	}
	if s.Detail != nil {
		d := *s.Detail
		out.Detail = &d
	}
	return out
}
