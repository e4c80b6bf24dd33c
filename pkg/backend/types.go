package backend

import (
	"github.com/rubiojr/stusearch/pkg/student"
)

// ColumnsResponse is the body of GET /columns.
type ColumnsResponse struct {
	Success       bool     `json:"success"`
	Columns       []string `json:"columns,omitempty"`
	TotalStudents *int     `json:"total_students,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Success    bool             `json:"success"`
	Students   []student.Record `json:"students,omitempty"`
	Message    string           `json:"message,omitempty"`
	Count      *int             `json:"count,omitempty"`
	SearchTerm string           `json:"search_term,omitempty"`
}
