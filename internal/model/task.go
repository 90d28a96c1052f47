package model

import (
	"fmt"
	"strings"
)

// Task is the domain model for a todo entry. It is the only thing we persist.
type Task struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Done    bool   `json:"done"`
	Created int64  `json:"created"` // unix millis, tie-breaker for display order
}

// Filter names a display subset of the collection.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Filters returns the filters in the order they are shown.
func Filters() []Filter { return []Filter{FilterAll, FilterActive, FilterDone} }

// ParseFilter accepts a filter name, case-insensitive. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "pending":
		return FilterActive, nil
	case "done", "completed":
		return FilterDone, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or done)", s)
}

// Valid reports whether f is one of the three known filters.
func (f Filter) Valid() bool {
	return f == FilterAll || f == FilterActive || f == FilterDone
}

// Match reports whether t belongs to the subset named by f.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Done
	case FilterDone:
		return t.Done
	}
	return true
}

// Label is the text shown on the filter control.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterDone:
		return "Done"
	}
	return "All"
}
