package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/view"
)

// ErrRefRequired indicates no task reference was provided.
var ErrRefRequired = errors.New("task reference required")

// ResolveRef finds the task named by ref.
//
// A ref is either the 1-based row number shown by `tada ls` (rows are
// numbered in display order over all tasks, whatever filter is applied) or
// a prefix of the task id that matches exactly one task.
func ResolveRef(tasks []model.Task, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, ErrRefRequired
	}

	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err != nil {
			return model.Task{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		rows := view.Sort(tasks)
		if n < 1 || n > len(rows) {
			return model.Task{}, fmt.Errorf("index out of range: have %d, got %d", len(rows), n)
		}
		return rows[n-1], nil
	}

	var found []model.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return found[0], nil
	}
	return model.Task{}, fmt.Errorf("ambiguous task reference %q matches %d tasks", ref, len(found))
}

// rowNumbers maps task ids to the row numbers ResolveRef accepts.
func rowNumbers(tasks []model.Task) map[string]int {
	rows := view.Sort(tasks)
	m := make(map[string]int, len(rows))
	for i, t := range rows {
		m[t.ID] = i + 1
	}
	return m
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
