// Package view turns the task collection and the current filter into what
// gets displayed: the filtered, ordered rows plus the item count summary.
// Everything here is a pure function of its inputs.
package view

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Makepad-fr/tada/internal/model"
)

// Item is an immutable snapshot of one displayed task. Gestures on a row
// refer back to the store by ID only.
type Item struct {
	ID      string
	Text    string
	Done    bool
	Created int64
}

// Summary counts the full, unfiltered collection.
type Summary struct {
	Total  int
	Active int
}

// Completed is the number of done tasks.
func (s Summary) Completed() int { return s.Total - s.Active }

// String renders e.g. "3 items (2 left)".
func (s Summary) String() string {
	noun := "items"
	if s.Total == 1 {
		noun = "item"
	}
	return fmt.Sprintf("%d %s (%d left)", s.Total, noun, s.Active)
}

// FilterButton is the state of one filter control.
type FilterButton struct {
	Filter  model.Filter
	Label   string
	Pressed bool
}

// View is one full render of the list.
type View struct {
	Items   []Item
	Summary Summary
	Filter  model.Filter
	Filters []FilterButton
	// HasDone reports whether any task, visible or not, is completed.
	HasDone bool
}

// Empty reports whether no rows are visible.
func (v View) Empty() bool { return len(v.Items) == 0 }

// Index returns the row showing the task with id, or -1.
func (v View) Index(id string) int {
	for i, it := range v.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Build renders tasks under filter. The input slice is not modified.
func Build(tasks []model.Task, filter model.Filter) View {
	if !filter.Valid() {
		filter = model.FilterAll
	}
	visible := Sort(Apply(tasks, filter))
	items := make([]Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, Item{ID: t.ID, Text: t.Text, Done: t.Done, Created: t.Created})
	}
	summary := Count(tasks)
	return View{
		Items:   items,
		Summary: summary,
		Filter:  filter,
		Filters: Buttons(filter),
		HasDone: summary.Completed() > 0,
	}
}

// Apply returns the tasks matching filter, in their original order.
func Apply(tasks []model.Task, filter model.Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a copy ordered active-first, then by creation time.
// Equal keys keep their relative order.
func Sort(tasks []model.Task) []model.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if a.Done != b.Done {
			if a.Done {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Created, b.Created)
	})
	return out
}

// Count summarizes the whole collection.
func Count(tasks []model.Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		if !t.Done {
			s.Active++
		}
	}
	return s
}

// Buttons returns the three filter controls with exactly one pressed.
func Buttons(selected model.Filter) []FilterButton {
	fs := model.Filters()
	out := make([]FilterButton, 0, len(fs))
	for _, f := range fs {
		out = append(out, FilterButton{Filter: f, Label: f.Label(), Pressed: f == selected})
	}
	return out
}
