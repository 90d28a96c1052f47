// Package tasks holds the in-memory task collection and the current filter.
//
// Every mutation runs the same fixed sequence: change the collection, save
// it, hand a fresh Snapshot to the renderer, then announce what happened.
// A Store is not safe for concurrent use; it is meant to be driven from a
// single event loop.
package tasks

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

// Announcements emitted after each mutation.
const (
	MsgAdded       = "Task added"
	MsgCompleted   = "Task completed"
	MsgReactivated = "Task reactivated"
	MsgUpdated     = "Task updated"
	MsgDeleted     = "Task deleted"
)

// ClearedMessage is the announcement for ClearCompleted removing n tasks.
func ClearedMessage(n int) string {
	return fmt.Sprintf("%d completed task(s) cleared", n)
}

// Persister loads and saves the whole collection.
type Persister interface {
	Load() []model.Task
	Save([]model.Task) error
}

// Snapshot is the state handed to the renderer. Tasks is a copy.
type Snapshot struct {
	Tasks  []model.Task
	Filter model.Filter
}

// Store owns the task collection.
type Store struct {
	persist  Persister
	render   func(Snapshot)
	announce func(string)
	now      func() time.Time
	newID    func() string
	logger   *log.Logger

	tasks       []model.Task
	filter      model.Filter
	lastCreated int64
}

// Option configures a Store.
type Option func(*Store)

// WithRenderer sets the function called with the new state after every change.
func WithRenderer(fn func(Snapshot)) Option {
	return func(s *Store) { s.render = fn }
}

// WithAnnouncer sets the status channel.
func WithAnnouncer(fn func(string)) Option {
	return func(s *Store) { s.announce = fn }
}

// WithClock overrides time.Now for creation timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithIDFunc overrides the id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets where persistence failures and ignored calls are logged.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New loads the collection from p and returns a Store showing all tasks.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persist:  p,
		render:   func(Snapshot) {},
		announce: func(string) {},
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   log.Default(),
		filter:   model.FilterAll,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.dedupe(p.Load())
	for _, t := range s.tasks {
		s.lastCreated = max(s.lastCreated, t.Created)
	}
	return s
}

// dedupe keeps the first task for each id.
func (s *Store) dedupe(in []model.Task) []model.Task {
	seen := make(map[string]bool, len(in))
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		if seen[t.ID] {
			s.logger.Warn("dropping task with duplicate id", "id", t.ID)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// Tasks returns a copy of the collection in stored order.
func (s *Store) Tasks() []model.Task { return slices.Clone(s.tasks) }

// Filter returns the current filter.
func (s *Store) Filter() model.Filter { return s.filter }

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Tasks: s.Tasks(), Filter: s.filter}
}

// Find returns the task with id.
func (s *Store) Find(id string) (model.Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// Refresh re-renders without touching the collection.
func (s *Store) Refresh() { s.render(s.Snapshot()) }

// Add appends a task with the trimmed text. Blank text does nothing at all.
func (s *Store) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	t := model.Task{ID: s.uniqueID(), Text: text, Created: s.created()}
	s.tasks = append(s.tasks, t)
	s.logger.Debug("task added", "id", t.ID)
	s.commit(MsgAdded)
}

// Toggle sets the done flag of task id. Unknown ids are ignored.
func (s *Store) Toggle(id string, done bool) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("toggle: no such task", "id", id)
		return
	}
	s.tasks[i].Done = done
	if done {
		s.commit(MsgCompleted)
		return
	}
	s.commit(MsgReactivated)
}

// Edit replaces the text of task id. Blank text removes the task.
func (s *Store) Edit(id, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.Remove(id)
		return
	}
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("edit: no such task", "id", id)
		return
	}
	s.tasks[i].Text = text
	s.commit(MsgUpdated)
}

// Remove deletes task id. The state is saved and re-rendered even when the
// id is unknown.
func (s *Store) Remove(id string) {
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
	s.commit(MsgDeleted)
}

// ClearCompleted deletes every done task.
func (s *Store) ClearCompleted() {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t model.Task) bool { return t.Done })
	s.commit(ClearedMessage(before - len(s.tasks)))
}

// SetFilter changes what is displayed. It only re-renders.
func (s *Store) SetFilter(f model.Filter) {
	if !f.Valid() {
		s.logger.Debug("ignoring unknown filter", "filter", f)
		return
	}
	s.filter = f
	s.Refresh()
}

func (s *Store) commit(msg string) {
	if err := s.persist.Save(s.tasks); err != nil {
		s.logger.Error("save tasks", "err", err)
	}
	s.Refresh()
	s.announce(msg)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// idAttempts bounds how often a custom generator is retried before
// falling back to random uuids.
const idAttempts = 8

func (s *Store) uniqueID() string {
	for range idAttempts {
		if id := s.newID(); id != "" && s.index(id) < 0 {
			return id
		}
	}
	s.logger.Warn("id generator keeps colliding, using uuid")
	for {
		if id := uuid.NewString(); s.index(id) < 0 {
			return id
		}
	}
}

// created hands out non-decreasing unix-milli timestamps.
func (s *Store) created() int64 {
	s.lastCreated = max(s.lastCreated, s.now().UnixMilli())
	return s.lastCreated
}
