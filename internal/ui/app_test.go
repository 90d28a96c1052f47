package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/storage"
	"github.com/Makepad-fr/tada/internal/tasks"
)

func newTestApp(t *testing.T, initial ...model.Task) (*App, *tasks.Store) {
	t.Helper()
	p := jsonstore.New(storage.NewMemory(), "", logging.Discard())
	if len(initial) > 0 {
		if err := p.Save(initial); err != nil {
			t.Fatal(err)
		}
	}
	a := NewApp(ThemeByName("mono"), logging.Discard())
	s := tasks.New(p,
		tasks.WithRenderer(a.Render),
		tasks.WithAnnouncer(a.Announce),
		tasks.WithLogger(logging.Discard()),
	)
	a.Bind(s)
	return a, s
}

func typeText(a *App, s string) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return cmd
}

func press(a *App, k tea.KeyType) tea.Cmd {
	_, cmd := a.Update(tea.KeyMsg{Type: k})
	return cmd
}

func selectedID(a *App) string {
	it, _ := a.list.SelectedItem().(row)
	return it.ID
}

func threeTasks() []model.Task {
	return []model.Task{
		{ID: "a", Text: "Alpha", Created: 1},
		{ID: "b", Text: "Bravo", Created: 2},
		{ID: "c", Text: "Charlie", Created: 3},
	}
}

func TestSubmitAffordance(t *testing.T) {
	a, s := newTestApp(t)
	if a.CanSubmit() {
		t.Fatal("submit enabled on an empty field")
	}

	typeText(a, "   ")
	if a.CanSubmit() {
		t.Fatal("submit enabled for whitespace")
	}
	press(a, tea.KeyEnter)
	if len(s.Tasks()) != 0 || a.Status() != "" {
		t.Fatalf("blank submit had effects: %v %q", s.Tasks(), a.Status())
	}

	press(a, tea.KeyBackspace)
	press(a, tea.KeyBackspace)
	press(a, tea.KeyBackspace)
	typeText(a, "Buy milk")
	if !a.CanSubmit() {
		t.Fatal("submit disabled with text present")
	}
	press(a, tea.KeyEnter)

	got := s.Tasks()
	if len(got) != 1 || got[0].Text != "Buy milk" {
		t.Fatalf("Tasks: %+v", got)
	}
	if a.Status() != tasks.MsgAdded {
		t.Errorf("Status: got %q", a.Status())
	}
	if a.input.Value() != "" || a.CanSubmit() {
		t.Errorf("field not reset: %q canSubmit=%v", a.input.Value(), a.CanSubmit())
	}
	if a.focus != focusInput || !a.input.Focused() {
		t.Error("focus should return to the input field")
	}
	if len(a.Frame().Items) != 1 {
		t.Errorf("frame not re-rendered: %+v", a.Frame())
	}
}

func TestToggleAndDeleteFromList(t *testing.T) {
	a, s := newTestApp(t, threeTasks()...)
	press(a, tea.KeyTab)

	if selectedID(a) != "a" {
		t.Fatalf("cursor: got %q, want a", selectedID(a))
	}
	press(a, tea.KeySpace)
	if tk, _ := s.Find("a"); !tk.Done {
		t.Fatal("space did not complete the task")
	}
	if a.Status() != tasks.MsgCompleted {
		t.Errorf("Status: got %q", a.Status())
	}
	if a.Frame().Summary.Active != 2 {
		t.Errorf("Active: got %d", a.Frame().Summary.Active)
	}
	// done tasks sort last; the cursor follows the task
	if selectedID(a) != "a" || a.list.Index() != 2 {
		t.Errorf("cursor after toggle: %q at %d", selectedID(a), a.list.Index())
	}

	typeText(a, "x")
	if tk, _ := s.Find("a"); tk.Done {
		t.Fatal("x did not reactivate the task")
	}
	if a.Status() != tasks.MsgReactivated {
		t.Errorf("Status: got %q", a.Status())
	}

	typeText(a, "d")
	if _, ok := s.Find("a"); ok {
		t.Fatal("d did not delete the task")
	}
	if a.Status() != tasks.MsgDeleted {
		t.Errorf("Status: got %q", a.Status())
	}
	if selectedID(a) == "" {
		t.Error("cursor lost after delete")
	}
}

func TestFilterKeys(t *testing.T) {
	initial := threeTasks()
	initial[1].Done = true
	a, s := newTestApp(t, initial...)
	press(a, tea.KeyTab)

	typeText(a, "2")
	if s.Filter() != model.FilterActive || len(a.Frame().Items) != 2 {
		t.Fatalf("active filter: %s, %d rows", s.Filter(), len(a.Frame().Items))
	}
	typeText(a, "3")
	if len(a.Frame().Items) != 1 || a.Frame().Items[0].ID != "b" {
		t.Fatalf("done filter rows: %+v", a.Frame().Items)
	}
	typeText(a, "f")
	if s.Filter() != model.FilterAll {
		t.Fatalf("f from done: got %s, want all", s.Filter())
	}
	typeText(a, "f")
	if s.Filter() != model.FilterActive {
		t.Fatalf("f from all: got %s, want active", s.Filter())
	}

	pressed := 0
	for _, fb := range a.Frame().Filters {
		if fb.Pressed {
			pressed++
			if fb.Filter != model.FilterActive {
				t.Errorf("%s pressed, want active", fb.Filter)
			}
		}
	}
	if pressed != 1 {
		t.Errorf("%d filters pressed", pressed)
	}
	if a.Status() != "" {
		t.Errorf("filter change announced %q", a.Status())
	}
}

func TestClearCompletedKey(t *testing.T) {
	initial := threeTasks()
	initial[0].Done = true
	initial[2].Done = true
	a, s := newTestApp(t, initial...)
	press(a, tea.KeyTab)

	typeText(a, "c")
	if len(s.Tasks()) != 1 {
		t.Fatalf("Tasks: %+v", s.Tasks())
	}
	if a.Status() != "2 completed task(s) cleared" {
		t.Errorf("Status: got %q", a.Status())
	}
}

func TestEditCommit(t *testing.T) {
	a, s := newTestApp(t, threeTasks()...)
	press(a, tea.KeyTab)
	press(a, tea.KeyDown)

	typeText(a, "e")
	id, editing := a.Editing()
	if !editing || id != "b" {
		t.Fatalf("Editing: %q %v", id, editing)
	}
	if a.editor.Value() != "Bravo" || !a.editor.Focused() {
		t.Fatalf("editor: %q focused=%v", a.editor.Value(), a.editor.Focused())
	}

	// the value starts selected, so typing replaces it
	typeText(a, "Bonjour")
	if a.editor.Value() != "Bonjour" {
		t.Fatalf("editor after typing: %q", a.editor.Value())
	}
	typeText(a, "!")
	press(a, tea.KeyEnter)

	if tk, _ := s.Find("b"); tk.Text != "Bonjour!" {
		t.Errorf("text: got %q", tk.Text)
	}
	if a.Status() != tasks.MsgUpdated {
		t.Errorf("Status: got %q", a.Status())
	}
	if _, editing := a.Editing(); editing {
		t.Error("still editing after commit")
	}
}

func TestUnchangedEditKeepsText(t *testing.T) {
	long := strings.Repeat("x", 250)
	a, s := newTestApp(t,
		model.Task{ID: "a", Text: long, Created: 1},
		model.Task{ID: "b", Text: "col1\tcol2", Created: 2},
	)
	press(a, tea.KeyTab)

	press(a, tea.KeyEnter)
	if a.editor.Value() != long {
		t.Fatalf("editor cut the text to %d runes", len(a.editor.Value()))
	}
	press(a, tea.KeyEnter)
	if tk, _ := s.Find("a"); tk.Text != long {
		t.Errorf("long text: got %d runes", len(tk.Text))
	}

	press(a, tea.KeyDown)
	press(a, tea.KeyEnter)
	// focus loss commits too
	a.Update(tea.BlurMsg{})
	if tk, _ := s.Find("b"); tk.Text != "col1\tcol2" {
		t.Errorf("tabbed text: got %q", tk.Text)
	}
}

func TestEditCancel(t *testing.T) {
	a, s := newTestApp(t, threeTasks()...)
	press(a, tea.KeyTab)
	press(a, tea.KeyEnter)
	typeText(a, "garbage")
	press(a, tea.KeyEsc)

	if tk, _ := s.Find("a"); tk.Text != "Alpha" {
		t.Errorf("cancel changed text to %q", tk.Text)
	}
	if a.Status() != "" {
		t.Errorf("cancel announced %q", a.Status())
	}
	if _, editing := a.Editing(); editing {
		t.Error("still editing after cancel")
	}
	if a.focus != focusList {
		t.Error("cancel should leave focus on the list")
	}
}

func TestEditToEmptyDeletes(t *testing.T) {
	a, s := newTestApp(t, threeTasks()...)
	press(a, tea.KeyTab)
	typeText(a, "e")
	press(a, tea.KeyBackspace)
	if a.editor.Value() != "" {
		t.Fatalf("backspace on a selected value: %q", a.editor.Value())
	}
	press(a, tea.KeyEnter)

	if _, ok := s.Find("a"); ok {
		t.Fatal("task survived edit to empty")
	}
	if len(s.Tasks()) != 2 {
		t.Errorf("other tasks touched: %+v", s.Tasks())
	}
	if a.Status() != tasks.MsgDeleted {
		t.Errorf("Status: got %q", a.Status())
	}
}

func TestFocusLossCommits(t *testing.T) {
	t.Run("terminal blur", func(t *testing.T) {
		a, s := newTestApp(t, threeTasks()...)
		press(a, tea.KeyTab)
		typeText(a, "e")
		typeText(a, "Amended")
		a.Update(tea.BlurMsg{})

		if tk, _ := s.Find("a"); tk.Text != "Amended" {
			t.Errorf("text: got %q", tk.Text)
		}
	})

	t.Run("tab away", func(t *testing.T) {
		a, s := newTestApp(t, threeTasks()...)
		press(a, tea.KeyTab)
		typeText(a, "e")
		press(a, tea.KeyRight)
		typeText(a, "!")
		press(a, tea.KeyTab)

		if tk, _ := s.Find("a"); tk.Text != "Alpha!" {
			t.Errorf("text: got %q", tk.Text)
		}
		if a.focus != focusInput {
			t.Error("tab should move focus to the input")
		}
	})

	t.Run("quit", func(t *testing.T) {
		a, s := newTestApp(t, threeTasks()...)
		press(a, tea.KeyTab)
		typeText(a, "e")
		typeText(a, "Last words")
		cmd := press(a, tea.KeyCtrlC)

		if tk, _ := s.Find("a"); tk.Text != "Last words" {
			t.Errorf("text: got %q", tk.Text)
		}
		if cmd == nil {
			t.Fatal("ctrl+c returned no command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("ctrl+c did not quit")
		}
	})
}

func TestQuitFromList(t *testing.T) {
	a, _ := newTestApp(t)
	typeText(a, "q")
	if a.input.Value() != "q" {
		t.Fatalf("q in the input field should be typed, got %q", a.input.Value())
	}
	press(a, tea.KeyTab)
	cmd := typeText(a, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestView(t *testing.T) {
	initial := threeTasks()
	initial[2].Done = true
	a, _ := newTestApp(t, initial...)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := a.View()
	for _, want := range []string{"Todos", "3 items (2 left)", "Alpha", "Bravo", "Charlie", "[x]", "[ All ]", "[ Add ]"} {
		if !strings.Contains(out, want) {
			t.Errorf("View missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Charlie") < strings.Index(out, "Bravo") {
		t.Error("done task rendered before active ones")
	}
}
