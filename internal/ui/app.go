// Package ui renders tasks in the terminal: the interactive Bubble Tea
// program plus the themed output helpers used by the plain CLI.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/tasks"
	"github.com/Makepad-fr/tada/internal/view"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

// chrome is the number of lines around the list: border, header, filters,
// input, status and help.
const chrome = 10

// App is the interactive controller. Key presses become store calls; the
// store calls back into Render and Announce, which are the only writers of
// what is on screen.
type App struct {
	store  *tasks.Store
	logger *log.Logger
	theme  Theme
	keys   keyMap

	frame  view.View
	status string

	list   list.Model
	input  textinput.Model
	editor textinput.Model
	help   help.Model

	focus     focus
	canSubmit bool

	// inline edit
	editing      bool
	editID       string
	editOrig     string // stored text; the editor may hold a sanitized copy
	editInit     string
	editSelected bool // whole value selected; next edit replaces it

	width, height int
}

// NewApp builds an App. Call Bind before running it.
func NewApp(theme Theme, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	a := &App{
		logger: logger,
		theme:  theme,
		keys:   defaultKeys(),
		help:   help.New(),
		width:  80,
		height: 24,
	}

	l := list.New(nil, itemDelegate{app: a}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = theme.Muted
	l.Styles.NoItems = theme.Muted.PaddingLeft(2)
	a.list = l

	a.input = textinput.New()
	a.input.Prompt = "> "
	a.input.Placeholder = "What needs to be done?"
	a.input.CharLimit = 200
	a.input.Focus()

	a.editor = textinput.New()
	a.editor.Prompt = ""
	a.editor.CharLimit = 0

	a.resize()
	return a
}

// Bind attaches the store and draws its current state.
func (a *App) Bind(s *tasks.Store) {
	a.store = s
	s.Refresh()
}

// Render rebuilds the visible list from scratch. The cursor stays on the
// same task when that task is still visible.
func (a *App) Render(snap tasks.Snapshot) {
	var selectedID string
	if it, ok := a.list.SelectedItem().(row); ok {
		selectedID = it.ID
	}
	prev := a.list.Index()

	a.frame = view.Build(snap.Tasks, snap.Filter)
	items := make([]list.Item, 0, len(a.frame.Items))
	for _, it := range a.frame.Items {
		items = append(items, row{it})
	}
	a.list.SetItems(items)

	idx := a.frame.Index(selectedID)
	if idx < 0 {
		idx = min(prev, len(items)-1)
	}
	if idx >= 0 {
		a.list.Select(idx)
	}
}

// Announce shows msg on the status line.
func (a *App) Announce(msg string) {
	a.status = msg
	a.logger.Debug("announce", "msg", msg)
}

// Status is the last announcement.
func (a *App) Status() string { return a.status }

// Frame is the last render.
func (a *App) Frame() view.View { return a.frame }

// CanSubmit reports whether the add affordance is enabled.
func (a *App) CanSubmit() bool { return a.canSubmit }

// Editing returns the id of the task being edited.
func (a *App) Editing() (string, bool) { return a.editID, a.editing }

func (a *App) Init() tea.Cmd { return textinput.Blink }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.resize()
		return a, nil

	case tea.BlurMsg:
		// the terminal lost focus: an open edit is committed
		if a.editing {
			a.commitEdit()
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			if a.editing {
				a.commitEdit()
			}
			return a, tea.Quit
		}
		switch {
		case a.editing:
			return a, a.updateEditor(msg)
		case a.focus == focusInput:
			return a, a.updateInput(msg)
		default:
			return a, a.updateList(msg)
		}
	}

	// blink and friends go to whichever field has the cursor
	var cmd tea.Cmd
	switch {
	case a.editing:
		a.editor, cmd = a.editor.Update(msg)
	case a.focus == focusInput:
		a.input, cmd = a.input.Update(msg)
	}
	return a, cmd
}

func (a *App) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Submit):
		a.submit()
		return nil
	case key.Matches(msg, a.keys.SwitchFocus), key.Matches(msg, a.keys.Cancel):
		a.setFocus(focusList)
		return nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.syncSubmit()
	return cmd
}

func (a *App) submit() {
	text := strings.TrimSpace(a.input.Value())
	if text == "" {
		return
	}
	a.store.Add(text)
	a.input.SetValue("")
	a.syncSubmit()
	a.input.Focus()
}

func (a *App) syncSubmit() {
	a.canSubmit = strings.TrimSpace(a.input.Value()) != ""
}

func (a *App) updateList(msg tea.KeyMsg) tea.Cmd {
	k := a.keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit
	case key.Matches(msg, k.SwitchFocus), key.Matches(msg, k.NewTask):
		a.setFocus(focusInput)
		return textinput.Blink
	case key.Matches(msg, k.ShowAll):
		a.store.SetFilter(model.FilterAll)
		return nil
	case key.Matches(msg, k.ShowActive):
		a.store.SetFilter(model.FilterActive)
		return nil
	case key.Matches(msg, k.ShowDone):
		a.store.SetFilter(model.FilterDone)
		return nil
	case key.Matches(msg, k.NextFilter):
		a.store.SetFilter(nextFilter(a.store.Filter()))
		return nil
	case key.Matches(msg, k.Clear):
		a.store.ClearCompleted()
		return nil
	}

	it, ok := a.list.SelectedItem().(row)
	if ok {
		switch {
		case key.Matches(msg, k.Toggle):
			a.store.Toggle(it.ID, !it.Done)
			return nil
		case key.Matches(msg, k.Delete):
			a.store.Remove(it.ID)
			return nil
		case key.Matches(msg, k.Edit):
			return a.beginEdit(it.Item)
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return cmd
}

func nextFilter(f model.Filter) model.Filter {
	fs := model.Filters()
	for i, x := range fs {
		if x == f {
			return fs[(i+1)%len(fs)]
		}
	}
	return model.FilterAll
}

func (a *App) setFocus(f focus) {
	a.focus = f
	if f == focusInput {
		a.input.Focus()
		return
	}
	a.input.Blur()
}

func (a *App) beginEdit(it view.Item) tea.Cmd {
	a.editing = true
	a.editID = it.ID
	a.editSelected = true
	a.editOrig = it.Text
	a.editor.SetValue(it.Text)
	a.editInit = a.editor.Value()
	a.editor.CursorEnd()
	return a.editor.Focus()
}

func (a *App) updateEditor(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Commit):
		a.commitEdit()
		return nil
	case key.Matches(msg, a.keys.Cancel):
		a.cancelEdit()
		return nil
	case key.Matches(msg, a.keys.SwitchFocus):
		// moving focus away commits; there is no blur-cancel
		a.commitEdit()
		a.setFocus(focusInput)
		return textinput.Blink
	}

	if a.editSelected {
		a.editSelected = false
		switch msg.Type {
		case tea.KeyRunes, tea.KeySpace:
			a.editor.SetValue("")
		case tea.KeyBackspace, tea.KeyDelete:
			a.editor.SetValue("")
			return nil
		}
	}
	var cmd tea.Cmd
	a.editor, cmd = a.editor.Update(msg)
	return cmd
}

func (a *App) commitEdit() {
	id, text := a.editID, strings.TrimSpace(a.editor.Value())
	if a.editor.Value() == a.editInit {
		// untouched: keep tabs and newlines the editor flattened
		text = a.editOrig
	}
	a.endEdit()
	if text == "" {
		a.store.Remove(id)
		return
	}
	a.store.Edit(id, text)
}

func (a *App) cancelEdit() {
	a.endEdit()
	a.store.Refresh()
}

func (a *App) endEdit() {
	a.editing = false
	a.editID = ""
	a.editOrig, a.editInit = "", ""
	a.editSelected = false
	a.editor.Blur()
	a.editor.SetValue("")
}

func (a *App) editorView() string {
	if a.editSelected {
		return a.theme.Selected.Render(a.editor.Value())
	}
	return a.editor.View()
}

func (a *App) resize() {
	w := max(a.width-4, 20)
	h := max(a.height-chrome, 3)
	a.list.SetSize(w, h)
	a.input.Width = max(w-12, 10)
	a.editor.Width = max(w-6, 10)
	a.help.Width = w
}

func (a *App) View() string {
	t := a.theme
	var b strings.Builder

	b.WriteString(t.Title.Render("Todos"))
	b.WriteString("   ")
	b.WriteString(t.Muted.Render(a.frame.Summary.String()))
	b.WriteString("\n")

	b.WriteString(a.filtersView())
	b.WriteString("\n\n")

	b.WriteString(a.input.View())
	b.WriteString(" ")
	b.WriteString(a.submitView())
	b.WriteString("\n\n")

	b.WriteString(a.list.View())
	b.WriteString("\n\n")

	status := a.status
	if status == "" {
		status = " "
	}
	b.WriteString(t.Accent.Render(status))
	b.WriteString("\n")
	b.WriteString(a.help.View(a.helpKeys()))

	return t.Panel([]string{b.String()})
}

func (a *App) filtersView() string {
	t := a.theme
	parts := make([]string, 0, len(a.frame.Filters)+1)
	for _, fb := range a.frame.Filters {
		label := " " + fb.Label + " "
		if fb.Pressed {
			parts = append(parts, t.Pressed.Render("["+label+"]"))
			continue
		}
		parts = append(parts, t.Muted.Render(" "+label+" "))
	}
	clearCtl := t.Muted.Render("clear completed (c)")
	if !a.frame.HasDone {
		clearCtl = t.Disabled.Render("clear completed (c)")
	}
	parts = append(parts, "  "+clearCtl)
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) submitView() string {
	if a.canSubmit {
		return a.theme.Accent.Render("[ Add ]")
	}
	return a.theme.Disabled.Render("[ Add ]")
}

func (a *App) helpKeys() bindings {
	switch {
	case a.editing:
		return a.keys.editHelp()
	case a.focus == focusInput:
		return a.keys.inputHelp()
	}
	return a.keys.listHelp()
}

// Run starts the full-screen program and blocks until the user quits.
func Run(a *App) error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}
