package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/view"
)

// row adapts a view.Item to bubbles/list.Item.
type row struct{ view.Item }

func (r row) FilterValue() string { return r.Text }

// itemDelegate draws one task per line. It reads the editing state from the
// app so the row being edited shows the editor in place.
type itemDelegate struct{ app *App }

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(row)
	if !ok {
		return
	}
	t := d.app.theme

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Text
	if it.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.DoneText.Render(it.Text)
	}

	selected := index == m.Index() && d.app.focus == focusList
	prefix := "  "
	if selected {
		prefix = t.Selected.Render(">") + " "
	}

	if d.app.editing && it.ID == d.app.editID {
		fmt.Fprint(w, prefix+box+" "+d.app.editorView())
		return
	}
	fmt.Fprint(w, prefix+box+" "+text)
}
