// Package picker is the interactive target picker. It renders the
// resolver's items in a bubbletea program and feeds keystrokes back into
// the resolver until a target is chosen or the user gives up.
package picker

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timvw/pane-send/internal/model"
	"github.com/timvw/pane-send/internal/mux"
	"github.com/timvw/pane-send/internal/resolver"
)

// Picker runs the TUI against live tmux listings.
type Picker struct {
	Lister mux.Lister
	Theme  Theme
	// Output receives the TUI. Defaults to stderr so stdout stays usable
	// in pipelines.
	Output io.Writer
	Input  io.Reader
	// OpenTTY reads keys from the controlling terminal, for when stdin
	// carries the text being sent.
	OpenTTY bool
}

// Pick runs the picker until the user accepts a target (ok true) or
// cancels (ok false).
func (p *Picker) Pick(ctx context.Context, recent []model.Target) (model.Target, bool, error) {
	m := newModel(ctx, resolver.New(p.Lister, recent), newStyles(p.Theme))

	out := p.Output
	if out == nil {
		out = os.Stderr
	}
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out)}
	switch {
	case p.Input != nil:
		opts = append(opts, tea.WithInput(p.Input))
	case p.OpenTTY:
		opts = append(opts, tea.WithInputTTY())
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return model.Target{}, false, fmt.Errorf("picker: %w", err)
	}
	t, ok := final.(*pickerModel).state.Result()
	return t, ok, nil
}

const maxRows = 15

// pickerModel implements tea.Model
type pickerModel struct {
	ctx    context.Context
	res    *resolver.Resolver
	state  resolver.State
	items  []resolver.Item
	cursor int // index into items; -1 highlights the typed text

	input  textinput.Model
	styles styles

	width  int
	height int

	message string
}

func newModel(ctx context.Context, res *resolver.Resolver, st styles) *pickerModel {
	ti := textinput.New()
	ti.Placeholder = "session[:window[.pane]]"
	ti.Prompt = "> "
	ti.PromptStyle = st.prompt
	ti.Focus()

	m := &pickerModel{
		ctx:    ctx,
		res:    res,
		input:  ti,
		styles: st,
	}
	m.state = res.Begin(ctx)
	m.refresh()
	return m
}

func (m *pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// refresh recomputes the items for the current text and resets the cursor.
func (m *pickerModel) refresh() {
	m.state, m.items = m.res.OnInputChanged(m.ctx, m.state, m.input.Value())
	m.cursor = 0
	switch {
	case len(m.items) == 0:
		m.cursor = -1
	case m.state.Filtered && len(m.items) > 1 && m.items[0].Kind == resolver.KindSkip:
		m.cursor = 1
	}
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.state = m.res.Cancel(m.state)
		return m, tea.Quit

	case "up", "ctrl+p":
		// Moving above the first row highlights the typed text itself.
		if m.cursor > -1 {
			m.cursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		return m.accept()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.message = ""
		m.refresh()
	}
	return m, cmd
}

func (m *pickerModel) accept() (tea.Model, tea.Cmd) {
	var item *resolver.Item
	if m.cursor >= 0 && m.cursor < len(m.items) {
		item = &m.items[m.cursor]
	}

	next := m.res.Accept(m.state, m.input.Value(), item)
	if next.Err != nil {
		m.state = next
		m.message = next.Err.Error()
		return m, nil
	}
	m.state = next
	if m.state.Done() {
		return m, tea.Quit
	}

	m.message = ""
	m.input.SetValue(m.state.Input)
	m.input.CursorEnd()
	m.refresh()
	return m, nil
}

func (m *pickerModel) View() string {
	if m.state.Done() {
		return ""
	}
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("Send to tmux"))
	b.WriteString("  ")
	b.WriteString(hint(s, "↑↓", "select") + "  " + hint(s, "Enter", "accept") + "  " +
		hint(s, ":", "windows") + "  " + hint(s, ".", "panes") + "  " + hint(s, "Esc", "cancel"))
	b.WriteString("\n")

	line := m.input.View()
	if m.cursor == -1 && m.input.Value() != "" {
		line += "  " + s.dim.Render("(Enter uses the typed target)")
	}
	b.WriteString(line + "\n")

	if m.message != "" {
		b.WriteString(s.err.Render(m.message) + "\n")
	}

	if len(m.items) == 0 {
		b.WriteString(s.dim.Render("  No matches. Type a target and press Enter.") + "\n")
		return b.String()
	}

	start, end := m.visibleRange()
	section := ""
	for i := start; i < end; i++ {
		it := m.items[i]
		if it.Section != section {
			section = it.Section
			b.WriteString(s.section.Render("── "+section+" ──") + "\n")
		}
		b.WriteString(m.renderItem(it, i == m.cursor) + "\n")
	}
	if end < len(m.items) {
		b.WriteString(s.dim.Render(fmt.Sprintf("  … %d more", len(m.items)-end)) + "\n")
	}
	return b.String()
}

// visibleRange returns the window of items that fits the terminal and
// contains the cursor.
func (m *pickerModel) visibleRange() (int, int) {
	rows := maxRows
	if m.height > 0 && m.height-6 < rows {
		rows = max(m.height-6, 3)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	return start, min(start+rows, len(m.items))
}

func (m *pickerModel) renderItem(it resolver.Item, selected bool) string {
	s := m.styles
	if selected {
		return s.selected.Render("▸ "+it.Label) + "  " + s.dim.Render(it.Description)
	}
	return "  " + highlight(s, it.Label, it.Matched) + "  " + s.dim.Render(it.Description)
}

// highlight renders label with the characters at the matched byte offsets
// emphasized.
func highlight(s styles, label string, matched []int) string {
	if len(matched) == 0 {
		return s.text.Render(label)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range label {
		if hit[i] {
			b.WriteString(s.match.Render(string(r)))
		} else {
			b.WriteString(s.text.Render(string(r)))
		}
	}
	return b.String()
}

func hint(s styles, key, desc string) string {
	return s.hintKey.Render(key) + s.hintDesc.Render("="+desc)
}
