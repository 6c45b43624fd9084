// Package tui is an interactive terminal front end for the view controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/render"
	"github.com/kalambet/folio/internal/view"
)

// snapshotMsg carries a store change into the program.
type snapshotMsg view.Snapshot

// actionDoneMsg reports the end of a controller action run as a command.
type actionDoneMsg struct {
	err error
}

// entry is one editable line of the form.
type entry struct {
	name   string
	social bool
}

func entries() []entry {
	out := make([]entry, 0, len(profile.Fields)+len(profile.Platforms))
	for _, f := range profile.Fields {
		out = append(out, entry{name: f})
	}
	for _, p := range profile.Platforms {
		out = append(out, entry{name: p, social: true})
	}
	return out
}

// Model is the bubbletea model. It renders the last snapshot it received
// and turns key presses into controller calls. Controller calls run as
// commands because store observers send into the program.
type Model struct {
	ctx  context.Context
	ctrl *view.Controller
	rend *render.Renderer
	keys keyMap

	snap    view.Snapshot
	fields  []entry
	focus   int
	editing bool
	buffer  []rune
	cursor  int
	status  string

	focused lipgloss.Style
	help    lipgloss.Style
}

// New creates a Model driving ctrl. Output styling follows w.
func New(ctx context.Context, ctrl *view.Controller, w io.Writer, noColor bool) Model {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		rend:    render.New(w, noColor),
		keys:    defaultKeys,
		snap:    ctrl.Store().Snapshot(),
		fields:  entries(),
		focused: r.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		help:    r.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

// Init starts the initial load.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.ctrl.Load(m.ctx)}
	}
}

func (m Model) toggle() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.ctrl.ToggleEdit(m.ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = view.Snapshot(msg)
		if !m.snap.EditMode() {
			m.editing = false
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			slog.Debug("action failed", "error", msg.err)
			// Load and save failures are shown from the snapshot.
			if !errors.Is(msg.err, view.ErrLoadFailed) && !errors.Is(msg.err, view.ErrSaveFailed) {
				m.status = msg.err.Error()
			}
		}
		m.snap = m.ctrl.Store().Snapshot()
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleFieldKeys(msg)
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if m.snap.State == view.Viewing || (m.snap.EditMode() && !m.snap.Saving) {
			return m, m.toggle()
		}

	case !m.snap.EditMode():
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.focus > 0 {
			m.focus--
		}

	case key.Matches(msg, m.keys.Down):
		if m.focus < len(m.fields)-1 {
			m.focus++
		}

	case key.Matches(msg, m.keys.Edit):
		m.editing = true
		m.buffer = []rune(m.value(m.fields[m.focus]))
		m.cursor = len(m.buffer)
	}
	return m, nil
}

// handleFieldKeys edits the focused field in place. Enter writes the value
// into the draft, escape discards it.
func (m Model) handleFieldKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.editing = false

	case msg.Type == tea.KeyEnter:
		m.editing = false
		e, value := m.fields[m.focus], string(m.buffer)
		return m, func() tea.Msg {
			return actionDoneMsg{err: m.commit(e, value)}
		}

	case msg.Type == tea.KeyBackspace:
		if m.cursor > 0 {
			m.buffer = append(m.buffer[:m.cursor-1], m.buffer[m.cursor:]...)
			m.cursor--
		}

	case msg.Type == tea.KeyLeft:
		if m.cursor > 0 {
			m.cursor--
		}

	case msg.Type == tea.KeyRight:
		if m.cursor < len(m.buffer) {
			m.cursor++
		}

	case msg.Type == tea.KeyHome || msg.Type == tea.KeyCtrlA:
		m.cursor = 0

	case msg.Type == tea.KeyEnd || msg.Type == tea.KeyCtrlE:
		m.cursor = len(m.buffer)

	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		for _, r := range runes {
			m.buffer = append(m.buffer, 0)
			copy(m.buffer[m.cursor+1:], m.buffer[m.cursor:])
			m.buffer[m.cursor] = r
			m.cursor++
		}
	}
	return m, nil
}

func (m Model) commit(e entry, value string) error {
	if e.social {
		return m.ctrl.SetSocialLink(e.name, value)
	}
	return m.ctrl.SetField(e.name, value)
}

func (m Model) value(e entry) string {
	var v string
	if e.social {
		v, _ = m.snap.Draft.SocialLinks.Get(e.name)
	} else {
		v, _ = m.snap.Draft.Get(e.name)
	}
	return v
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.snap.EditMode() {
		return m.rend.Render(m.snap) + m.helpLine()
	}

	var b strings.Builder
	b.WriteString("Editing profile\n\n")
	for i, e := range m.fields {
		v := m.value(e)
		if m.editing && i == m.focus {
			v = string(m.buffer[:m.cursor]) + "█" + string(m.buffer[m.cursor:])
		}
		line := fmt.Sprintf("  %-9s %s", e.name+":", v)
		if i == m.focus {
			line = m.focused.Render("> " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if m.snap.SaveErr != "" {
		b.WriteString("✗ " + m.snap.SaveErr + "\n")
	}
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	if m.snap.Saving {
		b.WriteString("Saving...\n")
	} else {
		b.WriteString("[ " + render.Action(m.snap) + " ]\n")
	}
	return b.String() + m.helpLine()
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.keys.Toggle, m.keys.Quit}
	if m.snap.EditMode() {
		bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Edit, m.keys.Cancel, m.keys.Toggle, m.keys.Quit}
	}
	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return "\n" + m.help.Render(strings.Join(parts, " • ")) + "\n"
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, ctrl *view.Controller, in io.Reader, out io.Writer, noColor bool) error {
	program := tea.NewProgram(New(ctx, ctrl, out, noColor),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())

	unsubscribe := ctrl.Store().Subscribe(func(s view.Snapshot) {
		program.Send(snapshotMsg(s))
	})
	defer unsubscribe()

	_, err := program.Run()
	return err
}
