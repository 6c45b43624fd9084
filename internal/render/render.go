// Package render draws view snapshots as terminal text.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/view"
)

const (
	ActionEdit = "Edit Profile"
	ActionSave = "Save Changes"
)

// Renderer turns snapshots into text styled for one output.
type Renderer struct {
	lr *lipgloss.Renderer

	name    lipgloss.Style
	title   lipgloss.Style
	heading lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
	alert   lipgloss.Style
	action  lipgloss.Style
}

// New creates a Renderer for w. With noColor set every style collapses to
// plain text.
func New(w io.Writer, noColor bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if noColor {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		lr:      lr,
		name:    lr.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		title:   lr.NewStyle().Foreground(lipgloss.Color("250")),
		heading: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		label:   lr.NewStyle().Foreground(lipgloss.Color("245")).Width(10),
		faint:   lr.NewStyle().Foreground(lipgloss.Color("242")),
		alert:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		action:  lr.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
	}
}

// Render returns the full view for s.
func (r *Renderer) Render(s view.Snapshot) string {
	switch s.State {
	case view.Loading:
		return r.faint.Render("Loading profile...") + "\n"
	case view.Error:
		return r.alert.Render("✗ "+s.Err) + "\n"
	case view.Editing:
		return r.editing(s)
	}
	return r.viewing(s)
}

// Action returns the label of the edit/save button for s, or "" when no
// button is shown.
func Action(s view.Snapshot) string {
	switch s.State {
	case view.Viewing:
		return ActionEdit
	case view.Editing:
		return ActionSave
	}
	return ""
}

func (r *Renderer) viewing(s view.Snapshot) string {
	var p profile.Profile
	if s.Profile != nil {
		p = *s.Profile
	}

	var b strings.Builder
	b.WriteString(r.name.Render(p.Name) + "\n")
	b.WriteString(r.title.Render(p.Title) + "\n")
	r.line(&b, "Image", p.Image())
	b.WriteString("\n")

	r.line(&b, "Email", p.Email)
	r.line(&b, "Phone", p.Phone)
	r.line(&b, "Location", p.Location)
	b.WriteString("\n")

	r.line(&b, "GitHub", p.SocialLinks.GitHub)
	r.line(&b, "LinkedIn", p.SocialLinks.LinkedIn)
	r.line(&b, "Twitter", p.SocialLinks.Twitter)
	b.WriteString("\n")

	b.WriteString(r.heading.Render("About") + "\n")
	if p.Bio != "" {
		b.WriteString("  " + p.Bio + "\n")
	}
	b.WriteString("\n")

	b.WriteString(r.heading.Render("Skills") + "\n")
	b.WriteString(SkillList(s.Skills))
	b.WriteString("\n")

	b.WriteString(r.action.Render("[ "+ActionEdit+" ]") + "\n")
	return b.String()
}

func (r *Renderer) editing(s view.Snapshot) string {
	var b strings.Builder
	b.WriteString(r.heading.Render("Editing profile") + "\n")
	for _, f := range profile.Fields {
		v, _ := s.Draft.Get(f)
		r.line(&b, f, v)
	}
	for _, pl := range profile.Platforms {
		v, _ := s.Draft.SocialLinks.Get(pl)
		r.line(&b, pl, v)
	}
	ids := make([]string, len(s.Draft.Skills))
	for i, id := range s.Draft.Skills {
		ids[i] = id.String()
	}
	r.line(&b, "skills", strings.Join(ids, ", "))
	b.WriteString("\n")

	if s.SaveErr != "" {
		b.WriteString(r.alert.Render("✗ "+s.SaveErr) + "\n")
	}
	if s.Saving {
		b.WriteString(r.faint.Render("Saving...") + "\n")
	} else {
		b.WriteString(r.action.Render("[ "+ActionSave+" ]") + "\n")
	}
	return b.String()
}

func (r *Renderer) line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n", r.label.Render(label+":"), value)
}

// SkillList returns one indented label per skill.
func SkillList(skills []profile.Skill) string {
	var b strings.Builder
	for _, sk := range skills {
		b.WriteString("  • " + sk.Label() + "\n")
	}
	return b.String()
}

// Watch draws the current snapshot to w and redraws whenever the state, the
// saving flag, the save error or the skill list changes. Draft edits alone do
// not redraw. It returns a function that stops watching.
func (r *Renderer) Watch(store *view.Store, w io.Writer) (stop func()) {
	var mu sync.Mutex
	var last watchKey
	var drawn bool

	// Notifications may arrive out of order, so each one draws the store's
	// latest snapshot rather than the one it carries.
	draw := func(view.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		s := store.Snapshot()
		k := keyOf(s)
		if drawn && k == last {
			return
		}
		last, drawn = k, true
		io.WriteString(w, r.Render(s))
	}

	stop = store.Subscribe(draw)
	draw(view.Snapshot{})
	return stop
}

type watchKey struct {
	state   view.State
	saving  bool
	saveErr string
	skills  string
}

// keyOf covers everything that changes the drawn screen outside edit mode.
// Profile and skills fetches land independently, so the skill list is part
// of the key.
func keyOf(s view.Snapshot) watchKey {
	return watchKey{state: s.State, saving: s.Saving, saveErr: s.SaveErr, skills: SkillList(s.Skills)}
}
