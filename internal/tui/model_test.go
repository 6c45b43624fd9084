package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/view"
)

type fakeService struct {
	mu      sync.Mutex
	p       profile.Profile
	failPut bool
	sent    []profile.FormDraft
}

func (f *fakeService) Profile(context.Context) (profile.Profile, error) {
	return f.p, nil
}

func (f *fakeService) Skills(context.Context) ([]profile.Skill, error) {
	return []profile.Skill{{ID: "1", Name: "Go", Category: "Lang", Proficiency: 90, YearsOfExperience: 5}}, nil
}

func (f *fakeService) UpdateProfile(_ context.Context, d profile.FormDraft) (profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, d)
	if f.failPut {
		return profile.Profile{}, errors.New("down")
	}
	return f.p.WithDraft(d), nil
}

func newTestModel(t *testing.T, svc view.Service) Model {
	t.Helper()
	ctrl := view.NewController(svc, view.NewStore(), nil)
	m := New(context.Background(), ctrl, &bytes.Buffer{}, true)
	return run(t, m, m.Init())
}

// run executes cmd synchronously and feeds its message back into m.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, k tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(k)
	return run(t, next.(Model), cmd)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoads(t *testing.T) {
	m := newTestModel(t, &fakeService{p: profile.Profile{Name: "Ada"}})
	if m.snap.State != view.Viewing {
		t.Fatalf("state = %v, want viewing", m.snap.State)
	}
	out := m.View()
	for _, want := range []string{"Ada", "Go - Lang (90%) - 5 yrs", "Edit Profile", "quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestEditAndSave(t *testing.T) {
	svc := &fakeService{p: profile.Profile{Name: "Ada", Title: "Engineer"}}
	m := newTestModel(t, svc)

	m = press(t, m, keyRunes("e"))
	if !m.snap.EditMode() {
		t.Fatalf("state = %v, want editing", m.snap.State)
	}

	// Focus title, replace its value.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing {
		t.Fatal("expected inline editing")
	}
	for range "Engineer" {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(t, m, keyRunes("Staff"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = press(t, m, keyRunes("Engineer"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.editing {
		t.Fatal("inline editing still active")
	}
	if m.snap.Draft.Title != "Staff Engineer" {
		t.Fatalf("draft title = %q", m.snap.Draft.Title)
	}

	m = press(t, m, keyRunes("s"))
	if m.snap.State != view.Viewing {
		t.Fatalf("state = %v, want viewing", m.snap.State)
	}
	if len(svc.sent) != 1 || svc.sent[0].Title != "Staff Engineer" || svc.sent[0].Name != "Ada" {
		t.Errorf("sent = %+v", svc.sent)
	}
	if m.snap.Profile.Title != "Staff Engineer" {
		t.Errorf("profile title = %q", m.snap.Profile.Title)
	}
}

func TestEscapeDiscardsFieldEdit(t *testing.T) {
	m := newTestModel(t, &fakeService{p: profile.Profile{Name: "Ada"}})
	m = press(t, m, keyRunes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, keyRunes("xyz"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.editing {
		t.Fatal("inline editing still active")
	}
	if m.snap.Draft.Name != "Ada" {
		t.Errorf("draft name = %q, want unchanged", m.snap.Draft.Name)
	}
}

func TestSocialLinkEdit(t *testing.T) {
	m := newTestModel(t, &fakeService{p: profile.Profile{Name: "Ada"}})
	m = press(t, m, keyRunes("e"))
	for i := 0; i < len(profile.Fields); i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, keyRunes("gh"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.snap.Draft.SocialLinks.GitHub != "gh" {
		t.Errorf("github = %q", m.snap.Draft.SocialLinks.GitHub)
	}
}

func TestSaveFailureStaysEditing(t *testing.T) {
	m := newTestModel(t, &fakeService{p: profile.Profile{Name: "Ada"}, failPut: true})
	m = press(t, m, keyRunes("e"))
	m = press(t, m, keyRunes("s"))

	if !m.snap.EditMode() {
		t.Fatalf("state = %v, want editing", m.snap.State)
	}
	if !strings.Contains(m.View(), "Failed to update profile") {
		t.Errorf("view missing save error:\n%s", m.View())
	}
	if m.status != "" {
		t.Errorf("status = %q, want save error shown only once", m.status)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestCursorMovement(t *testing.T) {
	m := newTestModel(t, &fakeService{p: profile.Profile{Name: "Ada"}})
	m = press(t, m, keyRunes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyHome})
	m = press(t, m, keyRunes("Dr "))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	m = press(t, m, keyRunes("!"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.snap.Draft.Name != "Dr Ada!" {
		t.Errorf("name = %q", m.snap.Draft.Name)
	}
}
