package profile

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// --- Mock store ---

type mockStore struct {
	mu      sync.Mutex
	profile Profile
	skills  []Skill
	putErr  error

	getCalls int
}

func newMockStore() *mockStore {
	return &mockStore{profile: Profile{Skills: []SkillID{}}}
}

func (m *mockStore) GetProfile() (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	return m.profile.Clone(), nil
}

func (m *mockStore) PutProfile(p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.profile = p.Clone()
	return nil
}

func (m *mockStore) ListSkills() ([]Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skills, nil
}

// --- Mock clock ---

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- Tests ---

func TestGetProfile_Empty(t *testing.T) {
	mgr := NewManager(newMockStore())

	p, err := mgr.GetProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "" {
		t.Errorf("expected empty name, got %q", p.Name)
	}
	if p.Skills == nil {
		t.Error("expected non-nil skills slice")
	}
}

func TestUpdateProfile_KeepsImage(t *testing.T) {
	store := newMockStore()
	store.profile = Profile{Name: "Ada", ProfileImage: "https://img.example/ada.png", Skills: []SkillID{"1"}}
	mgr := NewManager(store)

	d := NewDraft(store.profile)
	d.Name = "Ada Lovelace"
	d.SocialLinks.GitHub = "https://github.com/ada"

	got, err := mgr.UpdateProfile(d)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want %q", got.Name, "Ada Lovelace")
	}
	if got.ProfileImage != "https://img.example/ada.png" {
		t.Errorf("ProfileImage = %q, want it preserved", got.ProfileImage)
	}
	if got.SocialLinks.GitHub != "https://github.com/ada" {
		t.Errorf("GitHub = %q", got.SocialLinks.GitHub)
	}
	if store.profile.Name != "Ada Lovelace" {
		t.Errorf("store not updated: %q", store.profile.Name)
	}
}

func TestUpdateProfile_StoreError(t *testing.T) {
	store := newMockStore()
	store.putErr = errors.New("disk full")
	mgr := NewManager(store)

	if _, err := mgr.UpdateProfile(EmptyDraft()); err == nil {
		t.Fatal("expected error from store")
	}
}

func TestCacheTTL(t *testing.T) {
	store := newMockStore()
	clock := &mockClock{now: time.Now()}
	mgr := NewManagerWithClock(store, clock, 60*time.Second)

	mgr.GetProfile()
	mgr.GetProfile()

	store.mu.Lock()
	calls := store.getCalls
	store.mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 store call (cache hit on second), got %d", calls)
	}
}

func TestCacheInvalidation(t *testing.T) {
	store := newMockStore()
	clock := &mockClock{now: time.Now()}
	ttl := 60 * time.Second
	mgr := NewManagerWithClock(store, clock, ttl)

	mgr.GetProfile()

	// Advance past TTL
	clock.Advance(ttl + time.Second)

	mgr.GetProfile()

	store.mu.Lock()
	calls := store.getCalls
	store.mu.Unlock()

	if calls != 2 {
		t.Errorf("expected 2 store calls (cache expired), got %d", calls)
	}
}

func TestReplaceProfile_DropsCache(t *testing.T) {
	store := newMockStore()
	mgr := NewManager(store)

	mgr.GetProfile()
	if err := mgr.ReplaceProfile(Profile{Name: "Grace"}); err != nil {
		t.Fatalf("ReplaceProfile: %v", err)
	}

	p, err := mgr.GetProfile()
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Name != "Grace" {
		t.Errorf("Name = %q, want Grace", p.Name)
	}
}

func TestSkills_NilBecomesEmpty(t *testing.T) {
	mgr := NewManager(newMockStore())

	skills, err := mgr.Skills()
	if err != nil {
		t.Fatalf("Skills: %v", err)
	}
	if skills == nil || len(skills) != 0 {
		t.Errorf("skills = %#v, want empty non-nil slice", skills)
	}
}
