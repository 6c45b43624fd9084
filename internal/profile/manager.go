package profile

import (
	"fmt"
	"sync"
	"time"
)

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	GetProfile() (Profile, error)
	PutProfile(p Profile) error
	ListSkills() ([]Skill, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager provides cached access to the stored profile for the service side.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *Profile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		clock: realClock{},
		ttl:   60 * time.Second,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// GetProfile returns the stored profile, from cache when fresh.
func (m *Manager) GetProfile() (Profile, error) {
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		p := m.cached.Clone()
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return m.cached.Clone(), nil
	}

	p, err := m.store.GetProfile()
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	m.cached = &p
	m.cachedAt = m.clock.Now()
	return p.Clone(), nil
}

// UpdateProfile replaces every editable field with the draft's values and
// returns the stored result.
func (m *Manager) UpdateProfile(d FormDraft) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.GetProfile()
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile: %w", err)
	}
	updated := current.WithDraft(d)
	if err := m.store.PutProfile(updated); err != nil {
		return Profile{}, fmt.Errorf("saving profile: %w", err)
	}

	m.cached = &updated
	m.cachedAt = m.clock.Now()
	return updated.Clone(), nil
}

// ReplaceProfile stores p as-is, including the image, and drops the cache.
func (m *Manager) ReplaceProfile(p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.PutProfile(p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	m.cached = nil
	return nil
}

// Skills returns every stored skill. Skills are not cached.
func (m *Manager) Skills() ([]Skill, error) {
	skills, err := m.store.ListSkills()
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	if skills == nil {
		skills = []Skill{}
	}
	return skills, nil
}
