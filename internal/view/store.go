package view

import (
	"sync"

	"github.com/kalambet/folio/internal/profile"
)

// Observer is notified with a fresh snapshot after every store mutation.
type Observer func(Snapshot)

type subscription struct {
	id int
	fn Observer
}

// Store holds the view state. Mutations are serialized; observers run after
// the lock is released, on the goroutine that made the change.
type Store struct {
	mu        sync.Mutex
	snap      Snapshot
	observers []subscription
	nextID    int
}

// NewStore returns a store in the Loading state with an empty draft.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{
			State:  Loading,
			Skills: []profile.Skill{},
			Draft:  profile.EmptyDraft(),
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.clone()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies fn and notifies observers.
func (s *Store) update(fn func(*Snapshot)) {
	s.modify(func(snap *Snapshot) error {
		fn(snap)
		return nil
	})
}

// modify applies fn under the lock. When fn returns an error the state is
// left untouched and nobody is notified.
func (s *Store) modify(fn func(*Snapshot) error) error {
	s.mu.Lock()
	next := s.snap.clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.snap = next
	out := next.clone()
	observers := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		observers[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(out.clone())
	}
	return nil
}
