// Package view holds the client-side view state of the portfolio and the
// controller that keeps it in sync with the profile service.
package view

import "github.com/kalambet/folio/internal/profile"

// State is the phase of the sync state machine.
type State int

const (
	Loading State = iota
	Error
	Viewing
	Editing
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	}
	return "unknown"
}

// User-visible messages for the two failure categories that surface.
const (
	MsgLoadFailed = "Failed to fetch profile"
	MsgSaveFailed = "Failed to update profile"
)

// Snapshot is a point-in-time copy of the view state. Observers and callers
// get their own copy and may keep it.
type Snapshot struct {
	State State
	// Profile is the last profile confirmed by the service, nil until the
	// first successful load.
	Profile *profile.Profile
	Skills  []profile.Skill
	Draft   profile.FormDraft
	// Saving is set while a PUT is in flight.
	Saving bool
	// Err holds the load failure message in the Error state.
	Err string
	// SaveErr holds the localized save failure message while editing.
	SaveErr string
}

// EditMode reports whether editable widgets should be shown.
func (s Snapshot) EditMode() bool { return s.State == Editing }

// Loading reports whether the initial profile fetch is outstanding.
func (s Snapshot) Loading() bool { return s.State == Loading }

func (s Snapshot) clone() Snapshot {
	cp := s
	if s.Profile != nil {
		p := s.Profile.Clone()
		cp.Profile = &p
	}
	cp.Skills = make([]profile.Skill, len(s.Skills))
	copy(cp.Skills, s.Skills)
	cp.Draft = s.Draft.Clone()
	return cp
}
