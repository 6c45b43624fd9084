package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/folio/internal/profile"
)

var (
	// ErrLoadFailed wraps the cause when the profile could not be fetched.
	ErrLoadFailed = errors.New("failed to fetch profile")
	// ErrSaveFailed wraps the cause when the profile could not be saved.
	ErrSaveFailed = errors.New("failed to update profile")
	// ErrInvalidTransition is returned for actions the current state does
	// not allow.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Service is the remote profile service as the controller sees it.
// Implemented by remote.Client.
type Service interface {
	Profile(ctx context.Context) (profile.Profile, error)
	Skills(ctx context.Context) ([]profile.Skill, error)
	UpdateProfile(ctx context.Context, d profile.FormDraft) (profile.Profile, error)
}

// Controller drives the Loading/Error/Viewing/Editing state machine and
// writes every outcome into its Store.
type Controller struct {
	svc   Service
	store *Store
	log   *slog.Logger
}

// NewController creates a Controller. A nil logger uses slog.Default().
func NewController(svc Service, store *Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{svc: svc, store: store, log: logger}
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *Store {
	return c.store
}

// Load enters Loading and fetches the profile and skills concurrently. Each
// completion writes to the store as soon as it arrives; there is no ordering
// guard between overlapping loads. Load returns once both have finished.
//
// Only the profile outcome decides between Viewing and Error. A skills
// failure is logged and leaves the skills list as it was.
func (c *Controller) Load(ctx context.Context) error {
	c.store.update(func(s *Snapshot) {
		s.State = Loading
		s.Err = ""
	})

	var g errgroup.Group
	var profileErr error

	g.Go(func() error {
		p, err := c.svc.Profile(ctx)
		if err != nil {
			profileErr = err
			c.log.Error("fetching profile", "error", err)
			c.store.update(func(s *Snapshot) {
				s.State = Error
				s.Err = MsgLoadFailed
			})
			return nil
		}
		c.store.update(func(s *Snapshot) {
			s.Profile = &p
			s.Draft = profile.NewDraft(p)
			s.State = Viewing
		})
		return nil
	})

	g.Go(func() error {
		skills, err := c.svc.Skills(ctx)
		if err != nil {
			c.log.Warn("fetching skills", "error", err)
			return nil
		}
		c.store.update(func(s *Snapshot) {
			s.Skills = skills
		})
		return nil
	})

	g.Wait()

	if profileErr != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, profileErr)
	}
	return nil
}

// ToggleEdit enters Editing from Viewing. From Editing it saves; there is no
// way to leave edit mode without saving.
func (c *Controller) ToggleEdit(ctx context.Context) error {
	var save bool
	err := c.store.modify(func(s *Snapshot) error {
		switch s.State {
		case Viewing:
			s.State = Editing
			s.SaveErr = ""
			return nil
		case Editing:
			save = true
			return errSkip
		}
		return fmt.Errorf("%w: cannot toggle edit mode while %s", ErrInvalidTransition, s.State)
	})
	if save {
		return c.Save(ctx)
	}
	return err
}

// errSkip aborts a modify without reporting an error to the caller.
var errSkip = errors.New("skip")

// SetField replaces one top-level draft field. Only valid while editing.
func (c *Controller) SetField(name, value string) error {
	return c.store.modify(func(s *Snapshot) error {
		if s.State != Editing {
			return fmt.Errorf("%w: cannot edit %s while %s", ErrInvalidTransition, name, s.State)
		}
		return s.Draft.Set(name, value)
	})
}

// SetSocialLink replaces one socialLinks entry of the draft. Only valid
// while editing.
func (c *Controller) SetSocialLink(platform, value string) error {
	return c.store.modify(func(s *Snapshot) error {
		if s.State != Editing {
			return fmt.Errorf("%w: cannot edit %s while %s", ErrInvalidTransition, platform, s.State)
		}
		return s.Draft.SetSocialLink(platform, value)
	})
}

// Save sends the whole draft to the service. On success the profile and the
// draft are replaced by the service's response and the view returns to
// Viewing. On failure the view stays in Editing with SaveErr set and both
// profile and draft untouched.
func (c *Controller) Save(ctx context.Context) error {
	var draft profile.FormDraft
	err := c.store.modify(func(s *Snapshot) error {
		if s.State != Editing {
			return fmt.Errorf("%w: cannot save while %s", ErrInvalidTransition, s.State)
		}
		s.Saving = true
		draft = s.Draft.Clone()
		return nil
	})
	if err != nil {
		return err
	}

	p, err := c.svc.UpdateProfile(ctx, draft)
	if err != nil {
		c.log.Error("saving profile", "error", err)
		c.store.update(func(s *Snapshot) {
			s.Saving = false
			s.SaveErr = MsgSaveFailed
		})
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	c.store.update(func(s *Snapshot) {
		s.Saving = false
		s.SaveErr = ""
		s.Profile = &p
		s.Draft = profile.NewDraft(p)
		s.State = Viewing
	})
	return nil
}
