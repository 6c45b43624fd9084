package profile

import "fmt"

// FormDraft is the client-side editable copy of a Profile. It is always
// replaced wholesale when reseeded, never merged.
type FormDraft struct {
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Bio         string      `json:"bio"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Location    string      `json:"location"`
	Skills      []SkillID   `json:"skills"`
	SocialLinks SocialLinks `json:"socialLinks"`
}

// Editable top-level draft fields, in display order.
var Fields = []string{"name", "title", "bio", "email", "phone", "location"}

// Social link platforms, in display order.
var Platforms = []string{"github", "linkedin", "twitter"}

// EmptyDraft returns the draft used before any profile has been loaded.
func EmptyDraft() FormDraft {
	return FormDraft{Skills: []SkillID{}}
}

// NewDraft seeds a draft from every editable field of p.
func NewDraft(p Profile) FormDraft {
	return FormDraft{
		Name:        p.Name,
		Title:       p.Title,
		Bio:         p.Bio,
		Email:       p.Email,
		Phone:       p.Phone,
		Location:    p.Location,
		Skills:      cloneIDs(p.Skills),
		SocialLinks: p.SocialLinks,
	}
}

// Clone returns a deep copy of d.
func (d FormDraft) Clone() FormDraft {
	cp := d
	cp.Skills = cloneIDs(d.Skills)
	return cp
}

// Set replaces a single top-level field by its JSON name.
func (d *FormDraft) Set(field, value string) error {
	p, err := d.field(field)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Get returns a top-level field by its JSON name.
func (d FormDraft) Get(field string) (string, error) {
	p, err := d.field(field)
	if err != nil {
		return "", err
	}
	return *p, nil
}

func (d *FormDraft) field(name string) (*string, error) {
	switch name {
	case "name":
		return &d.Name, nil
	case "title":
		return &d.Title, nil
	case "bio":
		return &d.Bio, nil
	case "email":
		return &d.Email, nil
	case "phone":
		return &d.Phone, nil
	case "location":
		return &d.Location, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// SetSocialLink replaces one key of the socialLinks mapping.
func (d *FormDraft) SetSocialLink(platform, value string) error {
	p, err := d.SocialLinks.link(platform)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Get returns the URL for a platform name.
func (l SocialLinks) Get(platform string) (string, error) {
	p, err := l.link(platform)
	if err != nil {
		return "", err
	}
	return *p, nil
}

func (l *SocialLinks) link(platform string) (*string, error) {
	switch platform {
	case "github":
		return &l.GitHub, nil
	case "linkedin":
		return &l.LinkedIn, nil
	case "twitter":
		return &l.Twitter, nil
	}
	return nil, fmt.Errorf("%w: socialLinks.%s", ErrUnknownField, platform)
}
