package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownField is returned when a draft edit names a field that is not
// part of the editable profile.
var ErrUnknownField = errors.New("unknown profile field")

// DefaultImage is shown when the profile has no image URL.
const DefaultImage = "/default-profile.jpg"

// Profile is the server-owned portfolio record. There is exactly one per
// service, so it carries no identifier.
type Profile struct {
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Bio          string      `json:"bio"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Location     string      `json:"location"`
	ProfileImage string      `json:"profileImage,omitempty"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	Skills       []SkillID   `json:"skills"`
}

// SocialLinks holds the fixed set of social profile URLs.
type SocialLinks struct {
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
	Twitter  string `json:"twitter"`
}

// UnmarshalJSON applies the defaults for absent fields: strings and social
// links are left empty, a missing skills list becomes an empty one.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Skills == nil {
		v.Skills = []SkillID{}
	}
	*p = Profile(v)
	return nil
}

// Image returns the profile image URL or DefaultImage when unset.
func (p Profile) Image() string {
	if p.ProfileImage == "" {
		return DefaultImage
	}
	return p.ProfileImage
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	cp := p
	cp.Skills = cloneIDs(p.Skills)
	return cp
}

// WithDraft returns a copy of p with every editable field replaced by the
// draft's values. Fields outside the draft (the image) are kept.
func (p Profile) WithDraft(d FormDraft) Profile {
	out := p.Clone()
	out.Name = d.Name
	out.Title = d.Title
	out.Bio = d.Bio
	out.Email = d.Email
	out.Phone = d.Phone
	out.Location = d.Location
	out.SocialLinks = d.SocialLinks
	out.Skills = cloneIDs(d.Skills)
	return out
}

// SkillID is a skill identifier as it appears on the wire. Services use
// either numbers or strings; the literal is kept so it round-trips verbatim.
type SkillID string

// UnmarshalJSON accepts a JSON number or string.
func (id *SkillID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("skill id must be a number or string, got %s", raw)
	}
	*id = SkillID(raw)
	return nil
}

// MarshalJSON writes the identifier literal back unchanged.
func (id SkillID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return []byte(id), nil
}

// String returns the identifier without JSON quoting.
func (id SkillID) String() string {
	s := string(id)
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}

// Skill is a read-only competency record.
type Skill struct {
	ID                SkillID `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Proficiency       float64 `json:"proficiency"`
	YearsOfExperience float64 `json:"yearsOfExperience"`
}

// Label formats the skill as "<name> - <category> (<proficiency>%) - <years> yrs".
func (s Skill) Label() string {
	return fmt.Sprintf("%s - %s (%s%%) - %s yrs",
		s.Name, s.Category, formatNumber(s.Proficiency), formatNumber(s.YearsOfExperience))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func cloneIDs(ids []SkillID) []SkillID {
	if ids == nil {
		return []SkillID{}
	}
	out := make([]SkillID, len(ids))
	copy(out, ids)
	return out
}
