package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Profile errors.
var (
	ErrProfileRequired = errors.New("netfree profile is required")
	ErrProfileNotFound = errors.New("netfree profile not found")
)

// Profile is a netfree categories profile. Every client belongs to one.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// UnmarshalJSON accepts numeric or string profile ids.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type alias Profile
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("decoding profile id: %w", err)
	}
	*p = Profile(raw.alias)
	p.ID = id
	return nil
}

// FindProfile resolves ref against profiles by id, then by name ignoring
// case. An empty ref picks the default profile.
func FindProfile(profiles []Profile, ref string) (Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		for _, p := range profiles {
			if p.IsDefault {
				return p, nil
			}
		}
		return Profile{}, ErrProfileRequired
	}
	for _, p := range profiles {
		if p.ID == ref {
			return p, nil
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, ref)
}
