package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Yash-SD99/Echoing-Hearts/pkg/reveal"
)

const (
	AvatarMale   = "male"
	AvatarFemale = "female"
)

// Field limits.
const (
	MaxDisplayNameLen = 32
	MaxListItems      = 10
	MaxListItemLen    = 32
	MaxFirstNameLen   = 32
	MaxShortBioLen    = 160
	MaxLongBioLen     = 1000
	MaxShortFieldLen  = 100
)

// Profile is what a chat partner gradually gets to see.
type Profile struct {
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Avatar       string    `json:"avatar"`
	Interests    []string  `json:"interests"`
	Traits       []string  `json:"traits"`
	FirstName    string    `json:"first_name"`
	ShortBio     string    `json:"short_bio"`
	LongBio      string    `json:"long_bio"`
	FavoriteSong string    `json:"favorite_song"`
	City         string    `json:"city"`
	MysteryFact  string    `json:"mystery_fact"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevealFields projects the profile onto the reveal blocks.
func (p *Profile) RevealFields() reveal.ProfileFields {
	return reveal.ProfileFields{
		DisplayName:  p.DisplayName,
		Interests:    p.Interests,
		Traits:       p.Traits,
		FirstName:    p.FirstName,
		ShortBio:     p.ShortBio,
		LongBio:      p.LongBio,
		FavoriteSong: p.FavoriteSong,
		City:         p.City,
		MysteryFact:  p.MysteryFact,
	}
}

func IsValidAvatar(a string) bool {
	return a == AvatarMale || a == AvatarFemale
}

// UpdateProfileRequest is a partial update; nil fields are left alone.
type UpdateProfileRequest struct {
	DisplayName  *string   `json:"display_name"`
	Avatar       *string   `json:"avatar"`
	Interests    *[]string `json:"interests"`
	Traits       *[]string `json:"traits"`
	FirstName    *string   `json:"first_name"`
	ShortBio     *string   `json:"short_bio"`
	LongBio      *string   `json:"long_bio"`
	FavoriteSong *string   `json:"favorite_song"`
	City         *string   `json:"city"`
	MysteryFact  *string   `json:"mystery_fact"`
}

func (r *UpdateProfileRequest) Validate() error {
	strs := []struct {
		name string
		val  *string
		max  int
	}{
		{"display_name", r.DisplayName, MaxDisplayNameLen},
		{"first_name", r.FirstName, MaxFirstNameLen},
		{"short_bio", r.ShortBio, MaxShortBioLen},
		{"long_bio", r.LongBio, MaxLongBioLen},
		{"favorite_song", r.FavoriteSong, MaxShortFieldLen},
		{"city", r.City, MaxShortFieldLen},
		{"mystery_fact", r.MysteryFact, MaxShortFieldLen},
	}
	for _, s := range strs {
		if s.val == nil {
			continue
		}
		*s.val = strings.TrimSpace(*s.val)
		if utf8.RuneCountInString(*s.val) > s.max {
			return fmt.Errorf("%s must be at most %d characters", s.name, s.max)
		}
	}

	if r.Avatar != nil && !IsValidAvatar(*r.Avatar) {
		return fmt.Errorf("avatar must be %q or %q", AvatarMale, AvatarFemale)
	}

	for name, list := range map[string]*[]string{"interests": r.Interests, "traits": r.Traits} {
		if list == nil {
			continue
		}
		cleaned, err := cleanList(name, *list)
		if err != nil {
			return err
		}
		*list = cleaned
	}
	return nil
}

// Apply copies the set fields onto p.
func (r *UpdateProfileRequest) Apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.DisplayName, r.DisplayName)
	set(&p.Avatar, r.Avatar)
	set(&p.FirstName, r.FirstName)
	set(&p.ShortBio, r.ShortBio)
	set(&p.LongBio, r.LongBio)
	set(&p.FavoriteSong, r.FavoriteSong)
	set(&p.City, r.City)
	set(&p.MysteryFact, r.MysteryFact)
	if r.Interests != nil {
		p.Interests = *r.Interests
	}
	if r.Traits != nil {
		p.Traits = *r.Traits
	}
}

// cleanList trims items, drops empties and case-insensitive duplicates.
func cleanList(name string, items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if utf8.RuneCountInString(it) > MaxListItemLen {
			return nil, fmt.Errorf("each %s entry must be at most %d characters", name, MaxListItemLen)
		}
		key := strings.ToLower(it)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	if len(out) > MaxListItems {
		return nil, fmt.Errorf("at most %d %s allowed", MaxListItems, name)
	}
	return out, nil
}
