package reveal

import "strings"

// Unset is shown for a profile field the user never filled in.
const Unset = "---"

// ProfileFields is the subset of a profile that the five blocks draw from.
type ProfileFields struct {
	DisplayName  string
	Interests    []string
	Traits       []string
	FirstName    string
	ShortBio     string
	LongBio      string
	FavoriteSong string
	City         string
	MysteryFact  string
}

// Labels holds the block titles and the captions used inside the extras
// block. Callers pass localized strings.
type Labels struct {
	Titles       [MaxLevel]string
	FavoriteSong string
	City         string
	MysteryFact  string
}

// DefaultLabels are the English labels.
var DefaultLabels = Labels{
	Titles: [MaxLevel]string{
		"Anonymous Name",
		"Interests & Hobbies",
		"Personality Traits",
		"First Name & Short Bio",
		"Full Profile Extras",
	},
	FavoriteSong: "Favorite Song",
	City:         "City/Region",
	MysteryFact:  "Mystery Fact",
}

// ProfileBlocks shapes a profile into the fixed five blocks:
// name, interests, traits, first name with short bio, extras.
func ProfileBlocks(p ProfileFields, l Labels) [MaxLevel]Block {
	contents := [MaxLevel]string{
		orUnset(p.DisplayName),
		joinOrUnset(p.Interests),
		joinOrUnset(p.Traits),
		orUnset(p.FirstName) + "\n\n" + orUnset(p.ShortBio),
		strings.Join([]string{
			orUnset(p.LongBio),
			l.FavoriteSong + ": " + orUnset(p.FavoriteSong),
			l.City + ": " + orUnset(p.City),
			l.MysteryFact + ": " + orUnset(p.MysteryFact),
		}, "\n\n"),
	}

	var blocks [MaxLevel]Block
	for i := range blocks {
		blocks[i] = Block{Title: l.Titles[i], Content: contents[i]}
	}
	return blocks
}

func orUnset(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unset
	}
	return s
}

func joinOrUnset(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return Unset
	}
	return strings.Join(kept, ", ")
}
