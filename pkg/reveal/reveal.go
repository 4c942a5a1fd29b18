// Package reveal turns conversation activity into an unlock level and decides
// which parts of a chat partner's profile are visible at that level.
//
// Both halves are pure: no I/O, no shared state. Callers load the counters
// and the profile, call Evaluate and Render, and persist whatever they like.
package reveal

// MaxLevel is the highest unlock level; every block is visible at it.
const MaxLevel = 5

// MinLevel is the level of a conversation nobody has invested in yet.
const MinLevel = 1

// LockedPlaceholder replaces the content of a block above the current level.
const LockedPlaceholder = "Locked"

// threshold maps the smallest effective count that reaches a level.
type threshold struct {
	count int
	level int
}

// thresholds is ordered highest first; the first match wins.
var thresholds = [...]threshold{
	{count: 100, level: 5},
	{count: 50, level: 4},
	{count: 20, level: 3},
	{count: 5, level: 2},
}

// Evaluate returns the unlock level for a conversation in which one
// participant sent countA messages and the other countB.
//
// The level is gated by the less active side: min(countA, countB). One
// participant cannot unlock the other's profile alone.
func Evaluate(countA, countB int) int {
	return LevelFor(EffectiveCount(countA, countB))
}

// EvaluateCounts looks up both participants in a counter mapping. A missing
// participant counts as zero.
func EvaluateCounts(counts map[string]int, userA, userB string) int {
	return Evaluate(counts[userA], counts[userB])
}

// EffectiveCount is the count that drives the level.
func EffectiveCount(countA, countB int) int {
	return min(countA, countB)
}

// LevelFor maps an effective count to a level in [MinLevel, MaxLevel].
// Negative counts fall through to MinLevel.
func LevelFor(effective int) int {
	for _, t := range thresholds {
		if effective >= t.count {
			return t.level
		}
	}
	return MinLevel
}

// ThresholdFor returns the effective count at which level unlocks. ok is
// false outside (MinLevel, MaxLevel]; MinLevel needs no messages.
func ThresholdFor(level int) (count int, ok bool) {
	for _, t := range thresholds {
		if t.level == level {
			return t.count, true
		}
	}
	return 0, false
}

// Block is one titled group of profile fields. Position in the [5]Block array
// is its ordinal: index 0 is unlocked at level 1, index 4 at level 5.
type Block struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Descriptor is what the client draws for one block.
type Descriptor struct {
	Ordinal  int    `json:"ordinal"`
	Title    string `json:"title"`
	Unlocked bool   `json:"unlocked"`
	Content  string `json:"content"`
}

// Render produces one descriptor per block in declaration order. Blocks whose
// ordinal exceeds level carry LockedPlaceholder instead of their content.
func Render(level int, blocks [MaxLevel]Block) [MaxLevel]Descriptor {
	var out [MaxLevel]Descriptor
	for i, b := range blocks {
		ordinal := i + 1
		d := Descriptor{
			Ordinal:  ordinal,
			Title:    b.Title,
			Unlocked: level >= ordinal,
			Content:  LockedPlaceholder,
		}
		if d.Unlocked {
			d.Content = b.Content
		}
		out[i] = d
	}
	return out
}
