package domain

import "slices"

// UsageState is the per-session record of what has already been served.
// The zero value is an empty state; nil maps read as zero counts.
type UsageState struct {
	VerseUsage   map[VerseID]int `json:"verse_usage" cbor:"verse_usage"`
	ChapterUsage map[int]int     `json:"chapter_usage" cbor:"chapter_usage"`
	LastServed   []VerseID       `json:"last_served" cbor:"last_served"`
}

// NewUsageState returns an empty state with allocated maps.
func NewUsageState() UsageState {
	return UsageState{
		VerseUsage:   make(map[VerseID]int),
		ChapterUsage: make(map[int]int),
	}
}

func (u UsageState) UsageCount(id VerseID) int {
	return u.VerseUsage[id]
}

func (u UsageState) ChapterCount(chapter int) int {
	return u.ChapterUsage[chapter]
}

func (u UsageState) WasLastServed(id VerseID) bool {
	return slices.Contains(u.LastServed, id)
}

// Clone returns a deep copy so callers can derive a new state without
// touching the one they were handed.
func (u UsageState) Clone() UsageState {
	c := NewUsageState()
	for k, v := range u.VerseUsage {
		c.VerseUsage[k] = v
	}
	for k, v := range u.ChapterUsage {
		c.ChapterUsage[k] = v
	}
	c.LastServed = slices.Clone(u.LastServed)
	return c
}

// TotalSelections is the number of verse selections recorded so far.
func (u UsageState) TotalSelections() int {
	total := 0
	for _, n := range u.ChapterUsage {
		total += n
	}
	return total
}
