package workbench

import (
	"sync"
	"time"
)

// DefaultFeedSize is the number of activity entries kept.
const DefaultFeedSize = 8

// ActivityKind classifies an activity entry.
type ActivityKind int

const (
	ActivityNeutral ActivityKind = iota
	ActivitySuccess
	ActivityWarning
)

// Activity is one entry of the activity feed.
type Activity struct {
	CreatedAt time.Time
	Text      string
	ID        int64
	Kind      ActivityKind
}

// Feed is a bounded, newest-first list of recent actions.
type Feed struct {
	now     func() time.Time
	entries []Activity
	max     int
	nextID  int64
	mu      sync.Mutex
}

// NewFeed creates a feed holding at most maxEntries entries.
func NewFeed(maxEntries int) *Feed {
	if maxEntries <= 0 {
		maxEntries = DefaultFeedSize
	}
	return &Feed{max: maxEntries, now: time.Now}
}

// Push adds an entry at the front, dropping the oldest beyond capacity.
func (f *Feed) Push(kind ActivityKind, text string) Activity {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	entry := Activity{ID: f.nextID, Kind: kind, Text: text, CreatedAt: f.now()}

	next := make([]Activity, 0, min(len(f.entries)+1, f.max))
	next = append(next, entry)
	for _, e := range f.entries {
		if len(next) == f.max {
			break
		}
		next = append(next, e)
	}
	f.entries = next
	return entry
}

// Entries returns the entries, newest first.
func (f *Feed) Entries() []Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries
}
