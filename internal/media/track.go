// Package media holds the value types shared by the playback engine.
package media

import (
	"slices"
	"time"
)

// Track is an opaque playable item. Queue, backlog and current selection
// always hold their own copies; use Clone before handing a Track to
// another owner.
type Track struct {
	ID       string
	Path     string
	Name     string
	Artists  []string
	Album    string
	Cover    string
	Duration time.Duration
}

// Clone returns a deep copy of t.
func (t Track) Clone() Track {
	t.Artists = slices.Clone(t.Artists)
	return t
}

// Ptr returns a pointer to a deep copy of t.
func (t Track) Ptr() *Track {
	c := t.Clone()
	return &c
}

// Same reports whether t and other denote the same item.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}

// CloneAll deep-copies a track list. A nil list stays nil.
func CloneAll(tracks []Track) []Track {
	if tracks == nil {
		return nil
	}
	out := make([]Track, len(tracks))
	for i, t := range tracks {
		out[i] = t.Clone()
	}
	return out
}

// ClonePtr deep-copies an optional track.
func ClonePtr(t *Track) *Track {
	if t == nil {
		return nil
	}
	return t.Ptr()
}
