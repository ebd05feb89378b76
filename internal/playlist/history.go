package playlist

import "github.com/llehouerou/duet/internal/media"

// Backlog is the history of played tracks, oldest first. With a positive
// limit the oldest entries are dropped once it is exceeded.
type Backlog struct {
	list    *Playlist
	maxSize int
}

// NewBacklog creates an empty backlog. maxSize <= 0 means unbounded.
func NewBacklog(maxSize int) *Backlog {
	return &Backlog{list: NewPlaylist(), maxSize: maxSize}
}

// Push appends tracks and trims if over the limit.
func (b *Backlog) Push(tracks ...media.Track) {
	b.list.Add(tracks...)
	b.trim()
}

// Set replaces the history.
func (b *Backlog) Set(tracks []media.Track) {
	b.list.Set(tracks)
	b.trim()
}

func (b *Backlog) trim() {
	if b.maxSize <= 0 {
		return
	}
	for b.list.Len() > b.maxSize {
		b.list.Remove(0)
	}
}

// Pop removes and returns the most recent entry.
func (b *Backlog) Pop() (media.Track, bool) {
	return b.list.Take(b.list.Len() - 1)
}

// Remove deletes the first entry with id. Returns false if absent.
func (b *Backlog) Remove(id string) bool {
	return b.list.Remove(b.list.IndexOf(id))
}

// Clear empties the history.
func (b *Backlog) Clear() {
	b.list.Clear()
}

// Tracks returns a copy of the history, oldest first.
func (b *Backlog) Tracks() []media.Track {
	return b.list.Tracks()
}

// Len returns the number of entries.
func (b *Backlog) Len() int {
	return b.list.Len()
}
