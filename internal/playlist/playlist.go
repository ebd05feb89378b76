// Package playlist manages the upcoming queue, the backlog of played
// tracks and the current selection.
package playlist

import (
	"slices"

	"github.com/samber/lo"

	"github.com/llehouerou/duet/internal/media"
)

// Playlist holds an ordered collection of tracks. It stores its own deep
// copies and hands out copies.
type Playlist struct {
	tracks []media.Track
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist(tracks ...media.Track) *Playlist {
	return &Playlist{tracks: media.CloneAll(append([]media.Track{}, tracks...))}
}

// Add appends tracks to the playlist.
func (p *Playlist) Add(tracks ...media.Track) {
	p.tracks = append(p.tracks, media.CloneAll(tracks)...)
}

// Insert places tracks before index. Out-of-range indexes are clamped.
func (p *Playlist) Insert(index int, tracks ...media.Track) {
	index = min(max(index, 0), len(p.tracks))
	p.tracks = slices.Insert(p.tracks, index, media.CloneAll(tracks)...)
}

// Set replaces the contents.
func (p *Playlist) Set(tracks []media.Track) {
	p.tracks = media.CloneAll(append([]media.Track{}, tracks...))
}

// Remove removes the track at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.tracks) {
		return false
	}
	p.tracks = slices.Delete(p.tracks, index, index+1)
	return true
}

// Take removes and returns the track at index.
func (p *Playlist) Take(index int) (media.Track, bool) {
	if index < 0 || index >= len(p.tracks) {
		return media.Track{}, false
	}
	t := p.tracks[index]
	p.tracks = slices.Delete(p.tracks, index, index+1)
	return t, true
}

// IndexOf returns the index of the first track with id, or -1.
func (p *Playlist) IndexOf(id string) int {
	_, idx, ok := lo.FindIndexOf(p.tracks, func(t media.Track) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Clear removes all tracks from the playlist.
func (p *Playlist) Clear() {
	p.tracks = p.tracks[:0]
}

// Tracks returns a copy of all tracks.
func (p *Playlist) Tracks() []media.Track {
	return media.CloneAll(append([]media.Track{}, p.tracks...))
}

// Track returns a copy of the track at index, or nil if out of bounds.
func (p *Playlist) Track(index int) *media.Track {
	if index < 0 || index >= len(p.tracks) {
		return nil
	}
	return p.tracks[index].Ptr()
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// Move moves the track at fromIndex to toIndex.
// Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.tracks) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.tracks) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	track := p.tracks[fromIndex]
	p.tracks = slices.Delete(p.tracks, fromIndex, fromIndex+1)
	p.tracks = slices.Insert(p.tracks, toIndex, track)
	return true
}
