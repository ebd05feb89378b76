// Package tags reads music file metadata into playable tracks.
package tags

import (
	"path/filepath"
	"strconv"
	"strings"
)

// File extensions the engine can play.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtWAV  = ".wav"
)

// Tag contains the metadata read from a music file.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	TrackNumber int
	DiscNumber  int
	Date        string // YYYY-MM-DD or YYYY
}

// Year derives the year from the Date field.
// Returns 0 if Date is empty or cannot be parsed.
func (t *Tag) Year() int {
	if t.Date == "" {
		return 0
	}
	year := t.Date
	if len(year) > 4 {
		year = year[:4]
	}
	y, _ := strconv.Atoi(year)
	return y
}

// Artists splits the artist field on the usual multi-artist separators.
func (t *Tag) Artists() []string {
	if t.Artist == "" {
		return nil
	}
	parts := strings.FieldsFunc(t.Artist, func(r rune) bool { return r == ';' || r == '/' || r == '\x00' })
	artists := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			artists = append(artists, p)
		}
	}
	return artists
}

// IsMusicFile returns true if the path has a playable extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOGG, ExtWAV:
		return true
	default:
		return false
	}
}
