package tags

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/llehouerou/duet/internal/media"
)

// Read reads tag metadata from a music file.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	title := m.Title()
	if title == "" {
		title = baseName(path)
	}
	albumArtist := m.AlbumArtist()
	if albumArtist == "" {
		albumArtist = m.Artist()
	}
	track, _ := m.Track()
	disc, _ := m.Disc()

	return &Tag{
		Path:        path,
		Title:       title,
		Artist:      m.Artist(),
		AlbumArtist: albumArtist,
		Album:       m.Album(),
		Genre:       m.Genre(),
		TrackNumber: track,
		DiscNumber:  disc,
		Date:        yearToDate(m.Year()),
	}, nil
}

// yearToDate converts a year integer to a date string.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// TrackID derives a stable identifier from a file path.
func TrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("%016x", h.Sum64())
}

// ToTrack converts tag metadata into a playable track.
func (t *Tag) ToTrack() media.Track {
	return media.Track{
		ID:      TrackID(t.Path),
		Path:    t.Path,
		Name:    t.Title,
		Artists: t.Artists(),
		Album:   t.Album,
	}
}

// FromPath builds a track for path, falling back to the file name when the
// tags cannot be read.
func FromPath(path string) media.Track {
	t, err := Read(path)
	if err != nil {
		return media.Track{
			ID:   TrackID(path),
			Path: path,
			Name: baseName(path),
		}
	}
	return t.ToTrack()
}
