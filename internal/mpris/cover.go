//go:build linux

package mpris

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/duet/internal/media"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// artURL returns the art location for t: its Cover when set, otherwise
// an image next to a local track file.
func artURL(t media.Track) string {
	if t.Cover != "" {
		if strings.Contains(t.Cover, "://") {
			return t.Cover
		}
		return fileURL(t.Cover)
	}
	if t.Path == "" || strings.Contains(t.Path, "://") {
		return ""
	}
	if art := FindAlbumArt(t.Path); art != "" {
		return fileURL(art)
	}
	return ""
}

func fileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
