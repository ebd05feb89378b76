package playlist

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/tags"
)

// Collect builds tracks from files and directories. Directories are walked
// recursively and sorted by path; unreadable entries and non-music files
// are skipped. Remote locators are kept as-is.
func Collect(paths ...string) ([]media.Track, error) {
	var tracks []media.Track
	for _, p := range paths {
		if isURL(p) {
			tracks = append(tracks, media.Track{ID: tags.TrackID(p), Path: p, Name: filepath.Base(p)})
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if tags.IsMusicFile(p) {
				tracks = append(tracks, tags.FromPath(p))
			}
			continue
		}
		found, err := collectDir(p)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, found...)
	}
	return lo.UniqBy(tracks, func(t media.Track) string { return t.ID }), nil
}

func collectDir(root string) ([]media.Track, error) {
	var tracks []media.Track
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() || !tags.IsMusicFile(path) {
			return nil
		}
		tracks = append(tracks, tags.FromPath(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Path < tracks[j].Path
	})
	return tracks, nil
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// FormatDuration formats a duration as MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return padInt(m) + ":" + padInt(s)
}

func padInt(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	if n >= 100 {
		return strconv.Itoa(n)
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
