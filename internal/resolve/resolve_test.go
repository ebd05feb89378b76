package resolve

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/duet/internal/media"
)

func TestBase_Resolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"url base", "https://music.example.com/api/stream", "artist/song.mp3", "https://music.example.com/api/stream/artist/song.mp3"},
		{"hash escaped", "https://h/s/", "a#b.mp3", "https://h/s/a%23b.mp3"},
		{"space escaped", "https://h/s", "my song.flac", "https://h/s/my%20song.flac"},
		{"absolute path passes", "https://h/s", "https://cdn/x.mp3", "https://cdn/x.mp3"},
		{"no base", "", "/music/a.mp3", "/music/a.mp3"},
		{"dir base", "/music", "a/b.mp3", filepath.Join("/music", "a/b.mp3")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Base{Base: tt.base}.Resolve(context.Background(), media.Track{ID: "1", Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBase_MissingPath(t *testing.T) {
	_, err := Base{Base: "https://h"}.Resolve(context.Background(), media.Track{ID: "x"})

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "x", rerr.TrackID)
	assert.True(t, errors.Is(err, ErrNoPath))
}

func TestBase_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Base{}.Resolve(ctx, media.Track{ID: "x", Path: "/a.mp3"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	r := Func(func(_ context.Context, tr media.Track) (string, error) { return "loc:" + tr.ID, nil })
	got, err := r.Resolve(context.Background(), media.Track{ID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "loc:7", got)
}
