package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/playback"
	"github.com/llehouerou/duet/internal/player"
	"github.com/llehouerou/duet/internal/resolve"
	"github.com/llehouerou/duet/internal/sched"
	"github.com/llehouerou/duet/internal/state"
	"github.com/llehouerou/duet/internal/unit"
)

func newTestEngine(t *testing.T) *playback.Engine {
	t.Helper()
	mocks := [2]player.Interface{player.NewMock(), player.NewMock()}
	r := resolve.Func(func(_ context.Context, tr media.Track) (string, error) {
		return tr.ID + ".mp3", nil
	})
	e := playback.New(mocks, r, sched.NewManual(), playback.Options{})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func song(id string) media.Track {
	return media.Track{ID: id, Path: id + ".mp3", Name: "Song " + id}
}

func TestReadPlayFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "play"}
	addPlayFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--shuffle", "--repeat", "one", "--fade", "1.5", "--volume", "150"}))

	pf, err := readPlayFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, pf.fade)
	assert.False(t, pf.noState)

	s := state.Settings{Volume: 30, Repeat: media.RepeatAll}
	pf.apply(&s)
	assert.Equal(t, state.Settings{Volume: 100, Repeat: media.RepeatOne, Shuffle: true}, s)
}

func TestReadPlayFlags_BadRepeat(t *testing.T) {
	cmd := &cobra.Command{Use: "play"}
	addPlayFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--repeat", "radio"}))

	_, err := readPlayFlags(cmd)
	assert.Error(t, err)
}

func TestPlayFlags_ApplyKeepsUnset(t *testing.T) {
	s := state.Settings{Volume: 30, Muted: true, Repeat: media.RepeatAll, Shuffle: true}
	playFlags{}.apply(&s)
	assert.Equal(t, state.Settings{Volume: 30, Muted: true, Repeat: media.RepeatAll, Shuffle: true}, s)
}

func TestLoadSession(t *testing.T) {
	store := state.NewMock()
	store.SetSettings(&state.Settings{Volume: 55, Repeat: media.RepeatOne})
	cur := song("a")
	store.SetSession(&state.Session{Current: &cur, Queue: []media.Track{song("b")}})
	log, _ := test.NewNullLogger()

	settings, session := loadSession(context.Background(), store, state.Settings{Volume: 100}, log)
	assert.Equal(t, 55, settings.Volume)
	assert.Equal(t, media.RepeatOne, settings.Repeat)
	require.NotNil(t, session.Current)
	assert.Equal(t, "a", session.Current.ID)
	assert.Len(t, session.Queue, 1)
}

func TestLoadSession_DefaultsWhenEmpty(t *testing.T) {
	log, _ := test.NewNullLogger()

	settings, session := loadSession(context.Background(), state.NewMock(), state.Settings{Volume: 70}, log)
	assert.Equal(t, state.Settings{Volume: 70}, settings)
	assert.True(t, session.Empty())
}

func TestStart_Tracks(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, start(e, []media.Track{song("a"), song("b"), song("c")}, state.Session{}))
	assert.Equal(t, "a", e.CurrentSong().ID)
	assert.Equal(t, []string{"b", "c"}, trackIDs(e.Queue()))
	assert.Equal(t, unit.StatePlaying, e.State())
}

func TestStart_ResumesSession(t *testing.T) {
	e := newTestEngine(t)
	cur := song("a")

	require.NoError(t, start(e, nil, state.Session{Current: &cur, Queue: []media.Track{song("b")}}))
	assert.Equal(t, "a", e.CurrentSong().ID)
	assert.Equal(t, unit.StatePlaying, e.State())
}

func TestStart_SessionWithoutCurrent(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, start(e, nil, state.Session{Queue: []media.Track{song("b"), song("c")}}))
	assert.Equal(t, "b", e.CurrentSong().ID)
	assert.Equal(t, []string{"c"}, trackIDs(e.Queue()))
}

func TestStart_NothingToPlay(t *testing.T) {
	e := newTestEngine(t)

	err := start(e, nil, state.Session{})
	var ue userError
	assert.True(t, errors.As(err, &ue))
}

func TestWatch_ReturnsWhenSelectionClears(t *testing.T) {
	e := newTestEngine(t)
	sub := e.Subscribe()
	require.NoError(t, start(e, []media.Track{song("a")}, state.Session{}))
	require.NoError(t, e.Stop())

	var out bytes.Buffer
	watch(context.Background(), e, sub, &out, 80)
	assert.Contains(t, out.String(), "nothing playing")
}

func TestWatch_ReturnsOnCancel(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	watch(ctx, e, e.Subscribe(), &out, 80)
	assert.Contains(t, out.String(), "nothing playing")
}

func trackIDs(ts []media.Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}
