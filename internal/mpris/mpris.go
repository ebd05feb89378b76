//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/playback"
	"github.com/llehouerou/duet/internal/unit"
)

const busName = "duet"

// Adapter connects a playback.Service to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	log    logrus.FieldLogger
}

// New creates and starts a new MPRIS adapter.
func New(service playback.Service, log logrus.FieldLogger) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(busName, &rootAdapter{}, &playerAdapter{service: service}),
		log:    log.WithField("component", "mpris"),
	}

	// Start the server in background
	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.WithError(err).Warn("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - the CLI owns its lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Duet", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav", "application/vnd.apple.mpegurl"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the loop
// status and shuffle extensions.
type playerAdapter struct {
	service playback.Service
}

func (p *playerAdapter) Next() error {
	return p.service.Next()
}

func (p *playerAdapter) Previous() error {
	return p.service.Previous()
}

func (p *playerAdapter) Pause() error {
	return p.service.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.service.TogglePlayback()
}

func (p *playerAdapter) Stop() error {
	return p.service.Stop()
}

func (p *playerAdapter) Play() error {
	if p.service.State() == unit.StatePlaying {
		return nil
	}
	return p.service.Play()
}

// Seek moves by offset. Seeking past the end skips to the next track.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	ts := p.service.TimeState()
	pos := max(ts.Position+time.Duration(offset)*time.Microsecond, 0)
	if ts.Known() && pos >= ts.Duration {
		return p.service.Next()
	}
	return p.service.Seek(pos)
}

// SetPosition seeks when trackID names the current track.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	t := p.service.CurrentSong()
	if t == nil || trackID != formatTrackID(t.ID) {
		return nil
	}
	return p.service.Seek(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.service.State()), nil
}

func playbackStatus(s unit.State) types.PlaybackStatus {
	switch s {
	case unit.StatePlaying, unit.StateBuffering:
		return types.PlaybackStatusPlaying
	case unit.StatePaused, unit.StateIdle, unit.StateLoading:
		return types.PlaybackStatusPaused
	case unit.StateStopped, unit.StateEnded, unit.StateError:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	t := p.service.CurrentSong()
	if t == nil {
		return types.Metadata{}, nil
	}
	return metadata(*t), nil
}

func metadata(t media.Track) types.Metadata {
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(t.ID)),
		Length:  types.Microseconds(t.Duration.Microseconds()),
		Title:   t.Name,
		Artist:  t.Artists,
		Album:   t.Album,
	}
	if art := artURL(t); art != "" {
		meta.ArtUrl = art
	}
	return meta
}

func (p *playerAdapter) Volume() (float64, error) {
	if p.service.Muted() {
		return 0, nil
	}
	return float64(p.service.Volume()) / 100, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	return p.service.SetVolume(int(math.Round(v * 100)))
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.TimeState().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	if len(p.service.Queue()) > 0 {
		return true, nil
	}
	return p.service.Repeat() == media.RepeatAll && len(p.service.Backlog()) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.service.CurrentSong() != nil || len(p.service.Backlog()) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.CurrentSong() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.TimeState().Known(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.service.Repeat() {
	case media.RepeatOne:
		return types.LoopStatusTrack, nil
	case media.RepeatAll:
		return types.LoopStatusPlaylist, nil
	case media.RepeatOff:
		return types.LoopStatusNone, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		return p.service.SetRepeat(media.RepeatOff)
	case types.LoopStatusTrack:
		return p.service.SetRepeat(media.RepeatOne)
	case types.LoopStatusPlaylist:
		return p.service.SetRepeat(media.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.service.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	return p.service.SetShuffle(shuffle)
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
