package cmd

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/duet/internal/icons"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/playback"
	"github.com/llehouerou/duet/internal/playlist"
	"github.com/llehouerou/duet/internal/unit"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	trackStyle  = lipgloss.NewStyle().Bold(true)
	artistStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// nowPlaying is the state shown on the status line.
type nowPlaying struct {
	track   *media.Track
	state   unit.State
	time    media.TimeState
	repeat  media.RepeatMode
	shuffle bool
	volume  int
	muted   bool
	phase   playback.Phase
}

func statusIcon(s unit.State) string {
	switch s {
	case unit.StatePlaying:
		return icons.Play()
	case unit.StatePaused, unit.StateIdle:
		return icons.Pause()
	case unit.StateLoading, unit.StateBuffering:
		return icons.Loading()
	default:
		return icons.Stop()
	}
}

// render lays out one line of at most width cells: status and track on
// the left, modes and time on the right. The artist is dropped first when
// space runs out.
func (n nowPlaying) render(width int) string {
	if n.track == nil {
		return statusStyle.Render(statusIcon(unit.StateStopped)) + "  " + artistStyle.Render("nothing playing")
	}

	var flags []string
	if n.shuffle {
		flags = append(flags, icons.Shuffle())
	}
	if r := icons.Repeat(n.repeat); r != "" {
		flags = append(flags, r)
	}
	if n.muted {
		flags = append(flags, icons.Muted())
	} else if n.volume < 100 {
		flags = append(flags, "vol "+strconv.Itoa(n.volume)+"%")
	}
	if n.phase.Active() {
		flags = append(flags, icons.Crossfade())
	}

	right := playlist.FormatDuration(n.time.Position)
	if n.time.Known() {
		right += " / " + playlist.FormatDuration(n.time.Duration)
	}
	if len(flags) > 0 {
		right = strings.Join(flags, " · ") + "  " + right
	}
	right = timeStyle.Render(right)

	name := n.track.Name
	if name == "" {
		name = n.track.Path
	}
	left := statusStyle.Render(statusIcon(n.state)) + "  " + trackStyle.Render(name)
	if artist := strings.Join(n.track.Artists, ", "); artist != "" {
		withArtist := left + artistStyle.Render(" · "+artist)
		if lipgloss.Width(withArtist)+2+lipgloss.Width(right) <= width {
			left = withArtist
		}
	}

	// Right-align the timer
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 2)
	return left + strings.Repeat(" ", padding) + right
}
