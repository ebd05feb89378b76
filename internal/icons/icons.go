// Package icons holds the glyphs of the status line for each icon style.
package icons

import "github.com/llehouerou/duet/internal/media"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Play      string
	Pause     string
	Stop      string
	Loading   string
	Shuffle   string
	RepeatAll string
	RepeatOne string
	Muted     string
	Crossfade string
}

var (
	nerdIcons = Icons{
		Play:      "\uf04b", // nf-fa-play
		Pause:     "\uf04c", // nf-fa-pause
		Stop:      "\uf04d", // nf-fa-stop
		Loading:   "󰔟",      // nf-md-timer_sand
		Shuffle:   "󰒟",      // nf-md-shuffle
		RepeatAll: "󰑖",      // nf-md-repeat
		RepeatOne: "󰑘",      // nf-md-repeat_once
		Muted:     "󰝟",      // nf-md-volume_off
		Crossfade: "󰓃",      // nf-md-swap_horizontal
	}

	unicodeIcons = Icons{
		Play:      "▶",
		Pause:     "⏸",
		Stop:      "■",
		Loading:   "…",
		Shuffle:   "🔀",
		RepeatAll: "🔁",
		RepeatOne: "🔂",
		Muted:     "🔇",
		Crossfade: "⇄",
	}

	noneIcons = Icons{
		Play:      ">",
		Pause:     "||",
		Stop:      "[]",
		Loading:   "...",
		Shuffle:   "shuffle",
		RepeatAll: "repeat all",
		RepeatOne: "repeat one",
		Muted:     "muted",
		Crossfade: "crossfade",
	}

	// current holds the active icon set
	current = noneIcons
)

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	case StyleNone:
		current = noneIcons
	default:
		current = noneIcons
	}
}

func Play() string      { return current.Play }
func Pause() string     { return current.Pause }
func Stop() string      { return current.Stop }
func Loading() string   { return current.Loading }
func Shuffle() string   { return current.Shuffle }
func Muted() string     { return current.Muted }
func Crossfade() string { return current.Crossfade }

// Repeat returns the icon for mode, or "" when repeat is off.
func Repeat(mode media.RepeatMode) string {
	switch mode {
	case media.RepeatAll:
		return current.RepeatAll
	case media.RepeatOne:
		return current.RepeatOne
	case media.RepeatOff:
		return ""
	}
	return ""
}
