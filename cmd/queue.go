package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llehouerou/duet/internal/errmsg"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/playlist"
	"github.com/llehouerou/duet/internal/state"
)

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.Flags().IntP("backlog", "b", 5, "Number of backlog entries to show")
}

var headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		store, err := state.Open(e.cfg.State.Path)
		if err != nil {
			return opError(errmsg.OpStateOpen, err)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
		defer cancel()
		settings, err := store.LoadSettings(ctx)
		if err != nil {
			return opError(errmsg.OpSettingsLoad, err)
		}
		session, err := store.LoadQueue(ctx)
		if err != nil {
			return opError(errmsg.OpQueueLoad, err)
		}

		backlog, _ := cmd.Flags().GetInt("backlog")
		printSession(cmd.OutOrStdout(), settings, session, backlog)
		return nil
	},
}

// printSession writes the saved session: modes, current song, queue and
// the most recent backlog entries.
func printSession(w io.Writer, settings *state.Settings, session *state.Session, backlog int) {
	if settings != nil {
		_, _ = fmt.Fprintf(w, "%s %d%%  %s %s  %s %t\n",
			artistStyle.Render("volume"), settings.Volume,
			artistStyle.Render("repeat"), settings.Repeat,
			artistStyle.Render("shuffle"), settings.Shuffle)
	}
	if session.Empty() {
		_, _ = fmt.Fprintln(w, artistStyle.Render("no saved session"))
		return
	}

	if session.Current != nil {
		_, _ = fmt.Fprintln(w, headingStyle.Render("Now playing"))
		_, _ = fmt.Fprintln(w, "  "+trackLine(*session.Current))
	}

	_, _ = fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Queue (%d)", len(session.Queue))))
	for i, t := range session.Queue {
		_, _ = fmt.Fprintf(w, "%3d. %s\n", i+1, trackLine(t))
	}

	if backlog > 0 && len(session.Backlog) > 0 {
		_, _ = fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Backlog (%d)", len(session.Backlog))))
		recent := session.Backlog[max(len(session.Backlog)-backlog, 0):]
		for i := len(recent) - 1; i >= 0; i-- {
			_, _ = fmt.Fprintln(w, "  "+trackLine(recent[i]))
		}
	}
}

func trackLine(t media.Track) string {
	name := t.Name
	if name == "" {
		name = t.Path
	}
	line := trackStyle.Render(name)
	if len(t.Artists) > 0 {
		line += artistStyle.Render(" · " + strings.Join(t.Artists, ", "))
	}
	if t.Duration > 0 {
		line += " " + timeStyle.Render(playlist.FormatDuration(t.Duration))
	}
	return line
}
