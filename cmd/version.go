package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version string")
}

var (
	versionLabel = lipgloss.NewStyle().Faint(true).Width(12)
	versionValue = lipgloss.NewStyle().Bold(true)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(Version)
			return
		}

		revision := "unknown"
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					revision = s.Value
				}
			}
		}

		rows := [][2]string{
			{"Version", Version},
			{"Revision", revision},
			{"Go", runtime.Version()},
			{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		}
		cmd.Println(versionValue.Render(appName))
		for _, r := range rows {
			cmd.Println("  " + versionLabel.Render(r[0]) + versionValue.Render(r[1]))
		}
	},
}
