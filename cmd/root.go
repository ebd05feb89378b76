// Package cmd implements the duet command-line interface.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/duet/internal/config"
	"github.com/llehouerou/duet/internal/errmsg"
	"github.com/llehouerou/duet/internal/icons"
	"github.com/llehouerou/duet/internal/logging"
)

const appName = "duet"

var failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Read this config file after the default locations")
}

// rootCmd defines the entry point for duet.
var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Gapless, crossfading music player for the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, failStyle.Render("✗"), strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}

// env is what every command needs before doing real work.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
}

func (e *env) Close() error {
	return e.closer.Close()
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command) (*env, error) {
	var extra []string
	if path := lo.Must(cmd.Flags().GetString("config")); path != "" {
		extra = append(extra, path)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return nil, opError(errmsg.OpConfigLoad, err)
	}
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, opError(errmsg.OpLogOpen, err)
	}
	icons.Init(cfg.Icons)
	return &env{cfg: cfg, log: log, closer: closer}, nil
}

type userError string

func (e userError) Error() string { return string(e) }

func opError(op errmsg.Op, err error) error {
	return userError(errmsg.Format(op, err))
}
