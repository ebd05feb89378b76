package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	BaseURL     string `koanf:"base_url"`     // resolves relative track paths; a directory or http(s) URL
	AccessToken string `koanf:"access_token"` // appended to remote sources
	Icons       string `koanf:"icons"`        // "nerd", "unicode", or "none"

	Playback PlaybackConfig `koanf:"playback"`
	Log      LogConfig      `koanf:"log"`
	State    StateConfig    `koanf:"state"`
	MPRIS    MPRISConfig    `koanf:"mpris"`
	Notify   NotifyConfig   `koanf:"notify"`
}

// PlaybackConfig holds crossfade and queue settings. Durations are in seconds.
type PlaybackConfig struct {
	FadeDuration   float64 `koanf:"fade_duration"`   // default: 3
	PrefetchLeeway float64 `koanf:"prefetch_leeway"` // default: 10
	Volume         *int    `koanf:"volume"`          // 0-100 (default: 100)
	AutoAdvance    *bool   `koanf:"auto_advance"`    // default: true
	BacklogLimit   int     `koanf:"backlog_limit"`   // 0 means unbounded
	ResolveTimeout float64 `koanf:"resolve_timeout"` // default: 10
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // empty means stderr
}

// StateConfig holds session persistence settings.
type StateConfig struct {
	Path     string `koanf:"path"` // empty means the XDG data dir
	Disabled bool   `koanf:"disabled"`
}

// MPRISConfig holds desktop media-key integration settings.
type MPRISConfig struct {
	Enabled *bool `koanf:"enabled"` // default: true
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Enabled bool `koanf:"enabled"` // announce each new song (default: false)
}

// Playback is PlaybackConfig with defaults applied.
type Playback struct {
	FadeDuration   time.Duration
	PrefetchLeeway time.Duration
	Volume         int
	AutoAdvance    bool
	BacklogLimit   int
	ResolveTimeout time.Duration
}

// Load reads the config files in priority order. Paths in extra are read
// last and must exist.
func Load(extra ...string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}
	for _, path := range extra {
		path = expandPath(path)
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	if cfg.BaseURL != "" && !strings.Contains(cfg.BaseURL, "://") {
		cfg.BaseURL = expandPath(cfg.BaseURL)
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	cfg.State.Path = expandPath(cfg.State.Path)

	// Normalize base URL (remove trailing slash)
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/duet/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "duet", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlayback returns the playback configuration with defaults applied.
func (c *Config) GetPlayback() Playback {
	p := c.Playback
	out := Playback{
		FadeDuration:   seconds(p.FadeDuration, 3),
		PrefetchLeeway: seconds(p.PrefetchLeeway, 10),
		Volume:         100,
		AutoAdvance:    true,
		BacklogLimit:   max(p.BacklogLimit, 0),
		ResolveTimeout: seconds(p.ResolveTimeout, 10),
	}
	if p.Volume != nil {
		out.Volume = min(max(*p.Volume, 0), 100)
	}
	if p.AutoAdvance != nil {
		out.AutoAdvance = *p.AutoAdvance
	}
	return out
}

func seconds(v, def float64) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v * float64(time.Second))
}

// MPRISEnabled reports whether the MPRIS adapter should start.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS.Enabled == nil || *c.MPRIS.Enabled
}

// HasBaseURL reports whether relative track paths resolve against a base.
func (c *Config) HasBaseURL() bool {
	return c.BaseURL != ""
}
