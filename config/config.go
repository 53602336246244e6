// Package config loads harvest settings from a YAML file, then applies
// YTHARVEST_* environment overrides and defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by both commands.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Scroll  ScrollConfig  `yaml:"scroll"`
	Library LibraryConfig `yaml:"library"`
	Artist  ArtistConfig  `yaml:"artist"`
	Output  OutputConfig  `yaml:"output"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Cleanup CleanupConfig `yaml:"cleanup"`
}

// BrowserConfig controls Chrome.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Bin              string        `yaml:"bin"`
	UserDataDir      string        `yaml:"user_data_dir"`
	Headless         bool          `yaml:"headless"`
	Stealth          bool          `yaml:"stealth"`
	XvfbDisplay      string        `yaml:"xvfb_display"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// ScrollConfig bounds the page-height convergence loop. A zero cap in the
// file means the default; a negative cap disables it.
type ScrollConfig struct {
	Settle        time.Duration `yaml:"settle"`
	MaxIterations int           `yaml:"max_iterations"`
	MaxDuration   time.Duration `yaml:"max_duration"`
}

// LibraryConfig drives ytlibrary.
type LibraryConfig struct {
	URL           string        `yaml:"url"`
	LoadSelector  string        `yaml:"load_selector"`
	LoadTimeout   time.Duration `yaml:"load_timeout"`
	InitialSettle time.Duration `yaml:"initial_settle"`
	CloseDelay    time.Duration `yaml:"close_delay"`
}

// ArtistConfig drives ytartist.
type ArtistConfig struct {
	Settle       time.Duration `yaml:"settle"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`
	Pause        time.Duration `yaml:"pause"`
	ScrollSettle time.Duration `yaml:"scroll_settle"`
}

// OutputConfig names the files and directories written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	ArtistDir string `yaml:"artist_dir"`
}

// LedgerConfig selects the processed-URL store.
type LedgerConfig struct {
	Backend string `yaml:"backend"` // file | sqlite
	Path    string `yaml:"path"`
}

// CleanupConfig locates the post-failure cleanup script.
type CleanupConfig struct {
	Script string `yaml:"script"`
	Shell  string `yaml:"shell"`
}

// Load reads path (empty = no file), applies environment overrides and
// fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		c, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads a YAML configuration file without env overrides or defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("YTHARVEST_REMOTE_URL", &c.Browser.Remote)
	str("YTHARVEST_CHROME_BIN", &c.Browser.Bin)
	str("YTHARVEST_USER_DATA_DIR", &c.Browser.UserDataDir)
	str("YTHARVEST_OUTPUT_DIR", &c.Output.Dir)
	str("YTHARVEST_LEDGER_BACKEND", &c.Ledger.Backend)
	str("YTHARVEST_LEDGER_PATH", &c.Ledger.Path)
	str("YTHARVEST_CLEANUP_SCRIPT", &c.Cleanup.Script)

	if v, ok := lookup("YTHARVEST_HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: YTHARVEST_HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}

	if c.Scroll.Settle <= 0 {
		c.Scroll.Settle = 2 * time.Second
	}
	switch {
	case c.Scroll.MaxIterations == 0:
		c.Scroll.MaxIterations = 500
	case c.Scroll.MaxIterations < 0:
		c.Scroll.MaxIterations = 0
	}
	switch {
	case c.Scroll.MaxDuration == 0:
		c.Scroll.MaxDuration = 15 * time.Minute
	case c.Scroll.MaxDuration < 0:
		c.Scroll.MaxDuration = 0
	}

	if c.Library.URL == "" {
		c.Library.URL = "https://music.youtube.com/library"
	}
	if c.Library.LoadSelector == "" {
		c.Library.LoadSelector = "ytmusic-library-landing-page-renderer, ytmusic-app"
	}
	if c.Library.LoadTimeout <= 0 {
		c.Library.LoadTimeout = 10 * time.Second
	}
	if c.Library.InitialSettle <= 0 {
		c.Library.InitialSettle = 3 * time.Second
	}
	if c.Library.CloseDelay <= 0 {
		c.Library.CloseDelay = 3 * time.Second
	}

	if c.Artist.Settle <= 0 {
		c.Artist.Settle = time.Second
	}
	if c.Artist.WaitTimeout <= 0 {
		c.Artist.WaitTimeout = 5 * time.Second
	}
	if c.Artist.Pause <= 0 {
		c.Artist.Pause = time.Second
	}
	if c.Artist.ScrollSettle <= 0 {
		c.Artist.ScrollSettle = 2 * time.Second
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.ArtistDir == "" {
		c.Output.ArtistDir = "artistplaylists"
	}

	if c.Ledger.Backend == "" {
		c.Ledger.Backend = "file"
	}

	if c.Cleanup.Shell == "" {
		c.Cleanup.Shell = "bash"
	}
}
