// Package harvest wires the browser, scroll, locate, classify and playlist
// packages into the two jobs: the library scan and the per-artist playlist
// extraction.
package harvest

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/config"
	"github.com/hazyhaar/ytharvest/scroll"
)

// Output file names.
const (
	LibrarySourceFile = "youtube_music_library_source.txt"
	ChannelsFile      = "channels.txt"
	PlaylistsFile     = "playlist.txt"
)

type deps struct {
	cfg    *config.Config
	engine *scroll.Engine
	sleep  scroll.SleepFunc
	log    *slog.Logger
}

func resolve(cfg *config.Config, engine *scroll.Engine, sleep scroll.SleepFunc, logger *slog.Logger) deps {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = NewEngine(cfg, logger)
	}
	if sleep == nil {
		sleep = scroll.Sleep
	}
	return deps{cfg: cfg, engine: engine, sleep: sleep, log: logger}
}

// NewEngine builds the scroll engine from the configured caps.
func NewEngine(cfg *config.Config, logger *slog.Logger) *scroll.Engine {
	return &scroll.Engine{
		MaxIterations: cfg.Scroll.MaxIterations,
		MaxDuration:   cfg.Scroll.MaxDuration,
		Logger:        logger,
	}
}

// NewManager maps the browser section of cfg onto a browser.Manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *browser.Manager {
	b := cfg.Browser
	return browser.NewManager(browser.Config{
		RemoteURL:        b.Remote,
		Bin:              b.Bin,
		UserDataDir:      b.UserDataDir,
		Headless:         b.Headless,
		Stealth:          b.Stealth,
		XvfbDisplay:      b.XvfbDisplay,
		ResourceBlocking: b.ResourceBlocking,
		NavigateTimeout:  b.NavigateTimeout,
		Logger:           logger,
	})
}

// writeLines replaces path with one line per entry.
func writeLines(path string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CleanTitle strips the " - YouTube" and " - Topic" suffixes YouTube adds
// to channel page titles.
func CleanTitle(title string) string {
	title = strings.ReplaceAll(title, " - YouTube", "")
	title = strings.ReplaceAll(title, " - Topic", "")
	return title
}
