// Command ytartist extracts the playlists of one YouTube channel into
// artistplaylists/<channel title>.txt as "title<TAB>url" lines.
//
// Usage:
//
//	ytartist [-config ytharvest.yaml] [-log-level info] [-out dir] <channel-url>
//
// Channels already recorded in the processed-URL ledger are skipped without
// starting Chrome. Exit status is 0 on success or skip, 1 on failure and 130
// when interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/cleanup"
	"github.com/hazyhaar/ytharvest/config"
	"github.com/hazyhaar/ytharvest/harvest"
	"github.com/hazyhaar/ytharvest/horosafe"
	"github.com/hazyhaar/ytharvest/idgen"
	"github.com/hazyhaar/ytharvest/ledger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ytartist", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to ytharvest.yaml config file")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	outDir := fs.String("out", "", "output directory (overrides config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: ytartist [-config file] [-log-level lvl] [-out dir] <channel-url>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	url := fs.Arg(0)

	logger := newLogger(*logLevel)
	if err := horosafe.ValidateURL(url); err != nil {
		logger.Error("ytartist: bad channel url", "url", url, "error", err)
		return 1
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("ytartist: no .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("ytartist: load config", "error", err)
		return 1
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inv := &cleanup.Invoker{Script: cfg.Cleanup.Script, Shell: cfg.Cleanup.Shell, Logger: logger}

	err = extractArtist(ctx, cfg, logger, url)
	return finish(ctx, stop, err, inv, logger)
}

func extractArtist(ctx context.Context, cfg *config.Config, logger *slog.Logger, url string) error {
	runID := idgen.NewRun()
	logger = logger.With("run", runID)

	led, err := ledger.Open(ledger.Config{
		Backend: cfg.Ledger.Backend,
		Path:    cfg.Ledger.Path,
		RunID:   runID,
	})
	if err != nil {
		return err
	}
	defer led.Close()

	var mgr *browser.Manager
	defer func() {
		if mgr == nil {
			return
		}
		if err := mgr.Close(); err != nil {
			logger.Warn("ytartist: close browser", "error", err)
		}
	}()

	job := &harvest.ArtistJob{
		Ledger: led,
		Open: func(ctx context.Context) (browser.Session, error) {
			mgr = harvest.NewManager(cfg, logger)
			if err := mgr.Start(ctx); err != nil {
				return nil, fmt.Errorf("start browser: %w", err)
			}
			return mgr.NewSession(ctx)
		},
		Config: cfg,
		Logger: logger,
	}
	rep, err := job.Run(ctx, url)
	if err != nil {
		return err
	}
	if !rep.Skipped && rep.Strategy == "" {
		logger.Warn("ytartist: no playlists found", "debug", rep.DebugPath)
	}
	return nil
}

// finish maps the job outcome to the exit status, running the cleanup
// script on failure. The signal handler is released first so a second
// interrupt during cleanup terminates the process.
func finish(ctx context.Context, stop context.CancelFunc, err error, inv *cleanup.Invoker, logger *slog.Logger) int {
	interrupted := ctx.Err() != nil || harvest.IsInterrupted(err)
	stop()
	switch {
	case err == nil:
		return 0
	case interrupted:
		logger.Warn("ytartist: interrupted")
		inv.Run(ctx)
		return 130
	default:
		logger.Error("ytartist: crashed", "error", err)
		inv.Run(ctx)
		return 1
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
