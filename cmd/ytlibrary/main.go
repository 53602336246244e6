// Command ytlibrary scans the YouTube Music library page of the signed-in
// profile and writes the channel and playlist URLs it links to.
//
// Usage:
//
//	ytlibrary [-config ytharvest.yaml] [-log-level info] [-out dir]
//
// Outputs channels.txt, playlist.txt and youtube_music_library_source.txt.
// Exit status is 0 on success, 1 on failure and 130 when interrupted; the
// cleanup script runs before a non-zero exit.
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

	"github.com/hazyhaar/ytharvest/cleanup"
	"github.com/hazyhaar/ytharvest/config"
	"github.com/hazyhaar/ytharvest/harvest"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ytlibrary", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to ytharvest.yaml config file")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	outDir := fs.String("out", "", "output directory (overrides config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: ytlibrary [-config file] [-log-level lvl] [-out dir]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return 1
	}

	logger := newLogger(*logLevel)
	if err := godotenv.Load(); err != nil {
		logger.Debug("ytlibrary: no .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("ytlibrary: load config", "error", err)
		return 1
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inv := &cleanup.Invoker{Script: cfg.Cleanup.Script, Shell: cfg.Cleanup.Shell, Logger: logger}

	err = scanLibrary(ctx, cfg, logger)
	return finish(ctx, stop, err, inv, logger)
}

func scanLibrary(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mgr := harvest.NewManager(cfg, logger)
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("ytlibrary: close browser", "error", err)
		} else {
			logger.Info("ytlibrary: browser closed")
		}
	}()
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}

	sess, err := mgr.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer sess.Close()

	job := &harvest.LibraryJob{Session: sess, Config: cfg, Logger: logger}
	rep, err := job.Run(ctx)
	if err != nil {
		return err
	}
	if rep.Partial {
		logger.Warn("ytlibrary: scroll stopped at a cap, output may be incomplete")
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
		logger.Info("ytlibrary: process completed successfully")
		return 0
	case interrupted:
		logger.Warn("ytlibrary: interrupted")
		inv.Run(ctx)
		return 130
	default:
		logger.Error("ytlibrary: crashed", "error", err)
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
