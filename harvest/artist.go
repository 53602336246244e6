package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/config"
	"github.com/hazyhaar/ytharvest/dom"
	"github.com/hazyhaar/ytharvest/horosafe"
	"github.com/hazyhaar/ytharvest/ledger"
	"github.com/hazyhaar/ytharvest/locate"
	"github.com/hazyhaar/ytharvest/playlist"
	"github.com/hazyhaar/ytharvest/scroll"
)

// untitled replaces a channel title that cleans down to nothing.
const untitled = "untitled"

// ArtistJob extracts one channel's playlists into artistplaylists/<title>.txt.
type ArtistJob struct {
	Ledger ledger.Ledger
	// Open acquires the browser session. It is not called for channels the
	// ledger already holds.
	Open   func(ctx context.Context) (browser.Session, error)
	Engine *scroll.Engine
	Config *config.Config
	Sleep  scroll.SleepFunc
	Logger *slog.Logger
}

// ArtistReport summarises an artist run.
type ArtistReport struct {
	URL       string
	Skipped   bool // already in the ledger
	Title     string
	Path      string
	Strategy  string // empty when every tier failed
	Records   int
	DebugPath string // set when the page source was dumped
}

// Run extracts url. The ledger entry is written only after the output file.
func (j *ArtistJob) Run(ctx context.Context, url string) (ArtistReport, error) {
	d := resolve(j.Config, j.Engine, j.Sleep, j.Logger)
	cfg, log := d.cfg, d.log
	url = ledger.Normalize(url)
	rep := ArtistReport{URL: url}

	done, err := j.Ledger.IsProcessed(ctx, url)
	if err != nil {
		return rep, fmt.Errorf("harvest: ledger: %w", err)
	}
	if done {
		log.Info("harvest: already processed, skipping", "url", url)
		rep.Skipped = true
		return rep, nil
	}

	sess, err := j.Open(ctx)
	if err != nil {
		return rep, fmt.Errorf("harvest: open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("harvest: close session", "error", cerr)
		}
	}()

	if err := sess.Navigate(ctx, url); err != nil {
		return rep, fmt.Errorf("harvest: navigate: %w", err)
	}
	if err := d.sleep(ctx, cfg.Artist.Settle); err != nil {
		return rep, err
	}

	pageTitle, err := sess.Title(ctx)
	if err != nil {
		return rep, fmt.Errorf("harvest: page title: %w", err)
	}
	safe := horosafe.SanitizeFilename(CleanTitle(pageTitle))
	if safe == "" {
		safe = untitled
	}
	rep.Title = safe

	dir := filepath.Join(cfg.Output.Dir, cfg.Output.ArtistDir)
	rep.Path, err = horosafe.SafePath(dir, safe+".txt")
	if err != nil {
		return rep, fmt.Errorf("harvest: output path: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rep, fmt.Errorf("harvest: mkdir: %w", err)
	}
	log.Info("harvest: will save to", "path", rep.Path)

	dump := func(ctx context.Context) error {
		path, err := horosafe.SafePath(cfg.Output.Dir, "debug_page_source_"+safe+".html")
		if err != nil {
			return err
		}
		src, err := sess.HTML(ctx)
		if err != nil {
			return fmt.Errorf("page source: %w", err)
		}
		if err := dom.NewSnapshot(url, []byte(src)).Save(path); err != nil {
			return err
		}
		rep.DebugPath = path
		log.Warn("harvest: no playlists found, page source saved", "path", path)
		return nil
	}

	chain := locate.ArtistChain(sess, locate.ArtistOptions{
		WaitTimeout:  cfg.Artist.WaitTimeout,
		Pause:        cfg.Artist.Pause,
		ScrollSettle: cfg.Artist.ScrollSettle,
		Engine:       d.engine,
		Sleep:        d.sleep,
		Logger:       log,
	}, dump)
	found, err := chain.Locate(ctx)
	if err != nil {
		return rep, fmt.Errorf("harvest: locate: %w", err)
	}
	rep.Strategy = found.Strategy

	if err := d.sleep(ctx, cfg.Artist.Pause); err != nil {
		return rep, err
	}

	records := playlist.Finalize(ctx, found.Candidates)
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	for _, r := range records {
		log.Info("harvest: saved", "title", r.Title)
	}
	if err := writeRecords(rep.Path, records); err != nil {
		return rep, fmt.Errorf("harvest: %w", err)
	}
	rep.Records = len(records)
	log.Info("harvest: playlists saved", "count", rep.Records, "path", rep.Path)

	if err := j.Ledger.MarkProcessed(ctx, url); err != nil {
		return rep, fmt.Errorf("harvest: ledger: %w", err)
	}
	log.Info("harvest: marked processed", "url", url)
	return rep, nil
}

func writeRecords(path string, records []playlist.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := playlist.WriteTSV(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// IsInterrupted reports whether err comes from a cancelled run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
