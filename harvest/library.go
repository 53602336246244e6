package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/classify"
	"github.com/hazyhaar/ytharvest/config"
	"github.com/hazyhaar/ytharvest/dom"
	"github.com/hazyhaar/ytharvest/locate"
	"github.com/hazyhaar/ytharvest/scroll"
)

// LibraryJob scans the library page into channels.txt and playlist.txt.
type LibraryJob struct {
	Session browser.Session
	Engine  *scroll.Engine
	Config  *config.Config
	Sleep   scroll.SleepFunc
	Logger  *slog.Logger
}

// LibraryReport summarises a library run.
type LibraryReport struct {
	Strategy  string
	Links     int
	Channels  []string
	Playlists []string
	Scroll    scroll.Result
	// Partial is set when a scroll cap stopped loading early.
	Partial bool
}

// Run performs navigate, scroll to convergence, snapshot, classify and write.
func (j *LibraryJob) Run(ctx context.Context) (LibraryReport, error) {
	d := resolve(j.Config, j.Engine, j.Sleep, j.Logger)
	cfg, log := d.cfg, d.log
	var rep LibraryReport

	log.Info("harvest: opening library", "url", cfg.Library.URL)
	if err := j.Session.Navigate(ctx, cfg.Library.URL); err != nil {
		return rep, fmt.Errorf("harvest: navigate: %w", err)
	}

	_, err := j.Session.Wait(ctx, browser.CSS(cfg.Library.LoadSelector), cfg.Library.LoadTimeout)
	switch {
	case err == nil:
		log.Info("harvest: page loaded")
	case errors.Is(err, browser.ErrTimeout):
		log.Warn("harvest: could not confirm page load, continuing", "selector", cfg.Library.LoadSelector)
	default:
		return rep, fmt.Errorf("harvest: wait for library: %w", err)
	}

	if err := d.sleep(ctx, cfg.Library.InitialSettle); err != nil {
		return rep, err
	}

	log.Info("harvest: scrolling to load all content")
	res, err := d.engine.Run(ctx, &scroll.Stepper{
		Metric: scroll.PageHeight{Session: j.Session},
		Settle: cfg.Scroll.Settle,
		Sleep:  d.sleep,
	})
	if err != nil {
		return rep, fmt.Errorf("harvest: %w", err)
	}
	rep.Scroll, rep.Partial = res, res.Partial
	log.Info("harvest: finished scrolling", "iterations", res.Iterations, "partial", res.Partial)

	src, err := j.Session.HTML(ctx)
	if err != nil {
		return rep, fmt.Errorf("harvest: page source: %w", err)
	}
	snap := dom.NewSnapshot(cfg.Library.URL, []byte(src))
	srcPath := filepath.Join(cfg.Output.Dir, LibrarySourceFile)
	if err := snap.Save(srcPath); err != nil {
		return rep, fmt.Errorf("harvest: %w", err)
	}
	log.Info("harvest: source saved", "path", srcPath, "snapshot", snap.ID, "hash", snap.HTMLHash)

	doc, err := dom.Parse(snap.HTML)
	if err != nil {
		return rep, fmt.Errorf("harvest: %w", err)
	}
	found, err := locate.LibraryChain(doc, nil, log).Locate(ctx)
	if err != nil {
		return rep, fmt.Errorf("harvest: locate: %w", err)
	}
	rep.Strategy = found.Strategy
	rep.Links = len(found.Candidates)

	hrefs := make([]string, 0, len(found.Candidates))
	for _, n := range found.Candidates {
		hrefs = append(hrefs, dom.AttrOr(ctx, n, "href"))
	}
	sets := classify.Dedupe(hrefs)
	rep.Channels = sets.Channels()
	rep.Playlists = sets.Playlists()

	if err := ctx.Err(); err != nil {
		return rep, err
	}

	chPath := filepath.Join(cfg.Output.Dir, ChannelsFile)
	if err := writeLines(chPath, rep.Channels); err != nil {
		return rep, fmt.Errorf("harvest: write channels: %w", err)
	}
	logSample(log, "channel", chPath, sets.Sorted(classify.Channel))

	plPath := filepath.Join(cfg.Output.Dir, PlaylistsFile)
	if err := writeLines(plPath, rep.Playlists); err != nil {
		return rep, fmt.Errorf("harvest: write playlists: %w", err)
	}
	logSample(log, "playlist", plPath, sets.Sorted(classify.PlaylistBrowse, classify.PlaylistQuery))

	log.Info("harvest: library done",
		"links", rep.Links,
		"channels", len(rep.Channels),
		"playlists", len(rep.Playlists),
		"partial", rep.Partial)

	log.Info("harvest: closing browser", "delay", cfg.Library.CloseDelay)
	if err := d.sleep(ctx, cfg.Library.CloseDelay); err != nil {
		return rep, err
	}
	return rep, nil
}

func logSample(log *slog.Logger, kind, path string, frags []string) {
	log.Info("harvest: saved unique urls", "kind", kind, "count", len(frags), "path", path)
	for _, f := range frags[:min(3, len(frags))] {
		log.Info("harvest: sample", "kind", kind, "fragment", f)
	}
}
