package locate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/dom"
	"github.com/hazyhaar/ytharvest/scroll"
)

// Channel page selectors, one group per known layout.
const (
	ViewAllButton  = "//button[.//span[text()='View all']]"
	PopupDialog    = "ytd-popup-container tp-yt-paper-dialog"
	PopupScrollBox = "ytd-item-section-renderer div#contents.style-scope.ytd-item-section-renderer"
	PopupItem      = "ytd-grid-playlist-renderer"
	PopupLinks     = "ytd-grid-playlist-renderer a#video-title"
	HorizontalList = "yt-horizontal-list-renderer"
)

// HorizontalItems are tried inside the horizontal list, title links first
// so badge links are skipped.
var HorizontalItems = []string{
	"yt-lockup-metadata-view-model a[href*='/watch']",
	".yt-lockup-metadata-view-model-wiz__title[href*='/watch']",
	"h3 a[href*='/watch']",
}

// StandaloneSelectors are tried against the whole document for newer layouts.
var StandaloneSelectors = []string{
	"yt-lockup-metadata-view-model a[href*='/watch']",
	".yt-lockup-metadata-view-model-wiz__title[href*='/watch']",
	"h3 a[href*='/watch']",
	"a.yt-lockup-metadata-view-model-wiz__title[href*='/watch']",
}

// ArtistOptions tunes the popup tier.
type ArtistOptions struct {
	// WaitTimeout bounds the View all and dialog waits. Default: 5s.
	WaitTimeout time.Duration
	// Pause separates the popup steps. Default: 1s.
	Pause time.Duration
	// ScrollSettle is the wait after each scroll inside the dialog. Default: 2s.
	ScrollSettle time.Duration
	// Engine runs the dialog scroll. Default: uncapped Engine.
	Engine *scroll.Engine
	// Sleep defaults to scroll.Sleep.
	Sleep  scroll.SleepFunc
	Logger *slog.Logger
}

func (o *ArtistOptions) defaults() {
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = 5 * time.Second
	}
	if o.Pause <= 0 {
		o.Pause = time.Second
	}
	if o.ScrollSettle <= 0 {
		o.ScrollSettle = 2 * time.Second
	}
	if o.Sleep == nil {
		o.Sleep = scroll.Sleep
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Engine == nil {
		o.Engine = &scroll.Engine{Logger: o.Logger}
	}
}

// ArtistChain locates playlist links on a live channel page:
// the View all popup, then the horizontal list, then standalone selectors.
func ArtistChain(sess browser.Session, opts ArtistOptions, onExhausted func(context.Context) error) *Chain {
	opts.defaults()
	document := func(ctx context.Context) (dom.Node, error) {
		return sess.Document(ctx)
	}
	return &Chain{
		Strategies: []Strategy{
			&Popup{Session: sess, Opts: opts},
			Query{Label: "horizontal-list", Root: document, Container: HorizontalList, Items: HorizontalItems},
			Query{Label: "standalone-selectors", Root: document, Items: StandaloneSelectors},
		},
		OnExhausted: onExhausted,
		Logger:      opts.Logger,
	}
}

// Popup opens the View all dialog and scrolls its list until no new
// playlists load.
type Popup struct {
	Session browser.Session
	Opts    ArtistOptions
}

func (p *Popup) Name() string { return "popup" }

func (p *Popup) Attempt(ctx context.Context) ([]dom.Node, error) {
	o := p.Opts
	o.defaults()
	log := o.Logger

	btn, err := p.Session.Wait(ctx, browser.XPath(ViewAllButton), o.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("view all button: %w", err)
	}
	log.Info("locate: found View all button, using popup")
	if err := p.click(ctx, btn, o.WaitTimeout); err != nil {
		return nil, fmt.Errorf("click view all: %w", err)
	}
	if err := o.Sleep(ctx, o.Pause); err != nil {
		return nil, err
	}

	dialog, err := p.Session.WaitVisible(ctx, browser.CSS(PopupDialog), o.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("popup dialog: %w", err)
	}
	if err := o.Sleep(ctx, o.Pause); err != nil {
		return nil, err
	}

	boxes, err := dialog.Elements(ctx, PopupScrollBox)
	if err != nil {
		return nil, fmt.Errorf("popup scroll box: %w", err)
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("popup scroll box: %w", dom.ErrNotFound)
	}
	box := boxes[0]
	log.Info("locate: using popup scroll container")

	// The dialog list only scrolls once it can take focus.
	if err := box.SetAttr(ctx, "tabindex", "0"); err != nil {
		return nil, fmt.Errorf("focus scroll box: %w", err)
	}
	if err := o.Sleep(ctx, o.Pause); err != nil {
		return nil, err
	}

	st := &scroll.Stepper{
		Metric: scroll.ChildCount{Container: box, Selector: PopupItem},
		Settle: o.ScrollSettle,
		Sleep:  o.Sleep,
	}
	res, err := o.Engine.Run(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("popup scroll: %w", err)
	}
	log.Info("locate: popup scroll complete",
		"items", res.Last, "converged", res.Converged, "partial", res.Partial)

	links, err := box.FindAll(ctx, PopupLinks)
	if err != nil {
		return nil, fmt.Errorf("popup links: %w", err)
	}
	log.Info("locate: playlists extracted from popup", "count", len(links))
	return links, nil
}

// click bounds the click by timeout. A covered button never becomes
// interactable, so the deadline is reported as browser.ErrTimeout.
func (p *Popup) click(ctx context.Context, btn browser.Element, timeout time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := btn.Click(cctx); err != nil {
		return browser.TimeoutErr(ctx, err)
	}
	return nil
}
