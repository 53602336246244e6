package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/browser/browsertest"
	"github.com/hazyhaar/ytharvest/dom"
	"github.com/hazyhaar/ytharvest/scroll"
)

type fakeStrategy struct {
	name  string
	nodes []dom.Node
	err   error
	calls *[]string
}

func (f fakeStrategy) Name() string { return f.name }

func (f fakeStrategy) Attempt(context.Context) ([]dom.Node, error) {
	*f.calls = append(*f.calls, f.name)
	return f.nodes, f.err
}

func hrefs(t *testing.T, nodes []dom.Node) []string {
	t.Helper()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = dom.AttrOr(context.Background(), n, "href")
	}
	return out
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestChainFirstSuccess(t *testing.T) {
	doc, err := dom.Parse([]byte(`<a href="/x">x</a>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	links, _ := doc.Root().FindAll(context.Background(), "a")

	var calls []string
	c := &Chain{Strategies: []Strategy{
		fakeStrategy{name: "broken", err: errors.New("boom"), calls: &calls},
		fakeStrategy{name: "empty", calls: &calls},
		fakeStrategy{name: "match", nodes: links, calls: &calls},
		fakeStrategy{name: "never", nodes: links, calls: &calls},
	}}

	res, err := c.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "match" {
		t.Errorf("strategy: got %q, want %q", res.Strategy, "match")
	}
	if got := strings.Join(calls, ","); got != "broken,empty,match" {
		t.Errorf("calls: got %q", got)
	}
	if len(res.Candidates) != 1 {
		t.Errorf("candidates: got %d, want 1", len(res.Candidates))
	}
}

func TestChainExhausted(t *testing.T) {
	var calls []string
	dumped := 0
	c := &Chain{
		Strategies: []Strategy{
			fakeStrategy{name: "a", calls: &calls},
			fakeStrategy{name: "b", err: dom.ErrNotFound, calls: &calls},
		},
		OnExhausted: func(context.Context) error {
			dumped++
			return errors.New("disk full")
		},
	}

	res, err := c.Locate(context.Background())
	if err != nil {
		t.Fatalf("exhaustion is not an error: %v", err)
	}
	if res.Strategy != "" || len(res.Candidates) != 0 {
		t.Errorf("got %+v, want empty result", res)
	}
	if dumped != 1 {
		t.Errorf("OnExhausted calls: got %d, want 1", dumped)
	}
}

func TestChainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	c := &Chain{Strategies: []Strategy{fakeStrategy{name: "a", calls: &calls}}}
	if _, err := c.Locate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(calls) != 0 {
		t.Errorf("strategies ran after cancel: %v", calls)
	}
}

func TestLibraryChainContents(t *testing.T) {
	doc, err := dom.Parse([]byte(`<html><body>
<nav><a href="/library">Library</a></nav>
<div id="contents" class="style-scope ytmusic-section-list-renderer">
  <a href="channel/UC1">One</a>
  <a href="browse/VLPL2">Two</a>
</div></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	res, err := LibraryChain(doc, nil, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "library-contents" {
		t.Errorf("strategy: got %q, want library-contents", res.Strategy)
	}
	got := strings.Join(hrefs(t, res.Candidates), " ")
	if got != "channel/UC1 browse/VLPL2" {
		t.Errorf("hrefs: got %q", got)
	}
}

func TestLibraryChainWholeDocumentFallback(t *testing.T) {
	doc, err := dom.Parse([]byte(`<body><a href="channel/UC1">One</a><span>x</span></body>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := LibraryChain(doc, nil, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "whole-document" {
		t.Errorf("strategy: got %q, want whole-document", res.Strategy)
	}
	if len(res.Candidates) != 1 {
		t.Errorf("candidates: got %d, want 1", len(res.Candidates))
	}
}

func TestLibraryChainNothing(t *testing.T) {
	doc, err := dom.Parse([]byte(`<body><p>empty</p></body>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dumped := false
	res, err := LibraryChain(doc, func(context.Context) error { dumped = true; return nil }, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if len(res.Candidates) != 0 || !dumped {
		t.Errorf("got %d candidates, dumped=%v", len(res.Candidates), dumped)
	}
}

const popupGrid = `<ytd-grid-playlist-renderer><a id="video-title" href="/watch?v=a&list=PL%d" title="Album %d">Album %d</a></ytd-grid-playlist-renderer>`

func popupPage(items int) string {
	var b strings.Builder
	for i := 1; i <= items; i++ {
		fmt.Fprintf(&b, popupGrid, i, i, i)
	}
	return `<html><body>
<ytd-popup-container><tp-yt-paper-dialog>
<ytd-item-section-renderer><div id="contents" class="style-scope ytd-item-section-renderer">` +
		b.String() + `</div></ytd-item-section-renderer>
</tp-yt-paper-dialog></ytd-popup-container></body></html>`
}

func TestArtistChainPopup(t *testing.T) {
	sess := browsertest.New(`<html><body>
<button><span>View all</span></button>
<yt-horizontal-list-renderer><h3><a href="/watch?v=z&list=PLhidden">hidden</a></h3></yt-horizontal-list-renderer>
</body></html>`)
	sess.OnClick = func(s *browsertest.Session, _ *browsertest.Element) {
		s.SetHTML(popupPage(2))
	}
	loaded := 2
	sess.OnScroll = func(_ *browsertest.Session, el *browsertest.Element) {
		if loaded >= 5 {
			return
		}
		loaded++
		el.Selection().Parent().AppendHtml(fmt.Sprintf(popupGrid, loaded, loaded, loaded))
	}

	chain := ArtistChain(sess, ArtistOptions{Sleep: noSleep, Engine: &scroll.Engine{MaxIterations: 20}}, nil)
	res, err := chain.Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "popup" {
		t.Fatalf("strategy: got %q, want popup", res.Strategy)
	}
	if len(res.Candidates) != 5 {
		t.Errorf("candidates: got %d, want 5", len(res.Candidates))
	}
	if got := hrefs(t, res.Candidates)[4]; got != "/watch?v=a&list=PL5" {
		t.Errorf("last href: got %q", got)
	}

	actions := strings.Join(sess.Actions(), "\n")
	for _, want := range []string{"click button", "set-attr tabindex=0", "scroll-into-view ytd-grid-playlist-renderer"} {
		if !strings.Contains(actions, want) {
			t.Errorf("actions missing %q:\n%s", want, actions)
		}
	}
}

func TestArtistChainPopupHiddenDialogFallsThrough(t *testing.T) {
	sess := browsertest.New(`<html><body>
<button><span>View all</span></button>
<ytd-popup-container><tp-yt-paper-dialog hidden></tp-yt-paper-dialog></ytd-popup-container>
<yt-horizontal-list-renderer>
  <yt-lockup-metadata-view-model><a href="/watch?v=1&list=PL1">One</a></yt-lockup-metadata-view-model>
</yt-horizontal-list-renderer>
</body></html>`)

	res, err := ArtistChain(sess, ArtistOptions{Sleep: noSleep}, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "horizontal-list" {
		t.Errorf("strategy: got %q, want horizontal-list", res.Strategy)
	}
}

func TestArtistChainHorizontalPrefersTitleLinks(t *testing.T) {
	sess := browsertest.New(`<html><body>
<yt-horizontal-list-renderer>
  <a href="/watch?v=badge&list=PLbadge">badge</a>
  <yt-lockup-metadata-view-model><a href="/watch?v=1&list=PL1">One</a></yt-lockup-metadata-view-model>
  <yt-lockup-metadata-view-model><a href="/watch?v=2&list=PL2">Two</a></yt-lockup-metadata-view-model>
</yt-horizontal-list-renderer>
</body></html>`)

	res, err := ArtistChain(sess, ArtistOptions{Sleep: noSleep}, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "horizontal-list" {
		t.Fatalf("strategy: got %q, want horizontal-list", res.Strategy)
	}
	got := strings.Join(hrefs(t, res.Candidates), " ")
	if got != "/watch?v=1&list=PL1 /watch?v=2&list=PL2" {
		t.Errorf("hrefs: got %q", got)
	}
}

func TestArtistChainStandaloneOnly(t *testing.T) {
	sess := browsertest.New(`<html><body>
<div><h3><a href="/watch?v=1&list=PL1">One</a></h3></div>
<div><h3><a href="/channel/UCx">Not a playlist</a></h3></div>
</body></html>`)

	res, err := ArtistChain(sess, ArtistOptions{Sleep: noSleep}, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "standalone-selectors" {
		t.Errorf("strategy: got %q, want standalone-selectors", res.Strategy)
	}
	if len(res.Candidates) != 1 {
		t.Errorf("candidates: got %d, want 1", len(res.Candidates))
	}
	for _, a := range sess.Actions() {
		if strings.HasPrefix(a, "click") {
			t.Errorf("unexpected click with no View all button: %q", a)
		}
	}
}

func TestArtistChainCoveredViewAllFallsThrough(t *testing.T) {
	sess := browsertest.New(`<html><body>
<button id="view-all"><span>View all</span></button>
<yt-horizontal-list-renderer>
  <yt-lockup-metadata-view-model><a href="/watch?v=1&list=PL1">One</a></yt-lockup-metadata-view-model>
</yt-horizontal-list-renderer>
</body></html>`)
	sess.Covered = "#view-all"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	opts := ArtistOptions{WaitTimeout: 50 * time.Millisecond, Sleep: noSleep}
	res, err := ArtistChain(sess, opts, nil).Locate(ctx)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("covered button held the chain for %v", elapsed)
	}
	if res.Strategy != "horizontal-list" {
		t.Errorf("strategy: got %q, want horizontal-list", res.Strategy)
	}
	if got := strings.Join(sess.Actions(), ","); !strings.Contains(got, "click-covered button") {
		t.Errorf("actions: got %q, want a covered click attempt", got)
	}
}

func TestPopupCoveredClickIsTimeout(t *testing.T) {
	sess := browsertest.New(`<html><body><button><span>View all</span></button></body></html>`)
	sess.Covered = "button"

	p := &Popup{Session: sess, Opts: ArtistOptions{WaitTimeout: 20 * time.Millisecond, Sleep: noSleep}}
	if _, err := p.Attempt(context.Background()); !errors.Is(err, browser.ErrTimeout) {
		t.Errorf("got %v, want browser.ErrTimeout", err)
	}
}

func TestChainLogsCandidatesForEveryStrategy(t *testing.T) {
	sess := browsertest.New(`<html><body>
<yt-horizontal-list-renderer>
  <yt-lockup-metadata-view-model><a href="/watch?v=1&list=PL1" title="One">One</a></yt-lockup-metadata-view-model>
</yt-horizontal-list-renderer>
</body></html>`)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res, err := ArtistChain(sess, ArtistOptions{Sleep: noSleep, Logger: logger}, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "horizontal-list" {
		t.Fatalf("strategy: got %q, want horizontal-list", res.Strategy)
	}
	out := buf.String()
	if !strings.Contains(out, "locate: candidate") || !strings.Contains(out, "strategy=horizontal-list") {
		t.Errorf("candidate debug line missing:\n%s", out)
	}
	if !strings.Contains(out, "title=One") {
		t.Errorf("candidate title not logged:\n%s", out)
	}
}

func TestLibraryChainEmptyContentsFallsBack(t *testing.T) {
	doc, err := dom.Parse([]byte(`<body>
<div id="contents" class="style-scope ytmusic-section-list-renderer"></div>
<a href="channel/UC1">outside</a></body>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := LibraryChain(doc, nil, nil).Locate(context.Background())
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if res.Strategy != "whole-document" || len(res.Candidates) != 1 {
		t.Errorf("got strategy %q with %d candidates, want whole-document with 1", res.Strategy, len(res.Candidates))
	}
}
