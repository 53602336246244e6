// Package browsertest provides an in-memory browser.Session over static
// HTML, for exercising scroll and locator logic without Chrome.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/hazyhaar/ytharvest/browser"
	"github.com/hazyhaar/ytharvest/dom"
)

// Session is a scripted browser.Session. Every side effect is appended to
// Actions so tests can assert what did and did not happen.
type Session struct {
	mu      sync.Mutex
	doc     *goquery.Document
	actions []string

	// PageTitle is returned by Title.
	PageTitle string
	// Heights are returned by successive EvalInt calls; the last repeats.
	Heights []int64
	// OnClick runs after an element is clicked.
	OnClick func(s *Session, el *Element)
	// OnScroll runs after an element is scrolled into view.
	OnScroll func(s *Session, el *Element)
	// Covered is a CSS selector for elements under an overlay. Clicking
	// one blocks until the click context ends, as a real browser retries
	// until the element becomes interactable.
	Covered string

	evals  int
	closed bool
}

// New returns a Session showing html.
func New(html string) *Session {
	s := &Session{}
	s.SetHTML(html)
	return s
}

// SetHTML replaces the document. Handles from the previous document stay
// valid but detached.
func (s *Session) SetHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("browsertest: parse: %v", err))
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Actions returns a copy of the recorded side effects.
func (s *Session) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.actions...)
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) record(format string, args ...any) {
	s.mu.Lock()
	s.actions = append(s.actions, fmt.Sprintf(format, args...))
	s.mu.Unlock()
}

func (s *Session) current() *goquery.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.record("navigate %s", url)
	return nil
}

func (s *Session) Wait(ctx context.Context, sel browser.Selector, _ time.Duration) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := s.current()
	if sel.IsXPath() {
		n := htmlquery.FindOne(doc.Get(0), sel.Expr)
		if n == nil {
			return nil, browser.ErrTimeout
		}
		return &Element{s: s, sel: doc.FindNodes(n)}, nil
	}
	m := doc.Find(sel.Expr)
	if m.Length() == 0 {
		return nil, browser.ErrTimeout
	}
	return &Element{s: s, sel: m.First()}, nil
}

// WaitVisible treats the hidden attribute as invisible.
func (s *Session) WaitVisible(ctx context.Context, sel browser.Selector, timeout time.Duration) (browser.Element, error) {
	el, err := s.Wait(ctx, sel, timeout)
	if err != nil {
		return nil, err
	}
	if _, hidden := el.(*Element).sel.Attr("hidden"); hidden {
		return nil, browser.ErrTimeout
	}
	return el, nil
}

func (s *Session) EvalInt(_ context.Context, js string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, "eval")
	if len(s.Heights) == 0 {
		return 0, nil
	}
	i := s.evals
	if i >= len(s.Heights) {
		i = len(s.Heights) - 1
	}
	s.evals++
	return s.Heights[i], nil
}

func (s *Session) Exec(_ context.Context, js string) error {
	s.record("exec %s", js)
	return nil
}

func (s *Session) HTML(_ context.Context) (string, error) {
	return s.current().Html()
}

func (s *Session) Title(_ context.Context) (string, error) {
	return s.PageTitle, nil
}

func (s *Session) Document(_ context.Context) (browser.Element, error) {
	return &Element{s: s, sel: s.current().Selection}, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Element is a goquery selection posing as a live element.
type Element struct {
	s   *Session
	sel *goquery.Selection
}

// Selection exposes the underlying node for hooks that mutate the page.
func (e *Element) Selection() *goquery.Selection { return e.sel }

func (e *Element) Attr(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *Element) Text(_ context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *Element) Find(_ context.Context, css string) (dom.Node, error) {
	m := e.sel.Find(css)
	if m.Length() == 0 {
		return nil, dom.ErrNotFound
	}
	return &Element{s: e.s, sel: m.First()}, nil
}

func (e *Element) FindAll(ctx context.Context, css string) ([]dom.Node, error) {
	els, _ := e.Elements(ctx, css)
	out := make([]dom.Node, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

func (e *Element) Elements(_ context.Context, css string) ([]browser.Element, error) {
	var out []browser.Element
	e.sel.Find(css).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{s: e.s, sel: s})
	})
	return out, nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.s.Covered != "" && e.sel.Is(e.s.Covered) {
		e.s.record("click-covered %s", goquery.NodeName(e.sel))
		<-ctx.Done()
		return ctx.Err()
	}
	e.s.record("click %s", goquery.NodeName(e.sel))
	if e.s.OnClick != nil {
		e.s.OnClick(e.s, e)
	}
	return nil
}

func (e *Element) ScrollIntoView(_ context.Context) error {
	e.s.record("scroll-into-view %s", goquery.NodeName(e.sel))
	if e.s.OnScroll != nil {
		e.s.OnScroll(e.s, e)
	}
	return nil
}

func (e *Element) SetAttr(_ context.Context, name, value string) error {
	e.s.record("set-attr %s=%s", name, value)
	e.sel.SetAttr(name, value)
	return nil
}
