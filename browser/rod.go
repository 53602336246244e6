package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/ytharvest/dom"
)

type rodSession struct {
	page *rod.Page
	cfg  Config
}

// openPage creates the tab without binding ctx so Close still works after
// the job context is cancelled.
func openPage(ctx context.Context, b *rod.Browser, cfg Config) (*rodSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var page *rod.Page
	var err error

	if cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if len(cfg.ResourceBlocking) > 0 {
		applyResourceBlocking(page, cfg.ResourceBlocking)
	}

	return &rodSession{page: page, cfg: cfg}, nil
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()

	if err := s.page.Context(navCtx).Navigate(url); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", url, TimeoutErr(ctx, err))
	}
	if err := s.page.Context(navCtx).WaitLoad(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.cfg.Logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}
	return nil
}

func (s *rodSession) find(ctx context.Context, sel Selector) (*rod.Element, error) {
	p := s.page.Context(ctx)
	if sel.IsXPath() {
		return p.ElementX(sel.Expr)
	}
	return p.Element(sel.Expr)
}

func (s *rodSession) Wait(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := s.find(wctx, sel)
	if err != nil {
		return nil, TimeoutErr(ctx, err)
	}
	return rodElement{el: el}, nil
}

func (s *rodSession) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error) {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	el, err := s.find(wctx, sel)
	if err != nil {
		return nil, TimeoutErr(ctx, err)
	}
	if err := el.Context(wctx).WaitVisible(); err != nil {
		return nil, TimeoutErr(ctx, err)
	}
	return rodElement{el: el}, nil
}

func (s *rodSession) EvalInt(ctx context.Context, js string) (int64, error) {
	res, err := s.page.Context(ctx).Eval(js)
	if err != nil {
		return 0, fmt.Errorf("browser: eval: %w", err)
	}
	return int64(res.Value.Int()), nil
}

func (s *rodSession) Exec(ctx context.Context, js string) error {
	if _, err := s.page.Context(ctx).Eval(js); err != nil {
		return fmt.Errorf("browser: exec: %w", err)
	}
	return nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return html, nil
}

func (s *rodSession) Title(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.Title, nil
}

func (s *rodSession) Document(ctx context.Context) (Element, error) {
	el, err := s.page.Context(ctx).Element("html")
	if err != nil {
		return nil, fmt.Errorf("browser: document: %w", err)
	}
	return rodElement{el: el}, nil
}

func (s *rodSession) Close() error {
	return s.page.Close()
}

// rodElement binds the caller's context on every call; the element itself
// keeps whatever context it was found with.
type rodElement struct {
	el *rod.Element
}

func (e rodElement) Attr(ctx context.Context, name string) (string, bool, error) {
	el := e.el.Context(ctx)
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	if name != "href" {
		return *v, true, nil
	}
	// The href property is the resolved absolute URL.
	p, err := el.Property("href")
	if err != nil || p.Nil() {
		return *v, true, nil
	}
	return p.Str(), true, nil
}

func (e rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e rodElement) Find(ctx context.Context, css string) (dom.Node, error) {
	has, el, err := e.el.Context(ctx).Has(css)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, dom.ErrNotFound
	}
	return rodElement{el: el}, nil
}

func (e rodElement) FindAll(ctx context.Context, css string) ([]dom.Node, error) {
	els, err := e.el.Context(ctx).Elements(css)
	if err != nil {
		return nil, err
	}
	out := make([]dom.Node, len(els))
	for i, el := range els {
		out[i] = rodElement{el: el}
	}
	return out, nil
}

func (e rodElement) Elements(ctx context.Context, css string) ([]Element, error) {
	els, err := e.el.Context(ctx).Elements(css)
	if err != nil {
		return nil, err
	}
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = rodElement{el: el}
	}
	return out, nil
}

func (e rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e rodElement) ScrollIntoView(ctx context.Context) error {
	return e.el.Context(ctx).ScrollIntoView()
}

func (e rodElement) SetAttr(ctx context.Context, name, value string) error {
	_, err := e.el.Context(ctx).Eval(`function(n, v) { this.setAttribute(n, v) }`, name, value)
	return err
}
