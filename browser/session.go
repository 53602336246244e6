package browser

import (
	"context"
	"errors"
	"time"

	"github.com/hazyhaar/ytharvest/dom"
)

// ErrTimeout is returned by Wait and WaitVisible when nothing matched in
// time. Callers treat it as an expected absence.
var ErrTimeout = errors.New("browser: wait timed out")

type selectorKind int

const (
	kindCSS selectorKind = iota
	kindXPath
)

// Selector is a CSS selector (comma lists allowed) or an XPath expression.
type Selector struct {
	kind selectorKind
	Expr string
}

// CSS builds a CSS Selector.
func CSS(expr string) Selector { return Selector{kind: kindCSS, Expr: expr} }

// XPath builds an XPath Selector.
func XPath(expr string) Selector { return Selector{kind: kindXPath, Expr: expr} }

// IsXPath reports whether the selector is an XPath expression.
func (s Selector) IsXPath() bool { return s.kind == kindXPath }

func (s Selector) String() string {
	if s.IsXPath() {
		return "xpath:" + s.Expr
	}
	return s.Expr
}

// Element is a live node of the page.
type Element interface {
	dom.Node
	// Elements is FindAll with live handles.
	Elements(ctx context.Context, css string) ([]Element, error)
	Click(ctx context.Context) error
	ScrollIntoView(ctx context.Context) error
	SetAttr(ctx context.Context, name, value string) error
}

// Session is one browser page. Every call is a blocking round trip.
type Session interface {
	// Navigate loads url and waits for the load event. A load timeout is
	// logged, not returned.
	Navigate(ctx context.Context, url string) error
	// Wait returns the first element matching sel once present, or ErrTimeout.
	Wait(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	// WaitVisible is Wait plus a visibility check within the same timeout.
	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) (Element, error)
	// EvalInt runs a JS function and returns its integer result.
	EvalInt(ctx context.Context, js string) (int64, error)
	// Exec runs a JS function for its side effects.
	Exec(ctx context.Context, js string) error
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
	// Title returns document.title.
	Title(ctx context.Context) (string, error)
	// Document returns the root element for document-wide queries.
	Document(ctx context.Context) (Element, error)
	Close() error
}

// TimeoutErr maps an expired wait deadline to ErrTimeout while keeping
// cancellation of the parent context visible.
func TimeoutErr(parent context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
