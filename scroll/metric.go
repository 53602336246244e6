package scroll

import (
	"context"
	"fmt"
	"time"

	"github.com/hazyhaar/ytharvest/browser"
)

// Metric is a scroll trigger paired with the reading it moves.
type Metric interface {
	Sample(ctx context.Context) (Sample, error)
	Trigger(ctx context.Context) error
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Stepper turns a Metric into an Advancer: baseline sample first, then
// trigger, settle, sample.
type Stepper struct {
	Metric Metric
	Settle time.Duration
	Sleep  SleepFunc

	primed bool
}

// NewStepper returns a Stepper using the default sleep.
func NewStepper(m Metric, settle time.Duration) *Stepper {
	return &Stepper{Metric: m, Settle: settle, Sleep: Sleep}
}

func (s *Stepper) Advance(ctx context.Context) (Sample, error) {
	if s.primed {
		if err := s.Metric.Trigger(ctx); err != nil {
			return 0, fmt.Errorf("trigger: %w", err)
		}
		sleep := s.Sleep
		if sleep == nil {
			sleep = Sleep
		}
		if err := sleep(ctx, s.Settle); err != nil {
			return 0, err
		}
	}
	s.primed = true
	return s.Metric.Sample(ctx)
}

// PageHeight measures document.body.scrollHeight and scrolls the window to
// the bottom.
type PageHeight struct {
	Session browser.Session
}

func (p PageHeight) Sample(ctx context.Context) (Sample, error) {
	h, err := p.Session.EvalInt(ctx, `() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("page height: %w", err)
	}
	return Sample(h), nil
}

func (p PageHeight) Trigger(ctx context.Context) error {
	return p.Session.Exec(ctx, `() => window.scrollTo(0, document.body.scrollHeight)`)
}

// ChildCount counts Selector matches under Container and scrolls the last
// match into view. Used for popup dialogs whose own list scrolls.
type ChildCount struct {
	Container browser.Element
	Selector  string
}

func (c ChildCount) Sample(ctx context.Context) (Sample, error) {
	items, err := c.Container.Elements(ctx, c.Selector)
	if err != nil {
		return 0, fmt.Errorf("child count: %w", err)
	}
	return Sample(len(items)), nil
}

func (c ChildCount) Trigger(ctx context.Context) error {
	items, err := c.Container.Elements(ctx, c.Selector)
	if err != nil {
		return fmt.Errorf("child count: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	return items[len(items)-1].ScrollIntoView(ctx)
}
