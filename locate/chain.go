// Package locate finds the region of a page that holds the links to harvest.
//
// Known page layouts are modelled as an ordered list of strategies. Chain
// tries them in order and keeps the first non-empty candidate set; a
// strategy that errors or finds nothing is logged and skipped, because each
// one stands for a layout the page may simply not use.
package locate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hazyhaar/ytharvest/dom"
)

// Strategy is one way to reach the candidates. An error or an empty result
// means this layout does not apply.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context) ([]dom.Node, error)
}

// Result is the outcome of Locate. Strategy is empty when every strategy failed.
type Result struct {
	Strategy   string
	Candidates []dom.Node
}

// Chain is a first-success fold over Strategies.
type Chain struct {
	Strategies []Strategy
	// OnExhausted runs when no strategy produced candidates, typically to
	// save the document for offline debugging. Its error is only logged.
	OnExhausted func(ctx context.Context) error
	Logger      *slog.Logger
}

// Locate runs the strategies in order. It never fails on layout absence; it
// only returns an error when ctx is done.
func (c *Chain) Locate(ctx context.Context) (Result, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	for _, s := range c.Strategies {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		cands, err := s.Attempt(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return Result{}, ctx.Err()
		case err != nil:
			log.Info("locate: strategy failed", "strategy", s.Name(), "reason", err)
			continue
		case len(cands) == 0:
			log.Info("locate: strategy found nothing", "strategy", s.Name())
			continue
		}

		log.Info("locate: strategy matched", "strategy", s.Name(), "candidates", len(cands))
		debugCandidates(ctx, log, s.Name(), cands)
		return Result{Strategy: s.Name(), Candidates: cands}, nil
	}

	log.Warn("locate: no strategy matched", "tried", len(c.Strategies))
	if c.OnExhausted != nil {
		if err := c.OnExhausted(ctx); err != nil {
			log.Error("locate: diagnostic dump failed", "error", err)
		}
	}
	return Result{}, nil
}

// debugCandidates logs the first three candidates of the matching strategy.
func debugCandidates(ctx context.Context, log *slog.Logger, strategy string, nodes []dom.Node) {
	for i, n := range nodes[:min(3, len(nodes))] {
		href := dom.AttrOr(ctx, n, "href")
		text, _ := n.Text(ctx)
		log.Debug("locate: candidate",
			"strategy", strategy,
			"index", i+1,
			"href", href,
			"title", dom.AttrOr(ctx, n, "title"),
			"text", strings.TrimSpace(text),
			"watch", strings.Contains(href, "/watch"))
	}
}
