// Package scroll drives an infinite-scroll document until it stops growing.
//
// Both the page-height and the popup-item-count variants reduce to an
// Advancer producing Samples; Engine.Run stops on the first pair of equal
// consecutive samples.
package scroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sample is one reading of the scroll metric (page height or item count).
type Sample int64

// HasConverged reports whether two consecutive samples are equal. A growing
// or fluctuating metric never converges.
func HasConverged(prev, curr Sample) bool {
	return prev == curr
}

// Advancer yields metric samples. The first call returns the baseline; each
// later call loads more content before sampling.
type Advancer interface {
	Advance(ctx context.Context) (Sample, error)
}

// Result describes how a run ended.
type Result struct {
	Converged  bool
	Partial    bool // a cap was hit before convergence
	Iterations int  // Advance calls after the baseline
	Last       Sample
}

// Engine runs the convergence loop with optional caps. A zero cap disables it.
type Engine struct {
	MaxIterations int
	MaxDuration   time.Duration
	Logger        *slog.Logger
}

// Run advances until two consecutive samples are equal. Hitting a cap is not
// an error: the result is flagged Partial and the caller keeps what loaded.
func (e *Engine) Run(ctx context.Context, adv Advancer) (Result, error) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	start := time.Now()

	prev, err := adv.Advance(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("scroll: baseline: %w", err)
	}
	log.Debug("scroll: baseline", "sample", prev)

	res := Result{Last: prev}
	for {
		if e.MaxIterations > 0 && res.Iterations >= e.MaxIterations {
			log.Warn("scroll: iteration cap reached, keeping partial content",
				"iterations", res.Iterations, "last", res.Last)
			res.Partial = true
			return res, nil
		}
		if e.MaxDuration > 0 && time.Since(start) >= e.MaxDuration {
			log.Warn("scroll: duration cap reached, keeping partial content",
				"elapsed", time.Since(start), "last", res.Last)
			res.Partial = true
			return res, nil
		}

		curr, err := adv.Advance(ctx)
		if err != nil {
			return res, fmt.Errorf("scroll: advance %d: %w", res.Iterations+1, err)
		}
		res.Iterations++
		res.Last = curr
		log.Info("scroll: sample", "iteration", res.Iterations, "sample", curr)

		if HasConverged(prev, curr) {
			res.Converged = true
			log.Info("scroll: converged", "iterations", res.Iterations, "sample", curr)
			return res, nil
		}
		prev = curr
	}
}
