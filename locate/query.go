package locate

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/ytharvest/dom"
)

// ErrNoItems is returned by Query when the container exists but none of the
// item selectors match inside it.
var ErrNoItems = errors.New("locate: no items matched")

// Query is a (container, items) strategy. Container is looked up under Root
// (empty means Root itself); Items are tried in order and the first
// selector with matches wins.
type Query struct {
	Label     string
	Root      func(ctx context.Context) (dom.Node, error)
	Container string
	Items     []string
}

func (q Query) Name() string { return q.Label }

func (q Query) Attempt(ctx context.Context) ([]dom.Node, error) {
	root, err := q.Root(ctx)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}

	scope := root
	if q.Container != "" {
		scope, err = root.Find(ctx, q.Container)
		if err != nil {
			return nil, fmt.Errorf("container %q: %w", q.Container, err)
		}
	}

	for _, sel := range q.Items {
		items, err := scope.FindAll(ctx, sel)
		if err != nil {
			return nil, fmt.Errorf("items %q: %w", sel, err)
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, ErrNoItems
}

// StaticRoot adapts a fixed node to Query.Root.
func StaticRoot(n dom.Node) func(context.Context) (dom.Node, error) {
	return func(context.Context) (dom.Node, error) { return n, nil }
}
