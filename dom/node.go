// Package dom is the element model shared by live browser pages and static
// HTML snapshots. Locator strategies and the playlist finalizer only see
// Node, so they run unchanged against Chrome or against a saved document.
package dom

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Find when a selector matches nothing.
// It is an expected condition, never a fault.
var ErrNotFound = errors.New("dom: element not found")

// Node is a handle into a document: the whole document, a container or a
// single candidate link.
type Node interface {
	// Attr returns the attribute value and whether it is present.
	Attr(ctx context.Context, name string) (string, bool, error)
	// Text returns the visible text of the node.
	Text(ctx context.Context) (string, error)
	// Find returns the first descendant matching css, or ErrNotFound.
	Find(ctx context.Context, css string) (Node, error)
	// FindAll returns every descendant matching css in document order.
	FindAll(ctx context.Context, css string) ([]Node, error)
}

// AttrOr returns the attribute value, or "" when absent or unreadable.
func AttrOr(ctx context.Context, n Node, name string) string {
	v, ok, err := n.Attr(ctx, name)
	if err != nil || !ok {
		return ""
	}
	return v
}
