package locate

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/ytharvest/dom"
)

// Library page selectors.
const (
	LibraryContents = "div#contents.style-scope.ytmusic-section-list-renderer"
	LibraryLinks    = "a[href]"
)

// LibraryChain locates links on a static snapshot of the library page: the
// section-list contents first, the whole document as fallback.
func LibraryChain(doc *dom.Document, onExhausted func(context.Context) error, logger *slog.Logger) *Chain {
	root := StaticRoot(doc.Root())
	return &Chain{
		Strategies: []Strategy{
			Query{Label: "library-contents", Root: root, Container: LibraryContents, Items: []string{LibraryLinks}},
			Query{Label: "whole-document", Root: root, Items: []string{LibraryLinks}},
		},
		OnExhausted: onExhausted,
		Logger:      logger,
	}
}
