package dom

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed, immutable HTML snapshot queried with CSS selectors.
type Document struct {
	doc *goquery.Document
}

// Parse parses raw HTML into a Document.
func Parse(src []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Root returns the document itself as a Node.
func (d *Document) Root() Node {
	return staticNode{sel: d.doc.Selection}
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

type staticNode struct {
	sel *goquery.Selection
}

func (n staticNode) Attr(_ context.Context, name string) (string, bool, error) {
	v, ok := n.sel.Attr(name)
	return v, ok, nil
}

func (n staticNode) Text(_ context.Context) (string, error) {
	return n.sel.Text(), nil
}

func (n staticNode) Find(_ context.Context, css string) (Node, error) {
	m := n.sel.Find(css)
	if m.Length() == 0 {
		return nil, ErrNotFound
	}
	return staticNode{sel: m.First()}, nil
}

func (n staticNode) FindAll(_ context.Context, css string) ([]Node, error) {
	m := n.sel.Find(css)
	out := make([]Node, 0, m.Length())
	m.Each(func(_ int, s *goquery.Selection) {
		out = append(out, staticNode{sel: s})
	})
	return out, nil
}
