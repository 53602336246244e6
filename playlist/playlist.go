// Package playlist turns located candidate links into (title, href) records.
package playlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hazyhaar/ytharvest/dom"
)

// UnknownTitle is used when a candidate carries no usable title.
const UnknownTitle = "Unknown Playlist"

// Record is one playlist line of an artist output file.
type Record struct {
	Title string
	Href  string
}

// ResolveTitle picks the first non-blank of the title attribute, the
// aria-label attribute and the visible text, with whitespace runs collapsed
// to single spaces.
func ResolveTitle(ctx context.Context, n dom.Node) string {
	for _, attr := range []string{"title", "aria-label"} {
		if t := collapse(dom.AttrOr(ctx, n, attr)); t != "" {
			return t
		}
	}
	if text, err := n.Text(ctx); err == nil {
		if t := collapse(text); t != "" {
			return t
		}
	}
	return UnknownTitle
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Finalize keeps candidates whose href contains "/watch", in iteration
// order. Duplicates are kept.
func Finalize(ctx context.Context, nodes []dom.Node) []Record {
	out := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		href := dom.AttrOr(ctx, n, "href")
		if !strings.Contains(href, "/watch") {
			continue
		}
		out = append(out, Record{Title: ResolveTitle(ctx, n), Href: href})
	}
	return out
}

// WriteTSV writes one "title\thref" line per record.
func WriteTSV(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", r.Title, r.Href); err != nil {
			return fmt.Errorf("playlist: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("playlist: write: %w", err)
	}
	return nil
}
