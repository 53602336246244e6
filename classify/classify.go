// Package classify sorts raw hrefs into channel and playlist fragments.
//
// Classification is a pure function of the href string. The pattern table is
// data: its order is the priority, and the first pattern that matches
// anywhere in the href wins.
package classify

import (
	"regexp"
	"slices"
)

// Kind tags a classified href.
type Kind int

const (
	Unrecognized Kind = iota
	Channel
	PlaylistBrowse
	PlaylistQuery
)

func (k Kind) String() string {
	switch k {
	case Channel:
		return "channel"
	case PlaylistBrowse:
		return "playlist_browse"
	case PlaylistQuery:
		return "playlist_query"
	}
	return "unrecognized"
}

// Pattern binds a Kind to the expression that extracts its fragment.
type Pattern struct {
	Kind Kind
	Expr *regexp.Regexp
}

// Patterns is the priority list. A channel href is never tested against the
// browse pattern, and so on down the list.
var Patterns = []Pattern{
	{Kind: Channel, Expr: regexp.MustCompile(`channel/[A-Za-z0-9_-]+`)},
	{Kind: PlaylistBrowse, Expr: regexp.MustCompile(`browse/[A-Za-z0-9_-]+`)},
	{Kind: PlaylistQuery, Expr: regexp.MustCompile(`playlist\?list=[A-Za-z0-9_-]+`)},
}

// Classified is the normalized path fragment of an href (no scheme, host or
// leading slash) and its Kind.
type Classified struct {
	Kind     Kind
	Fragment string
}

// Classify returns the first matching pattern's kind and fragment, or
// Unrecognized with an empty fragment.
func Classify(href string) Classified {
	for _, p := range Patterns {
		if m := p.Expr.FindString(href); m != "" {
			return Classified{Kind: p.Kind, Fragment: m}
		}
	}
	return Classified{Kind: Unrecognized}
}

// Sets holds one fragment set per recognized kind.
type Sets map[Kind]map[string]struct{}

// Dedupe classifies every href and keeps each fragment once per kind.
// Unrecognized hrefs are dropped.
func Dedupe(hrefs []string) Sets {
	s := Sets{
		Channel:        {},
		PlaylistBrowse: {},
		PlaylistQuery:  {},
	}
	for _, h := range hrefs {
		c := Classify(h)
		if c.Kind == Unrecognized {
			continue
		}
		s[c.Kind][c.Fragment] = struct{}{}
	}
	return s
}

// Len returns the number of distinct fragments for k.
func (s Sets) Len(k Kind) int {
	return len(s[k])
}

// Sorted returns the union of the given kinds as a lexicographically sorted
// slice, independent of the order hrefs were seen in.
func (s Sets) Sorted(kinds ...Kind) []string {
	var out []string
	for _, k := range kinds {
		for f := range s[k] {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
