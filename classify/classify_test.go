package classify

import (
	"math/rand"
	"slices"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		href     string
		kind     Kind
		fragment string
	}{
		{"channel/UC123abc", Channel, "channel/UC123abc"},
		{"/channel/UC_x-9", Channel, "channel/UC_x-9"},
		{"https://music.youtube.com/channel/UCabc?feature=x", Channel, "channel/UCabc"},
		{"browse/VLabc123", PlaylistBrowse, "browse/VLabc123"},
		{"https://music.youtube.com/browse/MPREb_1", PlaylistBrowse, "browse/MPREb_1"},
		{"playlist?list=PLxyz", PlaylistQuery, "playlist?list=PLxyz"},
		{"/playlist?list=RDCLAK5uy_k&index=2", PlaylistQuery, "playlist?list=RDCLAK5uy_k"},
		{"watch?v=abc", Unrecognized, ""},
		{"", Unrecognized, ""},
		{"channel/", Unrecognized, ""},
	}
	for _, tt := range tests {
		got := Classify(tt.href)
		if got.Kind != tt.kind || got.Fragment != tt.fragment {
			t.Errorf("Classify(%q): got (%s, %q), want (%s, %q)",
				tt.href, got.Kind, got.Fragment, tt.kind, tt.fragment)
		}
	}
}

func TestClassify_Priority(t *testing.T) {
	// Matches every pattern; channel has the highest priority.
	href := "browse/VL1/channel/UC9/playlist?list=PL1"
	if got := Classify(href); got.Kind != Channel || got.Fragment != "channel/UC9" {
		t.Fatalf("got (%s, %q), want channel/UC9", got.Kind, got.Fragment)
	}

	href = "playlist?list=PL1&from=browse/VL1"
	if got := Classify(href); got.Kind != PlaylistBrowse {
		t.Fatalf("got %s, want browse before playlist query", got.Kind)
	}
}

func TestPatterns_Order(t *testing.T) {
	want := []Kind{Channel, PlaylistBrowse, PlaylistQuery}
	if len(Patterns) != len(want) {
		t.Fatalf("Patterns: got %d, want %d", len(Patterns), len(want))
	}
	for i, p := range Patterns {
		if p.Kind != want[i] {
			t.Errorf("Patterns[%d]: got %s, want %s", i, p.Kind, want[i])
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for _, h := range []string{"channel/UC1", "browse/VL2", "playlist?list=PL3", "x"} {
		first := Classify(h)
		for i := 0; i < 10; i++ {
			if got := Classify(h); got != first {
				t.Fatalf("Classify(%q) changed: %v then %v", h, first, got)
			}
		}
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	once := Dedupe([]string{"channel/UC1", "browse/VL1"})
	twice := Dedupe([]string{"channel/UC1", "/channel/UC1", "browse/VL1", "https://music.youtube.com/browse/VL1"})

	for _, k := range []Kind{Channel, PlaylistBrowse, PlaylistQuery} {
		if !slices.Equal(once.Sorted(k), twice.Sorted(k)) {
			t.Errorf("%s: got %v, want %v", k, twice.Sorted(k), once.Sorted(k))
		}
	}
}

func TestDedupe_SizeBound(t *testing.T) {
	in := []string{"channel/UC1", "channel/UC1", "watch?v=1", "browse/VL1", "playlist?list=PL1"}
	s := Dedupe(in)
	total := s.Len(Channel) + s.Len(PlaylistBrowse) + s.Len(PlaylistQuery)
	if total > len(in) {
		t.Fatalf("output %d exceeds input %d", total, len(in))
	}
	if total != 3 {
		t.Fatalf("total: got %d, want 3", total)
	}
}

func TestDedupe_OrderIndependent(t *testing.T) {
	in := []string{
		"channel/UCb", "channel/UCa", "browse/VLz", "browse/VLa",
		"playlist?list=PLm", "watch?v=1", "channel/UCa", "/browse/VLa",
	}
	want := Dedupe(in)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		perm := slices.Clone(in)
		r.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		got := Dedupe(perm)
		if !slices.Equal(got.Channels(), want.Channels()) || !slices.Equal(got.Playlists(), want.Playlists()) {
			t.Fatalf("permutation %v changed output", perm)
		}
	}
}

func TestRender(t *testing.T) {
	s := Dedupe([]string{"channel/UCb", "channel/UCa", "playlist?list=PL1", "browse/VL1"})

	wantCh := []string{"https://youtube.com/channel/UCa", "https://youtube.com/channel/UCb"}
	if got := s.Channels(); !slices.Equal(got, wantCh) {
		t.Errorf("Channels: got %v, want %v", got, wantCh)
	}
	wantPl := []string{"https://music.youtube.com/browse/VL1", "https://music.youtube.com/playlist?list=PL1"}
	if got := s.Playlists(); !slices.Equal(got, wantPl) {
		t.Errorf("Playlists: got %v, want %v", got, wantPl)
	}
}
