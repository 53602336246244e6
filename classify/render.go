package classify

const (
	// ChannelBase prefixes channel fragments in channels.txt.
	ChannelBase = "https://youtube.com/"
	// PlaylistBase prefixes browse and query fragments in playlist.txt.
	PlaylistBase = "https://music.youtube.com/"
)

// Channels returns the sorted absolute channel URLs.
func (s Sets) Channels() []string {
	return absolute(ChannelBase, s.Sorted(Channel))
}

// Playlists returns the sorted absolute playlist URLs. Browse pages and
// playlist?list= links share one list.
func (s Sets) Playlists() []string {
	return absolute(PlaylistBase, s.Sorted(PlaylistBrowse, PlaylistQuery))
}

func absolute(base string, frags []string) []string {
	out := make([]string, len(frags))
	for i, f := range frags {
		out[i] = base + f
	}
	return out
}
