package harvest

import (
	"regexp"
	"strings"

	"github.com/foxseedlab/chanharvest/internal/telegram"
)

// ChannelHandle is a normalized channel reference: "@name", a marked
// "-100..." peer id, or the raw input when nothing was recognized.
type ChannelHandle string

// PeerID returns the bare channel id of a marked peer id handle.
func (h ChannelHandle) PeerID() (int64, bool) {
	return telegram.ParseChannelPeerID(string(h))
}

// Checked in order; the first match wins.
var handlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(\w+)`),
	regexp.MustCompile(`t\.me/(\w+)`),
	regexp.MustCompile(`telegram\.me/(\w+)`),
}

// ResolveChannelReference normalizes a user supplied channel reference.
// It never touches the network, so an unknown channel is only detected
// when the client resolves the handle.
func ResolveChannelReference(raw string) ChannelHandle {
	ref := strings.TrimSpace(raw)
	for _, p := range handlePatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return ChannelHandle("@" + m[1])
		}
	}
	return ChannelHandle(ref)
}
