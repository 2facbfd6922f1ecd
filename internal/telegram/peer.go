package telegram

import (
	"strconv"
	"strings"
)

// ChannelPeerPrefix marks the marked-id form of channel peers.
const ChannelPeerPrefix = "-100"

// ParseChannelPeerID converts a marked channel peer id such as
// "-1001751373900" into the bare channel id 1751373900.
func ParseChannelPeerID(handle string) (int64, bool) {
	if !strings.HasPrefix(handle, ChannelPeerPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(handle, ChannelPeerPrefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
