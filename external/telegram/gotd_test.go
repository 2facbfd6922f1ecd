package telegram

import (
	"context"
	"errors"
	"testing"

	telegrampkg "github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "private channel", err: tgerr.New(400, "CHANNEL_PRIVATE"), want: telegrampkg.ErrPrivate},
		{name: "admin required", err: tgerr.New(400, "CHAT_ADMIN_REQUIRED"), want: telegrampkg.ErrPrivate},
		{name: "unknown username", err: tgerr.New(400, "USERNAME_NOT_OCCUPIED"), want: telegrampkg.ErrNotFound},
		{name: "revoked session", err: tgerr.New(401, "SESSION_REVOKED"), want: telegrampkg.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyError(tc.err)
			require.ErrorIs(t, got, tc.want)
			require.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyError_PassesOtherErrorsThrough(t *testing.T) {
	err := errors.New("connection reset")
	require.Same(t, err, classifyError(err))
}

func TestParticipantUserID(t *testing.T) {
	cases := []struct {
		name   string
		p      tg.ChannelParticipantClass
		want   int64
		wantOK bool
	}{
		{name: "member", p: &tg.ChannelParticipant{UserID: 10}, want: 10, wantOK: true},
		{name: "creator", p: &tg.ChannelParticipantCreator{UserID: 11}, want: 11, wantOK: true},
		{name: "admin", p: &tg.ChannelParticipantAdmin{UserID: 12}, want: 12, wantOK: true},
		{name: "banned user", p: &tg.ChannelParticipantBanned{Peer: &tg.PeerUser{UserID: 13}}, want: 13, wantOK: true},
		{name: "banned channel", p: &tg.ChannelParticipantBanned{Peer: &tg.PeerChannel{ChannelID: 14}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := participantUserID(tc.p)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParticipantFromUser(t *testing.T) {
	got := participantFromUser(&tg.User{
		ID:         5123456789,
		AccessHash: 77,
		FirstName:  "Alice",
		LastName:   "Liddell",
		Username:   "alice",
		Deleted:    true,
	})
	require.Equal(t, telegrampkg.Participant{
		ID:         5123456789,
		AccessHash: 77,
		FirstName:  "Alice",
		LastName:   "Liddell",
		Username:   "alice",
		Deleted:    true,
	}, got)
}

func TestUsersByIDSkipsEmptyUsers(t *testing.T) {
	users := usersByID([]tg.UserClass{&tg.UserEmpty{ID: 1}, &tg.User{ID: 2, FirstName: "Bob"}})
	require.Len(t, users, 1)
	require.Equal(t, "Bob", users[2].FirstName)
}

func TestChannelFromChats(t *testing.T) {
	req := require.New(t)
	res := &tg.MessagesChats{Chats: []tg.ChatClass{
		&tg.Chat{ID: 1},
		&tg.Channel{ID: 1751373900, AccessHash: 9, Title: "Demo"},
	}}

	ch, ok, err := channelFromChats(res, 1751373900, "-1001751373900")
	req.NoError(err)
	req.True(ok)
	req.Equal(telegrampkg.Channel{ID: 1751373900, AccessHash: 9, Handle: "-1001751373900", Title: "Demo", Member: true}, ch)

	ch, ok, err = channelFromChats(&tg.MessagesChats{Chats: []tg.ChatClass{
		&tg.Channel{ID: 5, AccessHash: 6, Title: "Left", Left: true},
	}}, 5, "@left")
	req.NoError(err)
	req.True(ok)
	req.False(ch.Member)

	_, ok, err = channelFromChats(&tg.MessagesChats{Chats: []tg.ChatClass{&tg.ChannelForbidden{ID: 3}}}, 3, "-1003")
	req.False(ok)
	req.ErrorIs(err, telegrampkg.ErrPrivate)
}

func TestClient_NotConnected(t *testing.T) {
	c := NewClient(1, "0123456789abcdef0123456789abcdef", nil)
	require.ErrorIs(t, c.EnsureAuthorized(context.Background(), nil), errNotConnected)
	require.NoError(t, c.Close())
}

func TestSessionStorage_RoundTrip(t *testing.T) {
	req := require.New(t)
	s, err := newSessionStorage(t.TempDir(), "user_session")
	req.NoError(err)

	req.NoError(s.StoreSession(context.Background(), []byte(`{"Version":1}`)))
	data, err := s.LoadSession(context.Background())
	req.NoError(err)
	req.NotEmpty(data)
}
