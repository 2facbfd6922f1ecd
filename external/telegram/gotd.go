package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	telegrampkg "github.com/foxseedlab/chanharvest/internal/telegram"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/message/peer"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Telegram caps channels.getParticipants pages at 200.
const participantsPageSize = 200

const dialogsBatchSize = 100

var errNotConnected = errors.New("telegram: client is not connected")

type Client struct {
	client *tgclient.Client
	api    *tg.Client
	stop   context.CancelFunc
	done   chan error
}

func NewClient(appID int, appHash string, storage session.Storage) *Client {
	c := tgclient.NewClient(appID, appHash, tgclient.Options{SessionStorage: storage})
	return &Client{client: c, api: c.API()}
}

// Connect starts the MTProto connection in the background and returns once
// it is usable. The connection outlives ctx; only Close stops it.
func (c *Client) Connect(ctx context.Context) error {
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- c.client.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
		c.stop, c.done = stop, done
		return nil
	case err := <-done:
		stop()
		return fmt.Errorf("telegram connection failed: %w", err)
	case <-ctx.Done():
		stop()
		<-done
		return ctx.Err()
	}
}

func (c *Client) Close() error {
	if c.stop == nil {
		return nil
	}
	c.stop()
	err := <-c.done
	c.stop, c.done = nil, nil
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Client) EnsureAuthorized(ctx context.Context, authenticator telegrampkg.Authenticator) error {
	if c.stop == nil {
		return errNotConnected
	}
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("check authorization: %w", err)
	}
	if status.Authorized {
		return nil
	}
	if authenticator == nil {
		return telegrampkg.ErrUnauthorized
	}
	flow := auth.NewFlow(userAuthenticator{auth: authenticator}, auth.SendCodeOptions{})
	if err := flow.Run(ctx, c.client.Auth()); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

func (c *Client) ResolveChannel(ctx context.Context, handle string) (telegrampkg.Channel, error) {
	if id, ok := telegrampkg.ParseChannelPeerID(handle); ok {
		return c.resolveChannelID(ctx, handle, id)
	}

	p, err := peer.DefaultResolver(c.api).ResolveDomain(ctx, strings.TrimPrefix(handle, "@"))
	if err != nil {
		return telegrampkg.Channel{}, classifyError(err)
	}
	in, ok := p.(*tg.InputPeerChannel)
	if !ok {
		return telegrampkg.Channel{}, fmt.Errorf("%w: %s", telegrampkg.ErrNotChannel, handle)
	}

	// The resolver keeps only the input peer; the channel entity carries
	// the title and whether this identity has left it.
	res, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: in.ChannelID, AccessHash: in.AccessHash},
	})
	if err != nil {
		return telegrampkg.Channel{}, classifyError(err)
	}
	ch, ok, err := channelFromChats(res, in.ChannelID, handle)
	if err != nil {
		return telegrampkg.Channel{}, err
	}
	if !ok {
		return telegrampkg.Channel{}, fmt.Errorf("%w: %s", telegrampkg.ErrNotFound, handle)
	}
	return ch, nil
}

// resolveChannelID looks a bare channel id up directly, then among the
// dialogs of the account, which carry the access hash.
func (c *Client) resolveChannelID(ctx context.Context, handle string, id int64) (telegrampkg.Channel, error) {
	res, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{ChannelID: id}})
	if err == nil {
		if ch, ok, err := channelFromChats(res, id, handle); ok || err != nil {
			return ch, err
		}
	}

	iter := query.GetDialogs(c.api).BatchSize(dialogsBatchSize).Iter()
	for iter.Next(ctx) {
		p, ok := iter.Value().Peer.(*tg.InputPeerChannel)
		if ok && p.ChannelID == id {
			// Dialogs only list chats the identity is in.
			return telegrampkg.Channel{ID: id, AccessHash: p.AccessHash, Handle: handle, Title: handle, Member: true}, nil
		}
	}
	if err := iter.Err(); err != nil {
		return telegrampkg.Channel{}, classifyError(err)
	}
	return telegrampkg.Channel{}, fmt.Errorf("%w: %s", telegrampkg.ErrNotFound, handle)
}

func channelFromChats(res tg.MessagesChatsClass, id int64, handle string) (telegrampkg.Channel, bool, error) {
	var chats []tg.ChatClass
	switch r := res.(type) {
	case *tg.MessagesChats:
		chats = r.Chats
	case *tg.MessagesChatsSlice:
		chats = r.Chats
	}
	for _, chat := range chats {
		switch ch := chat.(type) {
		case *tg.Channel:
			if ch.ID == id {
				return telegrampkg.Channel{
					ID:         ch.ID,
					AccessHash: ch.AccessHash,
					Handle:     handle,
					Title:      ch.Title,
					Member:     !ch.Left,
				}, true, nil
			}
		case *tg.ChannelForbidden:
			if ch.ID == id {
				return telegrampkg.Channel{}, false, fmt.Errorf("%w: %s", telegrampkg.ErrPrivate, handle)
			}
		}
	}
	return telegrampkg.Channel{}, false, nil
}

func (c *Client) Participants(ctx context.Context, ch telegrampkg.Channel, limit int) ([]telegrampkg.Participant, error) {
	var out []telegrampkg.Participant
	offset := 0
	for {
		pageSize := participantsPageSize
		if limit > 0 {
			pageSize = min(pageSize, limit-len(out))
		}
		res, err := c.api.ChannelsGetParticipants(ctx, &tg.ChannelsGetParticipantsRequest{
			Channel: inputChannel(ch),
			Filter:  &tg.ChannelParticipantsSearch{},
			Offset:  offset,
			Limit:   pageSize,
		})
		if err != nil {
			return nil, classifyError(err)
		}
		page, ok := res.(*tg.ChannelsChannelParticipants)
		if !ok || len(page.Participants) == 0 {
			return out, nil
		}

		users := usersByID(page.Users)
		for _, p := range page.Participants {
			id, ok := participantUserID(p)
			if !ok {
				continue
			}
			if u, ok := users[id]; ok {
				out = append(out, participantFromUser(u))
			} else {
				out = append(out, telegrampkg.Participant{ID: id})
			}
		}

		offset += len(page.Participants)
		if offset >= page.Count || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
	}
}

func (c *Client) FullProfileAbout(ctx context.Context, p telegrampkg.Participant) (string, error) {
	full, err := c.api.UsersGetFullUser(ctx, inputUser(p.ID, p.AccessHash))
	if err != nil {
		return "", classifyError(err)
	}
	return full.FullUser.About, nil
}

// LookupUserAbout refreshes the user entity first, so a stale access hash
// from the listing does not fail the profile request.
func (c *Client) LookupUserAbout(ctx context.Context, p telegrampkg.Participant) (string, bool, error) {
	users, err := c.api.UsersGetUsers(ctx, []tg.InputUserClass{inputUser(p.ID, p.AccessHash)})
	if err != nil {
		return "", false, classifyError(err)
	}
	u, ok := usersByID(users)[p.ID]
	if !ok {
		return "", false, nil
	}
	full, err := c.api.UsersGetFullUser(ctx, inputUser(u.ID, u.AccessHash))
	if err != nil {
		return "", false, classifyError(err)
	}
	return full.FullUser.About, true, nil
}

func (c *Client) JoinChannel(ctx context.Context, ch telegrampkg.Channel) error {
	if _, err := c.api.ChannelsJoinChannel(ctx, inputChannel(ch)); err != nil {
		return classifyError(err)
	}
	return nil
}

func (c *Client) LeaveChannel(ctx context.Context, ch telegrampkg.Channel) error {
	if _, err := c.api.ChannelsLeaveChannel(ctx, inputChannel(ch)); err != nil {
		return classifyError(err)
	}
	return nil
}

func inputChannel(ch telegrampkg.Channel) *tg.InputChannel {
	return &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
}

func inputUser(id, accessHash int64) *tg.InputUser {
	return &tg.InputUser{UserID: id, AccessHash: accessHash}
}

func usersByID(users []tg.UserClass) map[int64]*tg.User {
	out := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			out[user.ID] = user
		}
	}
	return out
}

func participantUserID(p tg.ChannelParticipantClass) (int64, bool) {
	switch v := p.(type) {
	case *tg.ChannelParticipant:
		return v.UserID, true
	case *tg.ChannelParticipantSelf:
		return v.UserID, true
	case *tg.ChannelParticipantCreator:
		return v.UserID, true
	case *tg.ChannelParticipantAdmin:
		return v.UserID, true
	case *tg.ChannelParticipantBanned:
		return peerUserID(v.Peer)
	case *tg.ChannelParticipantLeft:
		return peerUserID(v.Peer)
	default:
		return 0, false
	}
}

func peerUserID(p tg.PeerClass) (int64, bool) {
	u, ok := p.(*tg.PeerUser)
	if !ok {
		return 0, false
	}
	return u.UserID, true
}

func participantFromUser(u *tg.User) telegrampkg.Participant {
	return telegrampkg.Participant{
		ID:         u.ID,
		AccessHash: u.AccessHash,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Deleted:    u.Deleted,
	}
}

func classifyError(err error) error {
	switch {
	case tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID", "CHANNEL_INVALID", "PEER_ID_INVALID"):
		return fmt.Errorf("%w: %w", telegrampkg.ErrNotFound, err)
	case tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHAT_FORBIDDEN", "USER_BANNED_IN_CHANNEL", "INVITE_REQUEST_SENT"):
		return fmt.Errorf("%w: %w", telegrampkg.ErrPrivate, err)
	case tgerr.Is(err, "AUTH_KEY_UNREGISTERED", "SESSION_REVOKED", "USER_DEACTIVATED"):
		return fmt.Errorf("%w: %w", telegrampkg.ErrUnauthorized, err)
	default:
		return err
	}
}
