package telegram

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("telegram: entity not found")
	ErrPrivate      = errors.New("telegram: channel is private or unreachable")
	ErrNotChannel   = errors.New("telegram: entity is not a channel")
	ErrUnauthorized = errors.New("telegram: session is not authorized")
)

// Channel is a resolved channel entity. It is only meaningful on the
// connection that resolved it. Member reports whether the signed-in
// identity had already joined the channel at resolution time.
type Channel struct {
	ID         int64
	AccessHash int64
	Handle     string
	Title      string
	Member     bool
}

// Participant is the lightweight entity returned by participant listing.
// HasAbout is set only when the listing already carried the about text.
// Deleted marks an account that no longer exists.
type Participant struct {
	ID         int64
	AccessHash int64
	FirstName  string
	LastName   string
	Username   string
	About      string
	HasAbout   bool
	Deleted    bool
}

// Authenticator supplies interactive credentials the first time an
// identity signs in.
type Authenticator interface {
	Phone(ctx context.Context) (string, error)
	Code(ctx context.Context) (string, error)
	Password(ctx context.Context) (string, error)
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	// EnsureAuthorized signs in through auth when the stored session is not
	// authorized. A nil auth yields ErrUnauthorized in that case.
	EnsureAuthorized(ctx context.Context, auth Authenticator) error
	ResolveChannel(ctx context.Context, handle string) (Channel, error)
	// Participants lists channel participants in discovery order. A limit
	// of zero or less lists all of them.
	Participants(ctx context.Context, ch Channel, limit int) ([]Participant, error)
	FullProfileAbout(ctx context.Context, p Participant) (string, error)
	LookupUserAbout(ctx context.Context, p Participant) (about string, found bool, err error)
	JoinChannel(ctx context.Context, ch Channel) error
	LeaveChannel(ctx context.Context, ch Channel) error
}

// ClientFactory builds a fresh, unconnected client. Every harvest owns the
// client it gets from the factory.
type ClientFactory func() Client
