package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/chanharvest/internal/metrics"
	"github.com/foxseedlab/chanharvest/internal/telegram"
)

const defaultLeaveTimeout = 15 * time.Second

// Gatekeeper makes sure the current identity can list participants of a
// channel, joining it for the duration of a harvest when allowed.
type Gatekeeper struct {
	leaveTimeout time.Duration
	metrics      *metrics.Metrics
}

func NewGatekeeper(leaveTimeout time.Duration, m *metrics.Metrics) *Gatekeeper {
	if leaveTimeout <= 0 {
		leaveTimeout = defaultLeaveTimeout
	}
	return &Gatekeeper{leaveTimeout: leaveTimeout, metrics: m}
}

// MembershipLease records whether the harvest joined the channel itself.
// Release must be called exactly once the harvest is over; extra calls are
// ignored.
type MembershipLease struct {
	client       telegram.Client
	channel      telegram.Channel
	joined       bool
	leaveTimeout time.Duration
	metrics      *metrics.Metrics
	log          *slog.Logger
	once         sync.Once
}

func (g *Gatekeeper) Acquire(ctx context.Context, log *slog.Logger, client telegram.Client, ch telegram.Channel, autoJoin bool) (*MembershipLease, error) {
	lease := &MembershipLease{
		client:       client,
		channel:      ch,
		leaveTimeout: g.leaveTimeout,
		metrics:      g.metrics,
		log:          log,
	}

	listCheckErr := checkListing(ctx, client, ch)
	if listCheckErr == nil {
		log.Info("already able to list participants; membership unchanged")
		return lease, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if ch.Member {
		// Joining again is a no-op, and leaving afterwards would drop a
		// membership this harvest never created.
		log.Warn("member of channel but cannot list participants", "error", listCheckErr)
		return nil, fmt.Errorf("listing participants requires admin rights: %w", listCheckErr)
	}
	if !autoJoin {
		log.Warn("cannot list participants and auto-join is disabled", "error", listCheckErr)
		return nil, fmt.Errorf("auto-join disabled: %w", listCheckErr)
	}

	if err := client.JoinChannel(ctx, ch); err != nil {
		log.Error("failed to join channel", "error", err)
		return nil, fmt.Errorf("join channel: %w", err)
	}
	lease.joined = true
	log.Info("joined channel for harvest")
	return lease, nil
}

func checkListing(ctx context.Context, client telegram.Client, ch telegram.Channel) error {
	_, err := client.Participants(ctx, ch, 1)
	return err
}

// Joined reports whether Release will leave the channel.
func (l *MembershipLease) Joined() bool {
	return l != nil && l.joined
}

// Release leaves the channel if the harvest joined it. It keeps working
// after ctx is cancelled so a cancelled harvest still leaves. Leave
// failures are logged only.
func (l *MembershipLease) Release(ctx context.Context) {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if !l.joined {
			return
		}
		leaveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.leaveTimeout)
		defer cancel()
		if err := l.client.LeaveChannel(leaveCtx, l.channel); err != nil {
			l.metrics.LeaveFailed()
			l.log.Error("failed to leave channel after harvest", "error", err)
			return
		}
		l.log.Info("left channel after harvest")
	})
}
