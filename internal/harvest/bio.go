package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/foxseedlab/chanharvest/internal/telegram"
)

// BioLookupFunc returns found=false (or an error) when it cannot tell the
// biography. found=true with an empty bio is a definitive "no bio".
type BioLookupFunc func(ctx context.Context, p telegram.Participant) (bio string, found bool, err error)

type BioStrategy struct {
	Name   string
	Lookup BioLookupFunc
}

// BioChain tries strategies in order and settles on the first answer.
type BioChain struct {
	strategies []BioStrategy
	retryPause time.Duration
	pacer      Pacer
	onResolved func(strategy string)
}

func NewBioChain(strategies []BioStrategy, retryPause time.Duration, pacer Pacer) *BioChain {
	return &BioChain{
		strategies: strategies,
		retryPause: retryPause,
		pacer:      pacer,
	}
}

// DefaultBioStrategies looks the biography up through the full profile,
// then through a refreshed user lookup, then from the participant itself.
func DefaultBioStrategies(client telegram.Client) []BioStrategy {
	return []BioStrategy{
		{
			Name: "full_profile",
			Lookup: func(ctx context.Context, p telegram.Participant) (string, bool, error) {
				about, err := client.FullProfileAbout(ctx, p)
				if err != nil {
					return "", false, err
				}
				return about, true, nil
			},
		},
		{
			Name:   "user_lookup",
			Lookup: client.LookupUserAbout,
		},
		{
			Name: "participant_about",
			Lookup: func(_ context.Context, p telegram.Participant) (string, bool, error) {
				if !p.HasAbout || p.About == "" {
					return "", false, nil
				}
				return p.About, true, nil
			},
		},
	}
}

// Resolve never fails: a participant whose biography cannot be found gets
// an empty one.
func (c *BioChain) Resolve(ctx context.Context, log *slog.Logger, p telegram.Participant) string {
	for i, s := range c.strategies {
		if ctx.Err() != nil {
			return ""
		}
		bio, found, err := s.Lookup(ctx, p)
		switch {
		case err != nil:
			log.Debug("bio strategy failed", "strategy", s.Name, "user_id", p.ID, "error", err)
		case found:
			if c.onResolved != nil {
				c.onResolved(s.Name)
			}
			return bio
		default:
			log.Debug("bio strategy had no answer", "strategy", s.Name, "user_id", p.ID)
		}
		if i < len(c.strategies)-1 {
			if err := c.pacer.Pause(ctx, c.retryPause); err != nil {
				return ""
			}
		}
	}
	return ""
}
