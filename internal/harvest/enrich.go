package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/chanharvest/internal/metrics"
	"github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/samber/lo"
)

const (
	DefaultBatchSize  = 50
	DefaultBatchPause = 2 * time.Second
)

var (
	errInvalidParticipant = errors.New("participant has no user id")
	errDeletedAccount     = errors.New("participant account is deleted")
)

type EnrichOptions struct {
	ParseUsername bool
	ParseBio      bool
}

// Enricher turns listed participants into records, batch by batch, with a
// fixed pause between batches.
type Enricher struct {
	batchSize  int
	batchPause time.Duration
	pacer      Pacer
	metrics    *metrics.Metrics
}

func NewEnricher(batchSize int, batchPause time.Duration, pacer Pacer, m *metrics.Metrics) *Enricher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Enricher{
		batchSize:  batchSize,
		batchPause: batchPause,
		pacer:      pacer,
		metrics:    m,
	}
}

// Enrich keeps discovery order and does not deduplicate. A participant
// that fails enrichment is skipped; only context errors are returned.
func (e *Enricher) Enrich(ctx context.Context, log *slog.Logger, bio *BioChain, participants []telegram.Participant, opts EnrichOptions) ([]ParticipantRecord, error) {
	batches := lo.Chunk(participants, e.batchSize)
	records := make([]ParticipantRecord, 0, len(participants))
	done := 0
	for i, batch := range batches {
		for _, p := range batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec, err := e.enrichOne(ctx, log, bio, p, opts)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil {
				e.metrics.ParticipantSkipped()
				log.Warn("skipping participant", "user_id", p.ID, "error", err)
				continue
			}
			records = append(records, rec)
		}
		done += len(batch)
		log.Info("batch enriched", "batch", i+1, "batches", len(batches), "processed", done, "total", len(participants))

		if i < len(batches)-1 {
			if err := e.pacer.Pause(ctx, e.batchPause); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

func (e *Enricher) enrichOne(ctx context.Context, log *slog.Logger, bio *BioChain, p telegram.Participant, opts EnrichOptions) (ParticipantRecord, error) {
	if p.ID <= 0 {
		return ParticipantRecord{}, fmt.Errorf("%w: %d", errInvalidParticipant, p.ID)
	}
	if p.Deleted {
		return ParticipantRecord{}, errDeletedAccount
	}
	rec := ParticipantRecord{
		UserID:    p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if opts.ParseUsername {
		rec.Username = p.Username
	}
	if opts.ParseBio && bio != nil {
		rec.Bio = bio.Resolve(ctx, log, p)
	}
	return rec, nil
}
