package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/foxseedlab/chanharvest/internal/config"
	"github.com/foxseedlab/chanharvest/internal/metrics"
	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/foxseedlab/chanharvest/internal/telegram"
	"github.com/foxseedlab/chanharvest/internal/webhook"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	bookkeepingTimeout = 10 * time.Second
	deliveryTimeout    = 90 * time.Second
)

// Harvester runs harvest invocations. Each invocation owns its own
// client, temp dir and membership lease; concurrent invocations share
// nothing but the concurrency limit.
type Harvester struct {
	exportDir     string
	location      *time.Location
	bioRetryPause time.Duration

	newClient     telegram.ClientFactory
	writer        spreadsheet.Writer
	repo          repository.Repository
	webhook       webhook.Sender
	metrics       *metrics.Metrics
	gatekeeper    *Gatekeeper
	enricher      *Enricher
	slots         *semaphore.Weighted
	pacer         Pacer
	auth          telegram.Authenticator
	bioStrategies func(telegram.Client) []BioStrategy
	now           func() time.Time
	log           *slog.Logger

	deliveries sync.WaitGroup
}

type Option func(*Harvester)

// WithAuthenticator lets harvests sign in interactively when the stored
// session is not authorized yet.
func WithAuthenticator(auth telegram.Authenticator) Option {
	return func(h *Harvester) { h.auth = auth }
}

func WithPacer(p Pacer) Option {
	return func(h *Harvester) { h.pacer = p }
}

func WithClock(now func() time.Time) Option {
	return func(h *Harvester) { h.now = now }
}

func WithBioStrategies(build func(telegram.Client) []BioStrategy) Option {
	return func(h *Harvester) { h.bioStrategies = build }
}

func WithLogger(log *slog.Logger) Option {
	return func(h *Harvester) { h.log = log }
}

func NewHarvester(cfg *config.Config, newClient telegram.ClientFactory, writer spreadsheet.Writer, repo repository.Repository, wh webhook.Sender, m *metrics.Metrics, opts ...Option) *Harvester {
	h := &Harvester{
		exportDir:     cfg.ExportDir,
		location:      cfg.Location(),
		bioRetryPause: cfg.HarvestBioRetryPause,
		newClient:     newClient,
		writer:        writer,
		repo:          repo,
		webhook:       wh,
		metrics:       m,
		gatekeeper:    NewGatekeeper(cfg.HarvestLeaveTimeout, m),
		slots:         semaphore.NewWeighted(int64(max(cfg.HarvestMaxConcurrent, 1))),
		pacer:         RealPacer(),
		bioStrategies: DefaultBioStrategies,
		now:           time.Now,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.enricher = NewEnricher(cfg.HarvestBatchSize, cfg.HarvestBatchPause, h.pacer, m)
	return h
}

// Harvest runs one invocation end to end. The returned Result is always
// populated; on failure Result.Error carries the reason and err is a
// *Error. Membership and local files are cleaned up before Harvest
// returns, including on panic and cancellation.
func (h *Harvester) Harvest(ctx context.Context, req Request) (result Result, err error) {
	startedAt := h.now()
	handle := ResolveChannelReference(req.Channel)
	channel := string(handle)
	runID := uuid.NewString()
	log := h.log.With("harvest_id", runID, "channel", channel)
	var run *repository.Run

	defer func() {
		if r := recover(); r != nil {
			log.Error("harvest panicked", "panic", r, "stack", string(debug.Stack()))
			err = newError(KindUnexpected, channel, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			result = Result{Channel: channel, Error: err.Error()}
			log.Error("harvest failed", "error", err)
		}
		h.finish(ctx, log, run, startedAt, result, err)
	}()

	if err := req.Validate(); err != nil {
		return result, newError(KindInvalidRequest, channel, err)
	}
	log.Info("harvest requested", "parse_username", req.ParseUsername, "parse_bio", req.ParseBio, "auto_join", req.AutoJoin)

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return result, newError(KindUnexpected, channel, fmt.Errorf("wait for harvest slot: %w", err))
	}
	defer h.slots.Release(1)

	run = h.recordStart(ctx, log, runID, channel, req, startedAt)

	result, err = h.run(ctx, log, runID, handle, req)
	if err != nil {
		return result, err
	}
	log.Info("harvest completed", "total_users", result.TotalUsers, "artifact", result.ArtifactPath)
	h.deliverArtifact(ctx, log, result)
	return result, nil
}

func (h *Harvester) run(ctx context.Context, log *slog.Logger, runID string, handle ChannelHandle, req Request) (Result, error) {
	channel := string(handle)

	ws, err := newWorkspace(h.exportDir, runID, log)
	if err != nil {
		return Result{}, newError(KindExport, channel, err)
	}
	defer ws.Close()

	client := h.newClient()
	if err := client.Connect(ctx); err != nil {
		return Result{}, h.fail(ctx, KindUnexpected, channel, fmt.Errorf("connect: %w", err))
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close telegram client", "error", err)
		}
	}()

	if err := client.EnsureAuthorized(ctx, h.auth); err != nil {
		return Result{}, h.fail(ctx, KindUnexpected, channel, fmt.Errorf("authorize: %w", err))
	}

	ch, err := client.ResolveChannel(ctx, channel)
	if err != nil {
		// A channel that exists but refuses this identity is an access
		// problem, not a lookup one.
		kind := KindResolution
		if errors.Is(err, telegram.ErrPrivate) {
			kind = KindAccess
		}
		return Result{}, h.fail(ctx, kind, channel, err)
	}
	log.Info("channel resolved", "channel_id", ch.ID, "title", ch.Title)

	lease, err := h.gatekeeper.Acquire(ctx, log, client, ch, req.AutoJoin)
	if err != nil {
		return Result{}, h.fail(ctx, KindAccess, channel, err)
	}
	defer lease.Release(ctx)

	participants, err := client.Participants(ctx, ch, 0)
	if err != nil {
		return Result{}, h.fail(ctx, KindUnexpected, channel, fmt.Errorf("list participants: %w", err))
	}
	log.Info("participants listed", "count", len(participants))

	bio := NewBioChain(h.bioStrategies(client), h.bioRetryPause, h.pacer)
	bio.onResolved = h.metrics.BioResolved
	records, err := h.enricher.Enrich(ctx, log, bio, participants, EnrichOptions{
		ParseUsername: req.ParseUsername,
		ParseBio:      req.ParseBio,
	})
	if err != nil {
		return Result{}, h.fail(ctx, KindUnexpected, channel, fmt.Errorf("enrich participants: %w", err))
	}

	name := ArtifactName(handle, h.now().In(h.location))
	path, err := ws.Export(h.writer, name, BuildTable(records))
	if err != nil {
		return Result{}, h.fail(ctx, KindExport, channel, err)
	}

	return Result{
		Success:      true,
		Channel:      channel,
		Participants: records,
		TotalUsers:   len(records),
		ArtifactPath: path,
		ArtifactName: name,
	}, nil
}

// fail reports cancellation as unexpected whatever stage noticed it.
func (h *Harvester) fail(ctx context.Context, kind Kind, channel string, err error) *Error {
	if ctx.Err() != nil {
		kind = KindUnexpected
	}
	return newError(kind, channel, err)
}

func (h *Harvester) recordStart(ctx context.Context, log *slog.Logger, runID, channel string, req Request, startedAt time.Time) *repository.Run {
	ctx, cancel := context.WithTimeout(ctx, bookkeepingTimeout)
	defer cancel()
	run, err := h.repo.CreateRun(ctx, repository.CreateRunInput{
		ID:            runID,
		Channel:       channel,
		ParseUsername: req.ParseUsername,
		ParseBio:      req.ParseBio,
		StartedAt:     startedAt,
	})
	if err != nil {
		log.Warn("failed to record harvest start", "error", err)
		return nil
	}
	return run
}

func (h *Harvester) finish(ctx context.Context, log *slog.Logger, run *repository.Run, startedAt time.Time, result Result, err error) {
	endedAt := h.now()
	outcome := "succeeded"
	status := repository.RunStatusSucceeded
	if err != nil {
		outcome = KindOf(err).String()
		status = repository.RunStatusFailed
	}
	h.metrics.ObserveHarvest(outcome, endedAt.Sub(startedAt), result.TotalUsers)

	if run == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancel()
	if cerr := h.repo.CompleteRun(ctx, repository.CompleteRunInput{
		RunID:            run.ID,
		Status:           status,
		EndedAt:          endedAt,
		ParticipantCount: result.TotalUsers,
		ArtifactName:     result.ArtifactName,
		ErrorDetail:      result.Error,
	}); cerr != nil {
		log.Warn("failed to record harvest completion", "error", cerr)
	}
}

// deliverArtifact reads the artifact right away, since HTTP callers may
// remove it once served, and uploads it in the background.
func (h *Harvester) deliverArtifact(ctx context.Context, log *slog.Logger, result Result) {
	body, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		log.Warn("failed to read artifact for webhook", "error", err)
		return
	}

	h.deliveries.Add(1)
	go func() {
		defer h.deliveries.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := h.webhook.SendArtifact(ctx, result.ArtifactName, body); err != nil {
			log.Error("failed to send artifact webhook", "error", err)
			return
		}
		log.Debug("artifact webhook delivered", "artifact", result.ArtifactName)
	}()
}

// Shutdown waits for background artifact deliveries to finish.
func (h *Harvester) Shutdown() {
	h.deliveries.Wait()
}

// RecentRuns returns the latest recorded harvest runs, newest first.
func (h *Harvester) RecentRuns(ctx context.Context, limit int) ([]repository.Run, error) {
	return h.repo.ListRecentRuns(ctx, limit)
}
