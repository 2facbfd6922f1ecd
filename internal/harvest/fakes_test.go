package harvest

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/foxseedlab/chanharvest/internal/telegram"
)

type fakeClient struct {
	mu sync.Mutex

	channel      telegram.Channel
	participants []telegram.Participant
	abouts       map[int64]string

	connectErr     error
	authErr        error
	resolveErr     error
	listCheckErr   error
	listErr        error
	joinErr        error
	leaveErr       error
	fullProfileErr error
	lookupErr      error

	onList func()

	resolved         []string
	listChecks       int
	joins            int
	leaves           int
	closes           int
	fullProfileCalls int
	lookupCalls      int
	joined           bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		channel: telegram.Channel{ID: 1751373900, AccessHash: 42, Handle: "@demo", Title: "Demo"},
		abouts:  map[int64]string{},
	}
}

func (c *fakeClient) Connect(context.Context) error {
	return c.connectErr
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeClient) EnsureAuthorized(context.Context, telegram.Authenticator) error {
	return c.authErr
}

func (c *fakeClient) ResolveChannel(_ context.Context, handle string) (telegram.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved = append(c.resolved, handle)
	if c.resolveErr != nil {
		return telegram.Channel{}, c.resolveErr
	}
	return c.channel, nil
}

func (c *fakeClient) Participants(_ context.Context, _ telegram.Channel, limit int) ([]telegram.Participant, error) {
	c.mu.Lock()
	if limit == 1 {
		defer c.mu.Unlock()
		c.listChecks++
		if c.listCheckErr != nil && !c.joined {
			return nil, c.listCheckErr
		}
		return c.participants[:min(1, len(c.participants))], nil
	}
	onList := c.onList
	c.mu.Unlock()

	if onList != nil {
		onList()
	}
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.participants, nil
}

func (c *fakeClient) FullProfileAbout(_ context.Context, p telegram.Participant) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fullProfileCalls++
	if c.fullProfileErr != nil {
		return "", c.fullProfileErr
	}
	return c.abouts[p.ID], nil
}

func (c *fakeClient) LookupUserAbout(_ context.Context, p telegram.Participant) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookupCalls++
	if c.lookupErr != nil {
		return "", false, c.lookupErr
	}
	about, ok := c.abouts[p.ID]
	return about, ok, nil
}

func (c *fakeClient) JoinChannel(context.Context, telegram.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins++
	if c.joinErr != nil {
		return c.joinErr
	}
	c.joined = true
	return nil
}

func (c *fakeClient) LeaveChannel(ctx context.Context, _ telegram.Channel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaves++
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.leaveErr != nil {
		return c.leaveErr
	}
	c.joined = false
	return nil
}

type recordingPacer struct {
	mu      sync.Mutex
	pauses  []time.Duration
	onPause func()
}

func (p *recordingPacer) Pause(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	p.pauses = append(p.pauses, d)
	onPause := p.onPause
	p.mu.Unlock()
	if onPause != nil {
		onPause()
	}
	return ctx.Err()
}

type fakeWriter struct {
	err    error
	paths  []string
	tables []spreadsheet.Table
}

func (w *fakeWriter) Write(path string, table spreadsheet.Table) error {
	if w.err != nil {
		return w.err
	}
	w.paths = append(w.paths, path)
	w.tables = append(w.tables, table)
	return os.WriteFile(path, []byte("xlsx"), 0o644)
}

type fakeRepository struct {
	mu        sync.Mutex
	createErr error
	created   []repository.CreateRunInput
	completed []repository.CompleteRunInput
}

func (r *fakeRepository) CreateRun(_ context.Context, input repository.CreateRunInput) (*repository.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = append(r.created, input)
	return &repository.Run{ID: input.ID, Channel: input.Channel, Status: repository.RunStatusRunning, StartedAt: input.StartedAt}, nil
}

func (r *fakeRepository) CompleteRun(_ context.Context, input repository.CompleteRunInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, input)
	return nil
}

func (r *fakeRepository) ListRecentRuns(context.Context, int) ([]repository.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runs := make([]repository.Run, 0, len(r.created))
	for _, c := range r.created {
		runs = append(runs, repository.Run{ID: c.ID, Channel: c.Channel})
	}
	return runs, nil
}

type sentArtifact struct {
	filename string
	body     []byte
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []sentArtifact
	// gate, when set, holds every upload until it is closed.
	gate    chan struct{}
	ctxErrs []error
}

func (s *fakeSender) SendArtifact(ctx context.Context, filename string, body []byte) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentArtifact{filename: filename, body: body})
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.err
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
