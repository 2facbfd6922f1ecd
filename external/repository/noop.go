package repository

import (
	"context"

	"github.com/foxseedlab/chanharvest/internal/repository"
)

// NoopRepository is used when no database is configured. Run history is
// not kept.
type NoopRepository struct{}

func NewNoopRepository() repository.Repository {
	return NoopRepository{}
}

func (NoopRepository) CreateRun(_ context.Context, input repository.CreateRunInput) (*repository.Run, error) {
	return &repository.Run{
		ID:            input.ID,
		Channel:       input.Channel,
		Status:        repository.RunStatusRunning,
		ParseUsername: input.ParseUsername,
		ParseBio:      input.ParseBio,
		StartedAt:     input.StartedAt,
	}, nil
}

func (NoopRepository) CompleteRun(_ context.Context, _ repository.CompleteRunInput) error {
	return nil
}

func (NoopRepository) ListRecentRuns(_ context.Context, _ int) ([]repository.Run, error) {
	return nil, nil
}
