package repository

import (
	"context"
	"time"
)

type CreateRunInput struct {
	ID            string
	Channel       string
	ParseUsername bool
	ParseBio      bool
	StartedAt     time.Time
}

type CompleteRunInput struct {
	RunID            string
	Status           RunStatus
	EndedAt          time.Time
	ParticipantCount int
	ArtifactName     string
	ErrorDetail      string
}

type Repository interface {
	CreateRun(ctx context.Context, input CreateRunInput) (*Run, error)
	CompleteRun(ctx context.Context, input CompleteRunInput) error
	ListRecentRuns(ctx context.Context, limit int) ([]Run, error)
}
