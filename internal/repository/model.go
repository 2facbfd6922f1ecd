package repository

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded harvest invocation.
type Run struct {
	ID               string
	Channel          string
	Status           RunStatus
	ParseUsername    bool
	ParseBio         bool
	StartedAt        time.Time
	EndedAt          *time.Time
	ParticipantCount int
	ArtifactName     string
	ErrorDetail      string
}
