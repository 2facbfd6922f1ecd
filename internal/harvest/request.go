package harvest

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request describes one harvest. It is not modified once a harvest starts.
type Request struct {
	Channel       string `validate:"required,max=256"`
	ParseUsername bool
	ParseBio      bool
	AutoJoin      bool
}

// Validate rejects requests whose channel reference is blank.
func (r Request) Validate() error {
	r.Channel = strings.TrimSpace(r.Channel)
	return validate.Struct(r)
}

// ParticipantRecord is one exported row. Optional fields hold "" when
// absent or not requested.
type ParticipantRecord struct {
	UserID    int64
	FirstName string
	LastName  string
	Username  string
	Bio       string
}

type Result struct {
	Success      bool
	Channel      string
	Participants []ParticipantRecord
	TotalUsers   int
	ArtifactPath string
	ArtifactName string
	Error        string
}
