package webhook

import "context"

type Sender interface {
	SendArtifact(ctx context.Context, filename string, body []byte) error
}
