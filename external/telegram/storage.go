package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gotd/td/session"
)

// sessionFileMu serializes access to session files; concurrent harvests
// share the same identity and therefore the same file.
var sessionFileMu sync.Mutex

type lockedFileStorage struct {
	file session.FileStorage
}

func newSessionStorage(dir, name string) (*lockedFileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &lockedFileStorage{
		file: session.FileStorage{Path: filepath.Join(dir, name+".json")},
	}, nil
}

func (s *lockedFileStorage) LoadSession(ctx context.Context) ([]byte, error) {
	sessionFileMu.Lock()
	defer sessionFileMu.Unlock()
	return s.file.LoadSession(ctx)
}

func (s *lockedFileStorage) StoreSession(ctx context.Context, data []byte) error {
	sessionFileMu.Lock()
	defer sessionFileMu.Unlock()
	return s.file.StoreSession(ctx, data)
}
