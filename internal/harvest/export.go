package harvest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/samber/lo"
)

const (
	artifactTimeLayout = "20060102_1504"
	artifactSheet      = "participants"
)

var artifactHeader = []string{"user_id", "first_name", "last_name", "username", "bio"}

var pathSeparatorReplacer = strings.NewReplacer("/", "_", `\`, "_")

// ArtifactName names the export of a channel harvested at the given time,
// e.g. participants_demo_20260301_1205.xlsx.
func ArtifactName(handle ChannelHandle, at time.Time) string {
	channel := strings.TrimPrefix(string(handle), "@")
	channel = pathSeparatorReplacer.Replace(channel)
	return fmt.Sprintf("participants_%s_%s%s", channel, at.Format(artifactTimeLayout), spreadsheet.Extension)
}

// BuildTable lays the records out with one row per record, in order.
func BuildTable(records []ParticipantRecord) spreadsheet.Table {
	return spreadsheet.Table{
		Sheet:  artifactSheet,
		Header: artifactHeader,
		Rows: lo.Map(records, func(r ParticipantRecord, _ int) []any {
			return []any{r.UserID, r.FirstName, r.LastName, r.Username, r.Bio}
		}),
	}
}

// workspace is the local scratch area of one harvest. Artifacts are
// written inside it and moved into a directory of their own under the
// export directory only once complete, so harvests that produce the same
// artifact name never touch each other's files.
type workspace struct {
	exportDir string
	runID     string
	tempDir   string
	log       *slog.Logger
	once      sync.Once
}

func newWorkspace(exportDir, runID string, log *slog.Logger) (*workspace, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	// Same filesystem as exportDir so the final rename is atomic.
	tempDir, err := os.MkdirTemp(exportDir, ".harvest-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &workspace{exportDir: exportDir, runID: runID, tempDir: tempDir, log: log}, nil
}

// Export writes the table and returns EXPORT_DIR/<run id>/<name>.
func (w *workspace) Export(writer spreadsheet.Writer, name string, table spreadsheet.Table) (string, error) {
	scratch := filepath.Join(w.tempDir, name)
	if err := writer.Write(scratch, table); err != nil {
		return "", err
	}
	dir := filepath.Join(w.exportDir, w.runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	final := filepath.Join(dir, name)
	if err := os.Rename(scratch, final); err != nil {
		_ = os.Remove(dir)
		return "", fmt.Errorf("move artifact into export dir: %w", err)
	}
	return final, nil
}

// Close removes the temp dir. Safe to call more than once.
func (w *workspace) Close() {
	if w == nil {
		return
	}
	w.once.Do(func() {
		if err := os.RemoveAll(w.tempDir); err != nil {
			w.log.Error("failed to remove harvest temp dir", "error", err, "dir", w.tempDir)
		}
	})
}
