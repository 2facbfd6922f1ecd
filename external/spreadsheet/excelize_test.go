package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/stretchr/testify/require"
)

func TestExcelizeSpreadsheet_RoundTripKeepsOrder(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "participants_demo_20260301_1200.xlsx")
	s := NewExcelizeSpreadsheet()

	table := spreadsheet.Table{
		Sheet:  "participants",
		Header: []string{"user_id", "first_name", "last_name", "username", "bio"},
		Rows: [][]any{
			{int64(3), "Carol", "", "carol", "likes tea"},
			{int64(1), "Alice", "Liddell", "alice", ""},
			{int64(5123456789), "Bob", "", "", ""},
		},
	}
	req.NoError(s.Write(path, table))

	rows, err := s.Read(path, "participants")
	req.NoError(err)
	req.Len(rows, 4)
	req.Equal([]string{"user_id", "first_name", "last_name", "username", "bio"}, rows[0])

	ids := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		ids = append(ids, row[0])
	}
	req.Equal([]string{"3", "1", "5123456789"}, ids)
	req.Equal("likes tea", rows[1][4])
	req.Equal("Liddell", rows[2][2])
}

func TestExcelizeSpreadsheet_DefaultSheet(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	s := NewExcelizeSpreadsheet()

	req.NoError(s.Write(path, spreadsheet.Table{Header: []string{"user_id"}}))

	rows, err := s.Read(path, "")
	req.NoError(err)
	req.Equal([][]string{{"user_id"}}, rows)
}

func TestExcelizeSpreadsheet_WriteFailsForMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	err := NewExcelizeSpreadsheet().Write(path, spreadsheet.Table{Header: []string{"user_id"}})
	require.Error(t, err)
}
