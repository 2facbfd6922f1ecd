package main

import (
	"io"
	"strconv"
	"time"

	"github.com/foxseedlab/chanharvest/internal/repository"
	"github.com/olekukonko/tablewriter"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func renderRuns(w io.Writer, runs []repository.Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Channel", "Status", "Users", "Duration", "Artifact / Error"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, run := range runs {
		table.Append([]string{
			run.StartedAt.Format(historyTimeLayout),
			run.Channel,
			string(run.Status),
			strconv.Itoa(run.ParticipantCount),
			runDuration(run),
			runDetail(run),
		})
	}
	table.Render()
}

func runDuration(run repository.Run) string {
	if run.EndedAt == nil {
		return "-"
	}
	return run.EndedAt.Sub(run.StartedAt).Round(time.Second).String()
}

func runDetail(run repository.Run) string {
	if run.Status == repository.RunStatusFailed {
		return run.ErrorDetail
	}
	return run.ArtifactName
}
