package main

import (
	"time"

	"journal-api/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTableWriter(header table.Row, columns ...table.ColumnConfig) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.SetColumnConfigs(columns)
	return tw
}

func countColumn(name string) table.ColumnConfig {
	return table.ColumnConfig{Name: name, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight}
}

func formatDate(v interface{}) string {
	if t, ok := v.(time.Time); ok && !t.IsZero() {
		return t.Format("2006-01-02")
	}
	return "-"
}

// issueTable lists issues newest first as the repository returns them, with
// the issue count in the footer.
func issueTable(issues []models.Issue) string {
	tw := newTableWriter(
		table.Row{"Volume", "Issue", "Type", "Title", "Published"},
		countColumn("Volume"),
		countColumn("Issue"),
		table.ColumnConfig{Name: "Published", Transformer: formatDate},
	)
	for _, issue := range issues {
		tw.AppendRow(table.Row{issue.Volume, issue.IssueNumber, issue.Type, issue.Title, issue.PublicationDate})
	}
	tw.AppendFooter(table.Row{"Issues", len(issues)})
	return tw.Render()
}

func statsTable(stats *models.ArticleStats) string {
	tw := newTableWriter(table.Row{"Articles", "Count"}, countColumn("Count"))
	tw.AppendRows([]table.Row{
		{"Pending", stats.Pending},
		{"Published", stats.Published},
		{"Rejected", stats.Rejected},
	})
	tw.AppendFooter(table.Row{"Total", stats.Total})
	return tw.Render()
}
