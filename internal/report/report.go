package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/strrl/session-trim/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// RenderSummary renders one block per finished job
func RenderSummary(summaries []models.JobSummary) string {
	if len(summaries) == 0 {
		return dimStyle.Render("No jobs ran")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Session logs trimmed"))
	b.WriteString("\n")
	for _, s := range summaries {
		b.WriteString("\n")
		b.WriteString(nameStyle.Render(s.Name))
		b.WriteString("\n")
		b.WriteString(field("Input", s.Input))
		b.WriteString(field("Output", s.Output))
		b.WriteString(field("Rows", fmt.Sprintf("%d", s.Rows)))
		b.WriteString(field("Took", s.Duration.Round(time.Millisecond).String()))
		if s.Stats != nil {
			b.WriteString(renderStats(*s.Stats))
		}
	}
	return b.String()
}

// RenderStats renders dataset stats the way GRU4Rec preprocessing prints
// its splits: events, sessions, items.
func RenderStats(stats models.DatasetStats) string {
	return titleStyle.Render(stats.Path) + "\n" + renderStats(stats)
}

// RenderRecords renders sampled records as a numbered list
func RenderRecords(records []models.SessionRecord) string {
	if len(records) == 0 {
		return dimStyle.Render("No records found")
	}
	var b strings.Builder
	for i, r := range records {
		num := labelStyle.Render(fmt.Sprintf("%3d.", i+1))
		b.WriteString(fmt.Sprintf("%s %s\n", num, valueStyle.Render(strings.Join([]string{r.SessionID, r.ItemID, r.Time}, "  "))))
	}
	return b.String()
}

func renderStats(stats models.DatasetStats) string {
	out := field("Events", fmt.Sprintf("%d", stats.Events))
	if stats.Sessions > 0 || stats.Items > 0 {
		out += field("Sessions", fmt.Sprintf("%d", stats.Sessions))
		out += field("Items", fmt.Sprintf("%d", stats.Items))
	}
	if stats.MinTime != "" || stats.MaxTime != "" {
		out += field("Time", stats.MinTime+" .. "+stats.MaxTime)
	}
	return out
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s\n", labelStyle.Width(10).Render(label+":"), valueStyle.Render(value))
}
