package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"segprep/internal/processor"
)

type SummaryRow struct {
	Label string
	Value string
}

// JobRows turns a pipeline summary into table rows.
func JobRows(s processor.Summary, outputDir string) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Succeeded", Value: fmt.Sprintf("%d out of %d", s.Successes, s.Total)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failures())},
	}
	if s.Skipped > 0 {
		rows = append(rows, SummaryRow{Label: "Skipped (cancelled)", Value: fmt.Sprintf("%d", s.Skipped)})
	}
	if outputDir != "" {
		rows = append(rows, SummaryRow{Label: "Output", Value: outputDir})
	}
	return rows
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	valueStyle = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
)
