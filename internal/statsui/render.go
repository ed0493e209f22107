package statsui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerush/internal/model"
	"github.com/verte-zerg/typerush/internal/stats"
)

const weakestShown = 8

func overviewContent(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No results found."
	}
	sections := []string{
		renderSummaryCards(report.Summary, width),
		renderCurves(report.Sessions, window, width),
		renderWeakest(report.CharAggsWindow),
		headerStyle.Render("Grades") + "\n" + stats.FormatGrades(report.Summary.Grades),
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(sum stats.Summary, width int) string {
	cards := []string{
		metricCard("Results", fmt.Sprintf("%d", sum.Sessions)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", sum.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%d", sum.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", sum.AvgAccuracy)),
		metricCard("Top Level", fmt.Sprintf("%d", sum.HighestLevel)),
		metricCard("Characters", fmt.Sprintf("%d", sum.TotalChars)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(records []model.SessionRecord, window, width int) string {
	sparkWidth := maxInt(10, width-12)
	wpms := stats.Tail(stats.MovingAverage(stats.WPMSeries(records), window), sparkWidth)
	accs := stats.Tail(stats.MovingAverage(stats.AccuracySeries(records), window), sparkWidth)
	lines := []string{
		headerStyle.Render(fmt.Sprintf("Learning curves (moving average over %d)", window)),
		fmt.Sprintf("WPM      %s", stats.Sparkline(wpms)),
		fmt.Sprintf("Accuracy %s", stats.Sparkline(accs)),
	}
	return strings.Join(lines, "\n")
}

func renderWeakest(aggs []model.CharAggregate) string {
	title := headerStyle.Render("Weakest characters (window)")
	weak := stats.SelectWeakChars(aggs, weakestShown)
	if len(weak) == 0 {
		return title + "\nNo character stats found."
	}
	parts := make([]string, 0, len(weak))
	for _, agg := range weak {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", stats.CharLabel(agg.Char), agg.Accuracy()*100))
	}
	practiced := stats.MostPracticed(aggs, weakestShown)
	most := make([]string, 0, len(practiced))
	for _, agg := range practiced {
		most = append(most, stats.CharLabel(agg.Char))
	}
	return title + "\n" + strings.Join(parts, "  ") + "\n" + headerStyle.Render("Most practiced: "+strings.Join(most, " "))
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "When", Width: 16},
		{Title: "Name", Width: 12},
		{Title: "Level", Width: 5},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 8},
		{Title: "Mistakes", Width: 8},
		{Title: "Time", Width: 8},
		{Title: "Grade", Width: 5},
	}
}

func historyRows(records []model.SessionRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			fmt.Sprintf("%d", r.Level),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%d", r.Mistakes),
			fmt.Sprintf("%.2fs", float64(r.DurationMs)/1000),
			r.Grade,
		})
	}
	return rows
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 7},
		{Title: "Accuracy", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Total", Width: 6},
	}
}

// charRows lists characters weakest first.
func charRows(aggs []model.CharAggregate) []table.Row {
	sorted := stats.SelectWeakChars(aggs, 0)
	rows := make([]table.Row, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, table.Row{
			stats.CharLabel(agg.Char),
			fmt.Sprintf("%.2f%%", agg.Accuracy()*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			fmt.Sprintf("%d", agg.Correct+agg.Incorrect),
		})
	}
	return rows
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
