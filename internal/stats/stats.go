// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/typerush/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of stored results.
type Summary struct {
	Sessions     int
	AvgWPM       float64
	BestWPM      int
	AvgAccuracy  float64
	AvgCPS       float64
	HighestLevel int
	TotalChars   int
	TotalTime    int64
	Grades       map[string]int
}

// Summarize computes aggregate figures for results.
func Summarize(records []model.SessionRecord) Summary {
	sum := Summary{Grades: map[string]int{}}
	if len(records) == 0 {
		return sum
	}
	var totalWPM, totalAcc, totalCPS float64
	for _, r := range records {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		totalCPS += r.CPS
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
		if r.Level > sum.HighestLevel {
			sum.HighestLevel = r.Level
		}
		sum.TotalChars += r.TypedChars
		sum.TotalTime += r.DurationMs
		sum.Grades[r.Grade]++
	}
	count := float64(len(records))
	sum.Sessions = len(records)
	sum.AvgWPM = totalWPM / count
	sum.AvgAccuracy = totalAcc / count
	sum.AvgCPS = totalCPS / count
	return sum
}

// WPMSeries returns the WPM of each record in order.
func WPMSeries(records []model.SessionRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.WPM)
	}
	return out
}

// AccuracySeries returns the accuracy percentage of each record in order.
func AccuracySeries(records []model.SessionRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = float64(r.Accuracy)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Tail keeps at most the last width values.
func Tail(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	return values[len(values)-width:]
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// RenderSummary prints a summary block for results.
func RenderSummary(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	sum := Summarize(records)
	p := printer()
	lines := []string{
		"Summary",
		p.Sprintf("Sessions: %d", sum.Sessions),
		p.Sprintf("Avg WPM: %.2f", sum.AvgWPM),
		p.Sprintf("Best WPM: %d", sum.BestWPM),
		p.Sprintf("Avg Accuracy: %.2f%%", sum.AvgAccuracy),
		p.Sprintf("Avg CPS: %.2f", sum.AvgCPS),
		p.Sprintf("Highest Level: %d", sum.HighestLevel),
		p.Sprintf("Characters Typed: %d", sum.TotalChars),
		"Grades: " + FormatGrades(sum.Grades),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// GradeOrder lists grades best first.
var GradeOrder = []string{"A+", "A", "B+", "B", "C+", "C"}

// FormatGrades renders a grade distribution in ladder order.
func FormatGrades(grades map[string]int) string {
	parts := make([]string, 0, len(GradeOrder))
	for _, g := range GradeOrder {
		if n := grades[g]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s×%d", g, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// RenderCurves prints WPM and accuracy sparklines over a moving average.
func RenderCurves(w io.Writer, records []model.SessionRecord, window, width int) error {
	if len(records) == 0 {
		return nil
	}
	wpms := Tail(MovingAverage(WPMSeries(records), window), width)
	accs := Tail(MovingAverage(AccuracySeries(records), window), width)
	lines := []string{
		fmt.Sprintf("Learning Curves (window %d)", window),
		fmt.Sprintf("WPM      %s", Sparkline(wpms)),
		fmt.Sprintf("Accuracy %s", Sparkline(accs)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per result, oldest first.
func RenderHistory(w io.Writer, records []model.SessionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	p := printer()
	cols := []column{
		{title: "When"},
		{title: "Name"},
		{title: "Level", right: true},
		{title: "WPM", right: true},
		{title: "Accuracy", right: true},
		{title: "Mistakes", right: true},
		{title: "Time", right: true},
		{title: "Grade"},
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			fmt.Sprintf("%d", r.Level),
			p.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			p.Sprintf("%d", r.Mistakes),
			fmt.Sprintf("%.2fs", float64(r.DurationMs)/1000),
			r.Grade,
		})
	}
	return writeTable(w, cols, rows)
}

// RenderCharTable prints per-character aggregates, weakest first.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	rows := SelectWeakChars(aggs, 0)
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}

	p := printer()
	cols := []column{
		{title: "Char"},
		{title: "Accuracy", right: true},
		{title: "Correct", right: true},
		{title: "Incorrect", right: true},
	}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			CharLabel(r.Char),
			fmt.Sprintf("%.2f%%", weakAccuracy(r)*100),
			p.Sprintf("%d", r.Correct),
			p.Sprintf("%d", r.Incorrect),
		})
	}
	if err := writeTable(w, cols, tableRows); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// CharLabel returns a printable label for a stored character.
func CharLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}
