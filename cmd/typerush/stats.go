package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typerush/internal/config"
	"github.com/verte-zerg/typerush/internal/model"
	"github.com/verte-zerg/typerush/internal/stats"
	"github.com/verte-zerg/typerush/internal/statsui"
	"github.com/verte-zerg/typerush/internal/store"
)

const defaultCurveWidth = 60

var (
	statsName   string
	statsLevel  int
	statsSince  string
	statsLast   int
	statsWindow int

	historyJSON bool
)

func addStatsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsName, "name", "", "name filter")
	cmd.Flags().IntVar(&statsLevel, "level", 0, "level filter (1-20, 0 for any)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N results")
	cmd.Flags().IntVar(&statsWindow, "window", config.DefaultStatsWindow, "moving average window")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print stored results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addStatsFlags(cmd)
	cmd.Flags().BoolVar(&historyJSON, "json", false, "print results as JSON")
	return cmd
}

func statsConfigFromFlags() (model.StatsConfig, error) {
	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	cfg := model.StatsConfig{
		Name:   statsName,
		Level:  statsLevel,
		Since:  since,
		Last:   statsLast,
		Window: statsWindow,
	}
	if err := config.ValidateStats(cfg); err != nil {
		return model.StatsConfig{}, err
	}
	return cfg, nil
}

// openStatsStore opens the results database for the read-only commands.
func openStatsStore() (*store.Store, *slog.Logger, error) {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return nil, nil, err
	}
	fileCfg, err := config.LoadConfig(envCfg.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := cliLogger(config.ResolveLog(fileCfg.Log, envCfg).Level)
	st, err := store.Open(envCfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("opened results database", "path", envCfg.DBPath)
	return st, logger, nil
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}
	st, logger, err := openStatsStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}
	st, logger, err := openStatsStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if historyJSON {
		return writeHistoryJSON(out, report)
	}
	return writeHistory(out, report, cfg.Window, curveWidth())
}

type historyDoc struct {
	Summary historySummary        `json:"summary"`
	Results []model.SessionRecord `json:"results"`
	Chars   []historyChar         `json:"chars"`
}

type historySummary struct {
	Sessions     int            `json:"sessions"`
	AvgWPM       float64        `json:"avg_wpm"`
	BestWPM      int            `json:"best_wpm"`
	AvgAccuracy  float64        `json:"avg_accuracy"`
	AvgCPS       float64        `json:"avg_cps"`
	HighestLevel int            `json:"highest_level"`
	TotalChars   int            `json:"total_chars"`
	TotalTimeMs  int64          `json:"total_time_ms"`
	Grades       map[string]int `json:"grades"`
}

type historyChar struct {
	Char      string  `json:"char"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

func writeHistoryJSON(w io.Writer, report stats.Report) error {
	sum := report.Summary
	doc := historyDoc{
		Summary: historySummary{
			Sessions:     sum.Sessions,
			AvgWPM:       sum.AvgWPM,
			BestWPM:      sum.BestWPM,
			AvgAccuracy:  sum.AvgAccuracy,
			AvgCPS:       sum.AvgCPS,
			HighestLevel: sum.HighestLevel,
			TotalChars:   sum.TotalChars,
			TotalTimeMs:  sum.TotalTime,
			Grades:       sum.Grades,
		},
		Results: report.Sessions,
		Chars:   make([]historyChar, 0, len(report.CharAggsWindow)),
	}
	if doc.Results == nil {
		doc.Results = []model.SessionRecord{}
	}
	for _, agg := range stats.SelectWeakChars(report.CharAggsWindow, 0) {
		doc.Chars = append(doc.Chars, historyChar{
			Char:      agg.Char,
			Correct:   agg.Correct,
			Incorrect: agg.Incorrect,
			Accuracy:  agg.Accuracy(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return nil
}

func writeHistory(w io.Writer, report stats.Report, window, width int) error {
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Sessions, window, width); err != nil {
		return err
	}
	if err := stats.RenderHistory(w, report.Sessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return stats.RenderCharTable(w, report.CharAggsWindow)
}

// curveWidth fits sparklines to the terminal, leaving room for the row label.
func curveWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultCurveWidth
	}
	if width -= 10; width < 10 {
		return 10
	}
	return width
}
