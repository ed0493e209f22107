// Package main provides the CLI entrypoint for typerush.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typerush/internal/config"
	"github.com/verte-zerg/typerush/internal/generator"
	"github.com/verte-zerg/typerush/internal/logging"
	"github.com/verte-zerg/typerush/internal/model"
	"github.com/verte-zerg/typerush/internal/sentences"
	"github.com/verte-zerg/typerush/internal/stats"
	"github.com/verte-zerg/typerush/internal/store"
	"github.com/verte-zerg/typerush/internal/tui"
)

var (
	practiceName       string
	practiceLevel      int
	practiceSentences  string
	practiceFocusWeak  bool
	practiceWeakTop    int
	practiceWeakFactor float64
	practiceWeakWindow int

	passageLevel     int
	passageSentences string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typerush",
		Short:         "TUI typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceName, "name", "", "player name shown on the home screen")
	rootCmd.Flags().IntVar(&practiceLevel, "level", config.DefaultLevel, "starting level (1-20)")
	rootCmd.Flags().StringVar(&practiceSentences, "sentences", "", "sentence file, one sentence per line")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "prefer sentences with weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", config.DefaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", config.DefaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", config.DefaultWeakWindow, "number of recent results to compute weak chars")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newPassageCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(envCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "name", &practiceName, fileCfg.Practice.Name)
	applyIntConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyStringConfig(cmd, "sentences", &practiceSentences, fileCfg.Practice.Sentences)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)

	cfg := model.Config{
		Name:          strings.TrimSpace(practiceName),
		Level:         practiceLevel,
		SentencesPath: practiceSentences,
		FocusWeak:     practiceFocusWeak,
		WeakTop:       practiceWeakTop,
		WeakFactor:    practiceWeakFactor,
		WeakWindow:    practiceWeakWindow,
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// The alt screen owns the terminal, so the TUI logs to a file.
	logSettings := config.ResolveLog(fileCfg.Log, envCfg)
	level, err := logging.ParseLevel(logSettings.Level)
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(logSettings.File)
	if err != nil {
		return err
	}
	defer func() {
		_ = logFile.Close()
	}()
	logger := logging.New(logFile, level, false)

	gen, err := newGenerator(cfg.SentencesPath)
	if err != nil {
		return err
	}

	st, err := store.Open(envCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	weakSet := initialWeakSet(context.Background(), st, cfg, logger)

	logger.Info("starting practice", "name", cfg.Name, "level", cfg.Level, "focus_weak", cfg.FocusWeak)
	m := tui.NewModel(cfg, st, gen, weakSet, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newGenerator(path string) (*generator.Generator, error) {
	if path == "" {
		return generator.New(nil), nil
	}
	pool, err := sentences.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentences from %s: %w", path, err)
	}
	return generator.New(pool), nil
}

func initialWeakSet(ctx context.Context, st *store.Store, cfg model.Config, logger *slog.Logger) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	if !cfg.FocusWeak {
		return weakSet
	}
	aggs, err := st.GetWeakChars(ctx, cfg.WeakWindow, cfg.Name)
	if err != nil {
		logger.Error("failed to load weak chars", "err", err)
		return weakSet
	}
	if len(aggs) == 0 {
		logger.Info("no stats available for weak-char focus yet; using normal generator")
		return weakSet
	}
	return stats.WeakSet(stats.SelectWeakChars(aggs, cfg.WeakTop))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	envCfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	path := envCfg.ConfigPath
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newPassageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passage",
		Short: "Print a generated passage",
		Args:  cobra.NoArgs,
		RunE:  runPassageCmd,
	}
	cmd.Flags().IntVar(&passageLevel, "level", config.DefaultLevel, "passage level (1-20)")
	cmd.Flags().StringVar(&passageSentences, "sentences", "", "sentence file, one sentence per line")
	return cmd
}

func runPassageCmd(cmd *cobra.Command, _ []string) error {
	if passageLevel < generator.MinLevel || passageLevel > generator.MaxLevel {
		return fmt.Errorf("--level must be between %d and %d", generator.MinLevel, generator.MaxLevel)
	}
	gen, err := newGenerator(passageSentences)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), gen.Passage(passageLevel)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// cliLogger logs to stderr, colored only on a terminal.
func cliLogger(levelName string) *slog.Logger {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
