// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerush/internal/generator"
	"github.com/verte-zerg/typerush/internal/logging"
	"github.com/verte-zerg/typerush/internal/model"
	"github.com/verte-zerg/typerush/internal/session"
	statsPkg "github.com/verte-zerg/typerush/internal/stats"
	"github.com/verte-zerg/typerush/internal/store"
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	config  model.Config
	store   *store.Store
	gen     *generator.Generator
	session *session.Session
	sched   *tickerScheduler
	logger  *slog.Logger

	nameInput textinput.Model
	status    string

	weakSet           map[rune]struct{}
	weakNoticePrinted bool

	width  int
	height int

	last    model.SessionRecord
	hasLast bool
	totals  store.Totals
	best    int
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	countdownStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0")).Padding(1, 4).Border(lipgloss.RoundedBorder())
	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6E6E6E")).Padding(1, 3)
	gradeStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#52C41A"))
)

// NewModel constructs a typing TUI model. A nil logger discards records.
func NewModel(cfg model.Config, st *store.Store, gen *generator.Generator, weakSet map[rune]struct{}, logger *slog.Logger) *Model {
	return newModel(cfg, st, gen, weakSet, logger, nil, nil)
}

// newModel wires the session to sched, or to the ticker scheduler when sched is nil.
func newModel(cfg model.Config, st *store.Store, gen *generator.Generator, weakSet map[rune]struct{}, logger *slog.Logger, sched session.Scheduler, clock session.Clock) *Model {
	if logger == nil {
		logger = logging.Discard()
	}
	ticker := newTickerScheduler()
	if sched == nil {
		sched = ticker
	}
	input := textinput.New()
	input.Placeholder = "Your name"
	input.CharLimit = 32
	input.Width = 24
	input.SetValue(cfg.Name)
	input.Focus()

	m := &Model{
		config:    cfg,
		store:     st,
		gen:       gen,
		sched:     ticker,
		logger:    logger,
		nameInput: input,
		weakSet:   weakSet,
	}
	m.session = session.New(gen, sched, clock)
	if err := m.session.SetLevel(generator.ClampLevel(cfg.Level)); err != nil {
		logger.Warn("invalid starting level", "level", cfg.Level, "err", err)
	}
	m.session.OnFinish(m.finishSession)
	m.applyFocus()
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.sched.wait())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerMsg:
		msg.fire()
		return m, m.sched.wait()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.session.Close()
			return m, tea.Quit
		}
		switch m.session.Phase() {
		case session.Idle:
			return m.updateIdle(msg)
		case session.Countdown:
			if msg.Type == tea.KeyEsc {
				return m, m.goHome()
			}
			return m, nil
		case session.Active:
			return m, m.updateActive(msg)
		case session.Finished:
			return m.updateFinished(msg)
		}
		return m, nil
	default:
		if m.session.Phase() == session.Idle {
			var cmd tea.Cmd
			m.nameInput, cmd = m.nameInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.status = ""
		if err := m.session.Start(m.nameInput.Value()); err != nil {
			m.status = startError(err)
			return m, nil
		}
		m.nameInput.Blur()
		return m, nil
	case tea.KeyDown:
		m.shiftLevel(-1)
		return m, nil
	case tea.KeyUp:
		m.shiftLevel(1)
		return m, nil
	case tea.KeyEsc:
		m.session.Close()
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateActive(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.goHome()
	case tea.KeyCtrlF, tea.KeyTab:
		if err := m.session.Finish(); err != nil {
			m.status = finishError(err)
		}
	case tea.KeyBackspace, tea.KeyDelete:
		m.session.Backspace()
	case tea.KeySpace:
		m.status = ""
		m.session.TypeRunes([]rune{' '})
	case tea.KeyRunes:
		if msg.Paste {
			m.status = "Pasting is disabled. Type the passage yourself."
			return nil
		}
		m.status = ""
		m.session.TypeRunes(msg.Runes)
	}
	return nil
}

func (m *Model) updateFinished(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "r":
		if err := m.session.Retry(); err != nil {
			m.status = err.Error()
		}
	case "n":
		if err := m.session.NextLevel(); err != nil {
			m.status = nextLevelError(err)
		}
	case "h", "esc":
		return m, m.goHome()
	case "q":
		m.session.Close()
		return m, tea.Quit
	}
	return m, nil
}

// goHome returns the name input's blink command.
func (m *Model) goHome() tea.Cmd {
	m.session.Home()
	m.status = ""
	return m.nameInput.Focus()
}

func (m *Model) shiftLevel(delta int) {
	next := m.session.Level() + delta
	if next < generator.MinLevel || next > generator.MaxLevel {
		return
	}
	if err := m.session.SetLevel(next); err != nil {
		m.status = err.Error()
	}
}

func startError(err error) string {
	if errors.Is(err, session.ErrEmptyName) {
		return "Please enter your name to start."
	}
	return err.Error()
}

func finishError(err error) string {
	if errors.Is(err, session.ErrNoInput) {
		return "Type something before finishing."
	}
	return err.Error()
}

func nextLevelError(err error) string {
	if errors.Is(err, session.ErrMaxLevelReached) {
		return fmt.Sprintf("You already reached level %d.", generator.MaxLevel)
	}
	return err.Error()
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.session.Phase() {
	case session.Idle:
		content = m.viewIdle()
	case session.Countdown:
		content = m.viewCountdown()
	case session.Active:
		content = m.viewActive()
	case session.Finished:
		content = m.viewFinished()
	}
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", statusStyle.Render(m.status))
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewIdle() string {
	level := m.session.Level()
	picker := fmt.Sprintf("▼  Level %d  ▲", level)
	lines := []string{
		titleStyle.Render("typerush"),
		"",
		m.nameInput.View(),
		"",
		picker,
		footerStyle.Render(fmt.Sprintf("%d characters", generator.TargetLength(level))),
		"",
		footerStyle.Render("enter start · ↑/↓ level · esc quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewCountdown() string {
	lines := []string{
		fmt.Sprintf("Hi %s! %s", m.session.Name(), m.session.Motivation()),
		"",
		countdownStyle.Render(fmt.Sprintf("%d", m.session.Countdown())),
		"",
		"Get ready to type!",
		footerStyle.Render(fmt.Sprintf("Level %d · esc home", m.session.Level())),
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewActive() string {
	passage := []rune(m.session.Passage())
	styled := buildStyledRunes(passage, m.session.Classify())
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 60
	}
	wrapped := wrapStyledRunes(styled, contentWidth)
	text := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)

	typed, total := m.session.Progress()
	header := titleStyle.Render(fmt.Sprintf("Level %d", m.session.Level()))
	bar := fmt.Sprintf("Characters %d/%d · Mistakes %d · Accuracy %d%% · %s",
		typed, total, m.session.Mistakes(), m.session.LiveAccuracy(), formatClock(m.session.Elapsed()))
	hint := footerStyle.Render("ctrl+f finish · esc home")
	return lipgloss.JoinVertical(lipgloss.Center, header, bar, "", text, "", hint)
}

func (m *Model) viewFinished() string {
	res, ok := m.session.Result()
	if !ok {
		return ""
	}
	title := fmt.Sprintf("%s %s", res.Achievement.Icon, res.Achievement.Message)
	if res.Celebrate {
		title = "★ " + title + " ★"
	}
	rows := []string{
		gradeStyle.Render(fmt.Sprintf("%s · %s", res.Grade.Grade, res.Grade.Label)),
		"",
		fmt.Sprintf("WPM        %d", res.WPM),
		fmt.Sprintf("Accuracy   %d%%", res.Accuracy),
		fmt.Sprintf("Mistakes   %d", res.Mistakes),
		fmt.Sprintf("Characters %d/%d", res.TypedChars, res.TotalChars),
		fmt.Sprintf("Time       %.2fs", res.ElapsedSeconds),
		fmt.Sprintf("Speed      %.2f chars/s", res.CPS),
	}
	keys := "r retry · h home · q quit"
	if res.Level < generator.MaxLevel {
		keys = "r retry · n next level · h home · q quit"
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(title),
		footerStyle.Render(fmt.Sprintf("%s · level %d", res.Name, res.Level)),
		cardStyle.Render(strings.Join(rows, "\n")),
		footerStyle.Render(keys),
	)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (m *Model) loadFooterStats() {
	ctx := context.Background()
	name := m.config.Name
	last, ok, err := m.store.LastSession(ctx, name)
	if err != nil {
		m.logger.Error("failed to load last result", "err", err)
		return
	}
	m.last, m.hasLast = last, ok
	if m.totals, err = m.store.Totals(ctx, name); err != nil {
		m.logger.Error("failed to load result totals", "err", err)
		return
	}
	if m.best, err = m.store.BestWPM(ctx, name); err != nil {
		m.logger.Error("failed to load best wpm", "err", err)
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.session.Phase() == session.Active {
		typed, total := m.session.Progress()
		progress := 0
		if total > 0 {
			progress = int(float64(typed) / float64(total) * 100)
		}
		segments = append(segments, fmt.Sprintf("Progress %d%%", progress))
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d WPM · %d%%", m.last.WPM, m.last.Accuracy))
	}
	if m.totals.Sessions > 0 {
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%% · best %d", m.totals.AvgWPM, m.totals.AvgAccuracy, m.best))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) finishSession(res session.Result) {
	rec := model.SessionRecord{
		Name:         res.Name,
		Level:        res.Level,
		StartedAt:    res.StartedAt,
		EndedAt:      res.EndedAt,
		DurationMs:   res.Elapsed.Milliseconds(),
		TotalChars:   res.TotalChars,
		TypedChars:   res.TypedChars,
		CorrectChars: res.CorrectChars,
		Mistakes:     res.Mistakes,
		Accuracy:     res.Accuracy,
		WPM:          res.WPM,
		CPS:          res.CPS,
		Grade:        res.Grade.Grade,
	}
	ctx := context.Background()
	saved, err := m.store.InsertSession(ctx, rec, res.Chars)
	if err != nil {
		m.logger.Error("failed to save result", "err", err)
	} else {
		m.logger.Info("saved result", "uuid", saved.UUID, "name", saved.Name, "level", saved.Level, "wpm", saved.WPM, "accuracy", saved.Accuracy)
	}
	m.config.Name = res.Name
	m.loadFooterStats()

	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	ctx := context.Background()
	aggs, err := m.store.GetWeakChars(ctx, m.config.WeakWindow, m.config.Name)
	if err != nil {
		m.logger.Error("failed to load weak chars", "err", err)
		return
	}
	if len(aggs) == 0 {
		if !m.weakNoticePrinted {
			m.logger.Info("no stats available for weak-char focus yet; using normal generator")
			m.weakNoticePrinted = true
		}
		m.weakSet = map[rune]struct{}{}
	} else {
		m.weakSet = statsPkg.WeakSet(statsPkg.SelectWeakChars(aggs, m.config.WeakTop))
	}
	m.applyFocus()
}

func (m *Model) applyFocus() {
	if !m.config.FocusWeak {
		m.gen.SetFocus(nil, 0)
		return
	}
	m.gen.SetFocus(m.weakSet, m.config.WeakFactor)
}
