package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const levelOnePassage = "The quick brown fox jumps over"

type manualTimer struct {
	interval  time.Duration
	fire      func()
	cancelled bool
}

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) Every(interval time.Duration, fire func()) Cancel {
	t := &manualTimer{interval: interval, fire: fire}
	s.timers = append(s.timers, t)
	return func() { t.cancelled = true }
}

func (s *manualScheduler) fire(interval time.Duration, n int) {
	for i := 0; i < n; i++ {
		for _, t := range append([]*manualTimer(nil), s.timers...) {
			if !t.cancelled && t.interval == interval {
				t.fire()
			}
		}
	}
}

func (s *manualScheduler) live() int {
	count := 0
	for _, t := range s.timers {
		if !t.cancelled {
			count++
		}
	}
	return count
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingSource struct {
	calls int
}

func (s *countingSource) Passage(level int) string {
	s.calls++
	if level == 1 {
		return levelOnePassage
	}
	return strings.Repeat("ab", level*15)
}

func newTestSession() (*Session, *manualScheduler, *fakeClock, *countingSource) {
	sched := &manualScheduler{}
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	source := &countingSource{}
	s := New(source, sched, clock)
	s.pick = func(int) int { return 0 }
	return s, sched, clock, source
}

func startActive(t *testing.T, s *Session, sched *manualScheduler) {
	t.Helper()
	if err := s.Start("Ada"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.fire(CountdownInterval, CountdownTicks)
	if s.Phase() != Active {
		t.Fatalf("expected active phase, got %s", s.Phase())
	}
}

func TestStartRequiresName(t *testing.T) {
	s, sched, _, _ := newTestSession()
	if err := s.Start("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if s.Phase() != Idle {
		t.Fatalf("expected idle phase, got %s", s.Phase())
	}
	if sched.live() != 0 {
		t.Fatalf("expected no timers, got %d", sched.live())
	}
}

func TestCountdownEntersActiveAfterFiveTicks(t *testing.T) {
	s, sched, clock, _ := newTestSession()
	if err := s.Start(" Ada "); err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.Name() != "Ada" {
		t.Fatalf("expected trimmed name, got %q", s.Name())
	}
	if s.Phase() != Countdown || s.Countdown() != CountdownTicks {
		t.Fatalf("expected countdown %d, got %s/%d", CountdownTicks, s.Phase(), s.Countdown())
	}
	if s.Motivation() == "" {
		t.Fatalf("expected a motivational message")
	}
	sched.fire(CountdownInterval, CountdownTicks-1)
	if s.Phase() != Countdown || s.Countdown() != 1 {
		t.Fatalf("expected countdown 1, got %s/%d", s.Phase(), s.Countdown())
	}
	sched.fire(CountdownInterval, 1)
	if s.Phase() != Active {
		t.Fatalf("expected active phase, got %s", s.Phase())
	}
	if sched.live() != 1 {
		t.Fatalf("expected only the clock timer, got %d live timers", sched.live())
	}
	clock.Advance(1500 * time.Millisecond)
	sched.fire(ClockInterval, 1)
	if s.Elapsed() != 1500*time.Millisecond {
		t.Fatalf("expected elapsed 1.5s, got %v", s.Elapsed())
	}
}

func TestInputTracksMistakes(t *testing.T) {
	s, sched, _, _ := newTestSession()
	startActive(t, s, sched)
	s.Input("Thx quick")
	if s.Mistakes() != 1 {
		t.Fatalf("expected 1 mistake, got %d", s.Mistakes())
	}
	s.Backspace()
	s.TypeRunes([]rune("X"))
	if s.Typed() != "Thx quicX" || s.Mistakes() != 2 {
		t.Fatalf("unexpected input %q with %d mistakes", s.Typed(), s.Mistakes())
	}
	states := s.Classify()
	if states[0] != CharCorrect || states[2] != CharIncorrect || states[9] != CharCurrent || states[10] != CharPending {
		t.Fatalf("unexpected classification: %v", states[:11])
	}
}

func TestInputClampsToPassage(t *testing.T) {
	s, sched, _, _ := newTestSession()
	startActive(t, s, sched)
	s.Input(levelOnePassage + " and more")
	if s.Phase() != Finished {
		t.Fatalf("expected finished phase, got %s", s.Phase())
	}
	res, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.TypedChars != len(levelOnePassage) || res.Mistakes != 0 {
		t.Fatalf("expected clamped input, got typed=%d mistakes=%d", res.TypedChars, res.Mistakes)
	}
}

func TestPerfectLevelOneScenario(t *testing.T) {
	s, sched, clock, _ := newTestSession()
	var finished []Result
	s.OnFinish(func(r Result) { finished = append(finished, r) })
	startActive(t, s, sched)
	clock.Advance(6 * time.Second)
	s.Input(levelOnePassage)

	if s.Phase() != Finished {
		t.Fatalf("expected automatic finish, got %s", s.Phase())
	}
	if len(finished) != 1 {
		t.Fatalf("expected one finish callback, got %d", len(finished))
	}
	res, _ := s.Result()
	if res.Accuracy != 100 || res.CorrectChars != 30 || res.WPM != 60 || res.Mistakes != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.ElapsedSeconds != 6 || res.CPS != 5 {
		t.Fatalf("unexpected timing: %.2fs %.2f cps", res.ElapsedSeconds, res.CPS)
	}
	if res.Grade.Grade != "A+" {
		t.Fatalf("expected A+, got %s", res.Grade.Grade)
	}
	if sched.live() != 0 {
		t.Fatalf("expected all timers cancelled, got %d", sched.live())
	}
}

func TestFinishRequiresInput(t *testing.T) {
	s, sched, _, _ := newTestSession()
	startActive(t, s, sched)
	if err := s.Finish(); !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if s.Phase() != Active {
		t.Fatalf("expected active phase, got %s", s.Phase())
	}
	s.Input("The")
	if err := s.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	res, _ := s.Result()
	if res.TypedChars != 3 || res.CorrectChars != 3 || res.Accuracy != 10 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestFinishOutsideActive(t *testing.T) {
	s, _, _, _ := newTestSession()
	if err := s.Finish(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestRetryResetsAndRegenerates(t *testing.T) {
	s, sched, _, source := newTestSession()
	startActive(t, s, sched)
	s.Input("The")
	if err := s.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	calls := source.calls
	if err := s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if source.calls != calls+1 {
		t.Fatalf("expected passage regeneration")
	}
	if s.Phase() != Countdown || s.Typed() != "" || s.Mistakes() != 0 || s.Level() != 1 {
		t.Fatalf("unexpected state after retry: %s %q %d %d", s.Phase(), s.Typed(), s.Mistakes(), s.Level())
	}
	if len([]rune(s.Passage())) != 30 {
		t.Fatalf("expected same passage length")
	}
	if _, ok := s.Result(); ok {
		t.Fatalf("expected result cleared")
	}
}

func TestStaleCountdownCallbackIgnored(t *testing.T) {
	s, sched, _, _ := newTestSession()
	if err := s.Start("Ada"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stale := sched.timers[0]
	sched.fire(CountdownInterval, 2)
	if err := s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !stale.cancelled {
		t.Fatalf("expected old countdown timer cancelled")
	}
	stale.fire()
	stale.fire()
	if s.Countdown() != CountdownTicks {
		t.Fatalf("stale timer changed countdown to %d", s.Countdown())
	}
}

func TestStaleClockCallbackAfterHome(t *testing.T) {
	s, sched, clock, _ := newTestSession()
	startActive(t, s, sched)
	var clockTimer *manualTimer
	for _, tm := range sched.timers {
		if tm.interval == ClockInterval {
			clockTimer = tm
		}
	}
	s.Home()
	if err := s.Start("Bob"); err != nil {
		t.Fatalf("start: %v", err)
	}
	sched.fire(CountdownInterval, CountdownTicks)
	clock.Advance(time.Second)
	clockTimer.fire()
	if s.Elapsed() != 0 {
		t.Fatalf("stale clock updated new session: %v", s.Elapsed())
	}
}

func TestNextLevel(t *testing.T) {
	s, sched, _, _ := newTestSession()
	if err := s.NextLevel(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
	startActive(t, s, sched)
	s.Input("T")
	if err := s.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := s.NextLevel(); err != nil {
		t.Fatalf("next level: %v", err)
	}
	if s.Level() != 2 || s.Phase() != Countdown || len([]rune(s.Passage())) != 60 {
		t.Fatalf("unexpected state: level=%d phase=%s len=%d", s.Level(), s.Phase(), len(s.Passage()))
	}
}

func TestNextLevelAtMax(t *testing.T) {
	s, sched, _, _ := newTestSession()
	if err := s.SetLevel(20); err != nil {
		t.Fatalf("set level: %v", err)
	}
	startActive(t, s, sched)
	s.Input("a")
	if err := s.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := s.NextLevel(); !errors.Is(err, ErrMaxLevelReached) {
		t.Fatalf("expected ErrMaxLevelReached, got %v", err)
	}
	if s.Level() != 20 || s.Phase() != Finished {
		t.Fatalf("expected unchanged state, got level=%d phase=%s", s.Level(), s.Phase())
	}
}

func TestSetLevelValidation(t *testing.T) {
	s, sched, _, _ := newTestSession()
	for _, level := range []int{0, 21} {
		if err := s.SetLevel(level); !errors.Is(err, ErrInvalidLevel) {
			t.Fatalf("level %d: expected ErrInvalidLevel, got %v", level, err)
		}
	}
	startActive(t, s, sched)
	if err := s.SetLevel(3); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestHomeResets(t *testing.T) {
	s, sched, _, _ := newTestSession()
	if err := s.SetLevel(7); err != nil {
		t.Fatalf("set level: %v", err)
	}
	startActive(t, s, sched)
	s.Input("ab")
	s.Home()
	if s.Phase() != Idle || s.Level() != 1 || s.Name() != "" || s.Typed() != "" {
		t.Fatalf("unexpected state after home: %s %d %q %q", s.Phase(), s.Level(), s.Name(), s.Typed())
	}
	if sched.live() != 0 {
		t.Fatalf("expected timers cancelled, got %d", sched.live())
	}
	if err := s.Retry(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase from idle retry, got %v", err)
	}
}

func TestInputIgnoredOutsideActive(t *testing.T) {
	s, _, _, _ := newTestSession()
	if err := s.Start("Ada"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Input("The")
	if s.Typed() != "" {
		t.Fatalf("expected input ignored during countdown")
	}
}
