// Package session implements the typing test state machine and scoring.
package session

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/typerush/internal/generator"
)

const (
	// CountdownTicks is the number of countdown ticks before typing starts.
	CountdownTicks = 5
	// CountdownInterval is the countdown tick period.
	CountdownInterval = time.Second
	// ClockInterval is the refresh period of the live elapsed clock.
	ClockInterval = 100 * time.Millisecond
)

var (
	// ErrEmptyName is returned by Start when the user name is blank.
	ErrEmptyName = errors.New("name is required to start the test")
	// ErrNoInput is returned by Finish when nothing has been typed.
	ErrNoInput = errors.New("type something before finishing")
	// ErrMaxLevelReached is returned by NextLevel at the last level.
	ErrMaxLevelReached = errors.New("already at the highest level")
	// ErrInvalidLevel is returned by SetLevel for levels outside the range.
	ErrInvalidLevel = errors.New("level must be between 1 and 20")
	// ErrWrongPhase is returned when an operation is not valid in the current phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
)

// Phase is the lifecycle stage of a session.
type Phase int

const (
	// Idle waits for a name and a start action.
	Idle Phase = iota
	// Countdown runs before typing begins.
	Countdown
	// Active accepts input and runs the clock.
	Active
	// Finished holds frozen results.
	Finished
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Countdown:
		return "countdown"
	case Active:
		return "active"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// PassageSource produces passages for a level.
type PassageSource interface {
	Passage(level int) string
}

// Session drives one user through countdown, typing and results. It is not
// safe for concurrent use; all calls and timer callbacks must happen on one
// goroutine.
type Session struct {
	source PassageSource
	sched  Scheduler
	clock  Clock
	pick   func(n int) int

	phase      Phase
	name       string
	level      int
	passage    []rune
	input      []rune
	mistakes   int
	countdown  int
	motivation string
	startedAt  time.Time
	endedAt    time.Time
	elapsed    time.Duration
	result     Result

	gen             uint64
	cancelCountdown Cancel
	cancelClock     Cancel
	onFinish        func(Result)
}

// New returns an idle session at level 1. A nil clock uses the wall clock.
func New(source PassageSource, sched Scheduler, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Session{
		source: source,
		sched:  sched,
		clock:  clock,
		pick:   rand.Intn,
		level:  generator.MinLevel,
	}
}

// OnFinish registers a callback invoked once each time the session enters Finished.
func (s *Session) OnFinish(fn func(Result)) {
	s.onFinish = fn
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Name returns the user name of the running session.
func (s *Session) Name() string { return s.name }

// Level returns the current level.
func (s *Session) Level() int { return s.level }

// Passage returns the passage to type.
func (s *Session) Passage() string { return string(s.passage) }

// Typed returns the text typed so far.
func (s *Session) Typed() string { return string(s.input) }

// Mistakes returns the live mistake count.
func (s *Session) Mistakes() int { return s.mistakes }

// Countdown returns the remaining countdown ticks.
func (s *Session) Countdown() int { return s.countdown }

// Motivation returns the message picked for the current attempt.
func (s *Session) Motivation() string { return s.motivation }

// Elapsed returns the live elapsed time, refreshed by the clock timer while
// Active and frozen once Finished.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// Result returns the frozen result. ok is false unless the session is Finished.
func (s *Session) Result() (Result, bool) {
	if s.phase != Finished {
		return Result{}, false
	}
	return s.result, true
}

// Progress returns typed and total character counts.
func (s *Session) Progress() (typed, total int) {
	return len(s.input), len(s.passage)
}

// LiveAccuracy returns correct characters over passage length as a percentage.
func (s *Session) LiveAccuracy() int {
	return Accuracy(CorrectChars(s.passage, s.input), len(s.passage))
}

// Classify returns the per-position state of the passage.
func (s *Session) Classify() []CharState {
	if s.phase != Active && s.phase != Finished {
		return Classify(s.passage, nil)
	}
	return Classify(s.passage, s.input)
}

// SetLevel selects the starting level while Idle.
func (s *Session) SetLevel(level int) error {
	if s.phase != Idle {
		return ErrWrongPhase
	}
	if level < generator.MinLevel || level > generator.MaxLevel {
		return ErrInvalidLevel
	}
	s.level = level
	return nil
}

// Start begins the countdown for the named user.
func (s *Session) Start(name string) error {
	if s.phase != Idle {
		return ErrWrongPhase
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.name = name
	s.enterCountdown()
	return nil
}

// Tick advances the countdown by one step. It is driven by the countdown
// timer and is a no-op outside Countdown.
func (s *Session) Tick() {
	if s.phase != Countdown {
		return
	}
	s.countdown--
	if s.countdown <= 0 {
		s.enterActive()
	}
}

// Input replaces the typed text. Text longer than the passage is clamped.
// Reaching the passage length finishes the session.
func (s *Session) Input(text string) {
	if s.phase != Active {
		return
	}
	runes := []rune(text)
	if len(runes) > len(s.passage) {
		runes = runes[:len(s.passage)]
	}
	s.input = runes
	s.mistakes = Mistakes(s.passage, s.input)
	if len(s.input) >= len(s.passage) {
		s.finish()
	}
}

// TypeRunes appends typed runes to the input.
func (s *Session) TypeRunes(runes []rune) {
	if s.phase != Active {
		return
	}
	next := make([]rune, 0, len(s.input)+len(runes))
	next = append(next, s.input...)
	next = append(next, runes...)
	s.Input(string(next))
}

// Backspace removes the last typed rune.
func (s *Session) Backspace() {
	if s.phase != Active || len(s.input) == 0 {
		return
	}
	s.Input(string(s.input[:len(s.input)-1]))
}

// Finish ends an active session early.
func (s *Session) Finish() error {
	if s.phase != Active {
		return ErrWrongPhase
	}
	if len(s.input) == 0 {
		return ErrNoInput
	}
	s.finish()
	return nil
}

// Retry restarts the current level with a new passage.
func (s *Session) Retry() error {
	if s.phase == Idle {
		return ErrWrongPhase
	}
	s.enterCountdown()
	return nil
}

// NextLevel advances to the next level after a finished attempt.
func (s *Session) NextLevel() error {
	if s.phase != Finished {
		return ErrWrongPhase
	}
	if s.level >= generator.MaxLevel {
		return ErrMaxLevelReached
	}
	s.level++
	s.enterCountdown()
	return nil
}

// Home abandons the current attempt and returns to Idle at level 1.
func (s *Session) Home() {
	s.stopTimers()
	s.phase = Idle
	s.name = ""
	s.level = generator.MinLevel
	s.resetAttempt()
	s.passage = nil
}

// Close cancels pending timers.
func (s *Session) Close() {
	s.stopTimers()
}

func (s *Session) enterCountdown() {
	s.stopTimers()
	s.resetAttempt()
	s.passage = []rune(s.source.Passage(s.level))
	s.countdown = CountdownTicks
	s.motivation = motivations[s.pick(len(motivations))]
	s.phase = Countdown
	s.cancelCountdown = s.arm(CountdownInterval, s.Tick)
}

func (s *Session) enterActive() {
	s.stopTimers()
	s.input = nil
	s.mistakes = 0
	s.startedAt = s.clock.Now()
	s.elapsed = 0
	s.phase = Active
	s.cancelClock = s.arm(ClockInterval, s.refreshElapsed)
}

func (s *Session) finish() {
	s.endedAt = s.clock.Now()
	s.stopTimers()
	s.result = Score(s.name, s.level, s.passage, s.input, s.startedAt, s.endedAt)
	s.elapsed = s.result.Elapsed
	s.phase = Finished
	if s.onFinish != nil {
		s.onFinish(s.result)
	}
}

func (s *Session) refreshElapsed() {
	if s.phase != Active {
		return
	}
	s.elapsed = s.clock.Now().Sub(s.startedAt)
}

func (s *Session) resetAttempt() {
	s.input = nil
	s.mistakes = 0
	s.countdown = 0
	s.motivation = ""
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.elapsed = 0
	s.result = Result{}
}

// arm starts a timer whose callback is dropped once the session moves on,
// even if the scheduler delivers it after cancellation.
func (s *Session) arm(interval time.Duration, fn func()) Cancel {
	gen := s.gen
	return s.sched.Every(interval, func() {
		if s.gen != gen {
			return
		}
		fn()
	})
}

func (s *Session) stopTimers() {
	if s.cancelCountdown != nil {
		s.cancelCountdown()
		s.cancelCountdown = nil
	}
	if s.cancelClock != nil {
		s.cancelClock()
		s.cancelClock = nil
	}
	s.gen++
}
