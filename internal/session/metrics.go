package session

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/typerush/internal/model"
)

// CharState classifies one passage position for rendering.
type CharState int

const (
	// CharPending has not been reached yet.
	CharPending CharState = iota
	// CharCorrect was typed as expected.
	CharCorrect
	// CharIncorrect was typed with a different character.
	CharIncorrect
	// CharCurrent is the next position to type.
	CharCurrent
)

// Result holds the metrics frozen when a session finishes.
type Result struct {
	Name           string
	Level          int
	Passage        string
	Input          string
	StartedAt      time.Time
	EndedAt        time.Time
	Elapsed        time.Duration
	ElapsedSeconds float64
	TotalChars     int
	TypedChars     int
	CorrectChars   int
	Mistakes       int
	Accuracy       int
	WPM            int
	CPS            float64
	Grade          Tier
	Achievement    Achievement
	Celebrate      bool
	Chars          []model.CharStats
}

// CorrectChars counts positions where input matches passage.
func CorrectChars(passage, input []rune) int {
	n := minInt(len(passage), len(input))
	correct := 0
	for i := 0; i < n; i++ {
		if input[i] == passage[i] {
			correct++
		}
	}
	return correct
}

// Mistakes counts typed positions that differ from the passage. Input past the
// end of the passage is not scored.
func Mistakes(passage, input []rune) int {
	n := minInt(len(passage), len(input))
	return n - CorrectChars(passage, input)
}

// ElapsedSeconds converts a duration to seconds rounded to two decimals.
func ElapsedSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return round2(float64(d.Milliseconds()) / 1000)
}

// Accuracy returns correct/total as a rounded percentage, 0 when total is 0.
func Accuracy(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	return nonNegativeInt(float64(correct) / float64(total) * 100)
}

// WPM returns words per minute with five characters per word, 0 when the
// elapsed time is zero or the result is not finite.
func WPM(correct int, seconds float64) int {
	if seconds <= 0 || correct <= 0 {
		return 0
	}
	return nonNegativeInt((float64(correct) / 5) / (seconds / 60))
}

// CPS returns typed characters per second rounded to two decimals.
func CPS(typed int, seconds float64) float64 {
	if seconds <= 0 || typed <= 0 {
		return 0
	}
	v := float64(typed) / seconds
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return round2(v)
}

// Score computes the final Result for a finished attempt.
func Score(name string, level int, passage, input []rune, startedAt, endedAt time.Time) Result {
	if len(input) > len(passage) {
		input = input[:len(passage)]
	}
	elapsed := endedAt.Sub(startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := ElapsedSeconds(elapsed)
	correct := CorrectChars(passage, input)
	accuracy := Accuracy(correct, len(passage))
	wpm := WPM(correct, seconds)
	return Result{
		Name:           name,
		Level:          level,
		Passage:        string(passage),
		Input:          string(input),
		StartedAt:      startedAt,
		EndedAt:        endedAt,
		Elapsed:        elapsed,
		ElapsedSeconds: seconds,
		TotalChars:     len(passage),
		TypedChars:     len(input),
		CorrectChars:   correct,
		Mistakes:       len(input) - correct,
		Accuracy:       accuracy,
		WPM:            wpm,
		CPS:            CPS(len(input), seconds),
		Grade:          GradeFor(accuracy, wpm),
		Achievement:    AchievementFor(wpm),
		Celebrate:      accuracy >= 90 && wpm >= 50,
		Chars:          charStats(passage, input),
	}
}

// Classify returns the state of every passage position for the given input.
func Classify(passage, input []rune) []CharState {
	out := make([]CharState, len(passage))
	for i := range passage {
		switch {
		case i < len(input) && input[i] == passage[i]:
			out[i] = CharCorrect
		case i < len(input):
			out[i] = CharIncorrect
		case i == len(input):
			out[i] = CharCurrent
		default:
			out[i] = CharPending
		}
	}
	return out
}

func charStats(passage, input []rune) []model.CharStats {
	byChar := map[rune]*model.CharStats{}
	n := minInt(len(passage), len(input))
	for i := 0; i < n; i++ {
		expected := passage[i]
		if expected == ' ' {
			continue
		}
		entry, ok := byChar[expected]
		if !ok {
			entry = &model.CharStats{Char: string(expected)}
			byChar[expected] = entry
		}
		if input[i] == expected {
			entry.Correct++
		} else {
			entry.Incorrect++
		}
	}
	out := make([]model.CharStats, 0, len(byChar))
	for _, entry := range byChar {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Char < out[j].Char
	})
	return out
}

func nonNegativeInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return int(math.Round(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
