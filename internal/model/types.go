// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Name          string
	Level         int `validate:"min=1,max=20"`
	SentencesPath string
	FocusWeak     bool
	WeakTop       int     `validate:"min=1"`
	WeakFactor    float64 `validate:"gte=0"`
	WeakWindow    int     `validate:"min=1"`
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Name   string
	Level  int `validate:"min=0,max=20"`
	Since  *time.Time
	Last   int `validate:"min=0"`
	Window int `validate:"min=1"`
}

// SessionRecord captures a stored typing result.
type SessionRecord struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Level        int       `json:"level"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMs   int64     `json:"duration_ms"`
	TotalChars   int       `json:"total_chars"`
	TypedChars   int       `json:"typed_chars"`
	CorrectChars int       `json:"correct_chars"`
	Mistakes     int       `json:"mistakes"`
	Accuracy     int       `json:"accuracy"`
	WPM          int       `json:"wpm"`
	CPS          float64   `json:"cps"`
	Grade        string    `json:"grade"`
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char      string
	Correct   int
	Incorrect int
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char      string
	Correct   int
	Incorrect int
}

// Accuracy returns the correct share of attempts in [0,1].
func (a CharAggregate) Accuracy() float64 {
	total := a.Correct + a.Incorrect
	if total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(total)
}
