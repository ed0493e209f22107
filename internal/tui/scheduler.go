package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerush/internal/session"
)

// timerMsg carries a scheduled callback to the update loop.
type timerMsg struct {
	fire func()
}

// tickerScheduler runs session timers on time.Ticker goroutines and hands the
// callbacks to Bubble Tea, so they execute on the update goroutine.
type tickerScheduler struct {
	ch chan timerMsg
}

func newTickerScheduler() *tickerScheduler {
	return &tickerScheduler{ch: make(chan timerMsg, 16)}
}

// Every implements session.Scheduler.
func (s *tickerScheduler) Every(interval time.Duration, fire func()) session.Cancel {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				select {
				case s.ch <- timerMsg{fire: fire}:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// wait blocks until the next timer fires. The update loop re-arms it after
// every timerMsg.
func (s *tickerScheduler) wait() tea.Cmd {
	return func() tea.Msg {
		return <-s.ch
	}
}
