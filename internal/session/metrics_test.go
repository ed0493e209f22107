package session

import (
	"testing"
	"time"
)

func TestMistakesPlusCorrectEqualsTyped(t *testing.T) {
	passage := []rune("Practice makes perfect.")
	inputs := []string{"", "P", "Prectice", "practice makes perfect.", "Practice makes perfect."}
	for _, in := range inputs {
		input := []rune(in)
		if got := Mistakes(passage, input) + CorrectChars(passage, input); got != len(input) {
			t.Fatalf("input %q: mistakes+correct=%d, want %d", in, got, len(input))
		}
	}
}

func TestMistakesIgnoresOverflow(t *testing.T) {
	if got := Mistakes([]rune("ab"), []rune("abcd")); got != 0 {
		t.Fatalf("expected overflow to be unscored, got %d", got)
	}
}

func TestAccuracyAndWPMGuards(t *testing.T) {
	if Accuracy(5, 0) != 0 {
		t.Fatalf("expected 0 accuracy for empty passage")
	}
	if WPM(30, 0) != 0 {
		t.Fatalf("expected 0 wpm for zero elapsed")
	}
	if WPM(0, 10) != 0 {
		t.Fatalf("expected 0 wpm for no correct chars")
	}
	if got := WPM(30, 6); got != 60 {
		t.Fatalf("expected 60 wpm, got %d", got)
	}
	if got := Accuracy(2, 3); got != 67 {
		t.Fatalf("expected 67%% accuracy, got %d", got)
	}
}

func TestElapsedSecondsRoundsToTwoDecimals(t *testing.T) {
	if got := ElapsedSeconds(1234567 * time.Microsecond); got != 1.23 {
		t.Fatalf("expected 1.23, got %v", got)
	}
	if got := ElapsedSeconds(-time.Second); got != 0 {
		t.Fatalf("expected 0 for negative duration, got %v", got)
	}
}

func TestScoreZeroElapsed(t *testing.T) {
	now := time.Unix(0, 0)
	res := Score("Ada", 1, []rune("abc"), []rune("abc"), now, now)
	if res.WPM != 0 || res.CPS != 0 || res.Accuracy != 100 {
		t.Fatalf("unexpected result for zero elapsed: %+v", res)
	}
}

func TestScoreCharStats(t *testing.T) {
	now := time.Unix(0, 0)
	res := Score("Ada", 1, []rune("ab ab"), []rune("ax ab"), now, now.Add(time.Second))
	if len(res.Chars) != 2 {
		t.Fatalf("expected 2 char entries, got %+v", res.Chars)
	}
	a, b := res.Chars[0], res.Chars[1]
	if a.Char != "a" || a.Correct != 2 || a.Incorrect != 0 {
		t.Fatalf("unexpected stats for a: %+v", a)
	}
	if b.Char != "b" || b.Correct != 1 || b.Incorrect != 1 {
		t.Fatalf("unexpected stats for b: %+v", b)
	}
}

func TestClassify(t *testing.T) {
	states := Classify([]rune("abc"), []rune("ax"))
	want := []CharState{CharCorrect, CharIncorrect, CharCurrent}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], states[i])
		}
	}
	done := Classify([]rune("ab"), []rune("ab"))
	if done[0] != CharCorrect || done[1] != CharCorrect {
		t.Fatalf("expected no cursor once complete: %v", done)
	}
}
