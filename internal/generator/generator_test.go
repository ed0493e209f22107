package generator

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/typerush/internal/sentences"
)

func TestPassageLengthAllLevels(t *testing.T) {
	gen := NewWithSource(nil, rand.NewSource(42))
	for level := MinLevel; level <= MaxLevel; level++ {
		for i := 0; i < 20; i++ {
			passage := gen.Passage(level)
			if got := utf8.RuneCountInString(passage); got != level*CharsPerLevel {
				t.Fatalf("level %d: expected %d chars, got %d (%q)", level, level*CharsPerLevel, got, passage)
			}
		}
	}
}

func TestPassageClampsLevel(t *testing.T) {
	gen := NewWithSource(nil, rand.NewSource(1))
	if got := utf8.RuneCountInString(gen.Passage(0)); got != CharsPerLevel {
		t.Fatalf("expected level 0 to clamp to %d chars, got %d", CharsPerLevel, got)
	}
	if got := utf8.RuneCountInString(gen.Passage(99)); got != MaxLevel*CharsPerLevel {
		t.Fatalf("expected level 99 to clamp to %d chars, got %d", MaxLevel*CharsPerLevel, got)
	}
}

func TestPassageWordFillForShortTarget(t *testing.T) {
	gen := NewWithSource([]string{"The quick brown fox jumps over the lazy dog."}, rand.NewSource(1))
	got := gen.Passage(1)
	if got != "The quick brown fox jumps over" {
		t.Fatalf("unexpected passage: %q", got)
	}
}

func TestPassagePadsAndTruncates(t *testing.T) {
	gen := NewWithSource([]string{"aaaa bbbb."}, rand.NewSource(1))
	got := gen.Passage(1)
	want := "aaaa bbbb. aaaa bbbb. aaaa aaa"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPassageUsesWholeSentences(t *testing.T) {
	pool := []string{"One two three.", "Four five six."}
	gen := NewWithSource(pool, rand.NewSource(7))
	passage := gen.Passage(2)
	if !strings.HasPrefix(passage, "One two three.") && !strings.HasPrefix(passage, "Four five six.") {
		t.Fatalf("expected passage to start with a pool sentence: %q", passage)
	}
}

func TestPassageFocusPrefersWeakSentences(t *testing.T) {
	pool := []string{"xxxx xxxx xxxx.", "zzzz zzzz zzzz."}
	gen := NewWithSource(pool, rand.NewSource(3))
	gen.SetFocus(map[rune]struct{}{'z': {}}, 1e6)
	for i := 0; i < 20; i++ {
		if passage := gen.Passage(1); !strings.HasPrefix(passage, "zzzz") {
			t.Fatalf("expected weak sentence first, got %q", passage)
		}
	}
}

func TestTargetLength(t *testing.T) {
	if TargetLength(1) != 30 || TargetLength(20) != 600 {
		t.Fatalf("unexpected target lengths: %d, %d", TargetLength(1), TargetLength(20))
	}
}

func TestBlankPoolEntriesAreDropped(t *testing.T) {
	gen := NewWithSource([]string{"", "   "}, rand.NewSource(1))
	if len(gen.pool) != len(sentences.Builtin()) {
		t.Fatalf("expected fallback to built-in pool, got %d entries", len(gen.pool))
	}
	if got := utf8.RuneCountInString(gen.Passage(1)); got != CharsPerLevel {
		t.Fatalf("expected %d chars, got %d", CharsPerLevel, got)
	}

	gen = NewWithSource([]string{"", "Short words fill the line.", ""}, rand.NewSource(3))
	if len(gen.pool) != 1 {
		t.Fatalf("expected blank entries to be dropped, got %q", gen.pool)
	}
	for level := MinLevel; level <= 3; level++ {
		if got := utf8.RuneCountInString(gen.Passage(level)); got != level*CharsPerLevel {
			t.Fatalf("level %d: expected %d chars, got %d", level, level*CharsPerLevel, got)
		}
	}
}
