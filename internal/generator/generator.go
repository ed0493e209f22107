// Package generator builds fixed-length typing passages.
package generator

import (
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/typerush/internal/sentences"
)

const (
	// MinLevel is the lowest difficulty level.
	MinLevel = 1
	// MaxLevel is the highest difficulty level.
	MaxLevel = 20
	// CharsPerLevel is the passage length added by each level.
	CharsPerLevel = 30
)

// Generator produces passages from a sentence pool.
type Generator struct {
	rnd    *rand.Rand
	pool   []string
	weak   map[rune]struct{}
	factor float64
}

// New returns a Generator seeded with the current time. An empty pool falls
// back to the built-in sentences.
func New(pool []string) *Generator {
	return NewWithSource(pool, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator that draws randomness from src. Blank
// entries are dropped; a pool left empty falls back to the built-in sentences.
func NewWithSource(pool []string, src rand.Source) *Generator {
	kept := make([]string, 0, len(pool))
	for _, s := range pool {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		kept = sentences.Builtin()
	}
	return &Generator{
		rnd:  rand.New(src),
		pool: kept,
	}
}

// ClampLevel forces level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// TargetLength returns the passage length in characters for a level.
func TargetLength(level int) int {
	return ClampLevel(level) * CharsPerLevel
}

// SetFocus biases the starting sentence toward sentences containing weak
// characters. An empty set or a zero factor restores uniform selection.
func (g *Generator) SetFocus(weak map[rune]struct{}, factor float64) {
	g.weak = weak
	g.factor = factor
}

// Passage returns a passage of exactly TargetLength(level) characters.
func (g *Generator) Passage(level int) string {
	target := TargetLength(level)
	idx := g.startIndex()
	var text []rune

	for len(text) < target {
		next := []rune(g.pool[idx])
		if len(text)+len(next)+1 <= target {
			text = appendPart(text, next)
			idx = (idx + 1) % len(g.pool)
			continue
		}
		if fit := g.firstFit(len(text), target); fit >= 0 {
			text = appendPart(text, []rune(g.pool[fit]))
			continue
		}
		for _, word := range strings.Fields(g.pool[idx]) {
			w := []rune(word)
			if len(text)+len(w)+1 > target {
				break
			}
			text = appendPart(text, w)
		}
		break
	}

	// Word fill can stop short of the target; pad with pool text and cut.
	for len(text) < target {
		text = appendPart(text, []rune(g.pool[idx]))
		idx = (idx + 1) % len(g.pool)
	}
	return string(text[:target])
}

func (g *Generator) firstFit(current, target int) int {
	for i, s := range g.pool {
		if current+len([]rune(s))+1 <= target {
			return i
		}
	}
	return -1
}

func (g *Generator) startIndex() int {
	if len(g.weak) == 0 || g.factor <= 0 {
		return g.rnd.Intn(len(g.pool))
	}
	weights := make([]float64, len(g.pool))
	total := 0.0
	for i, s := range g.pool {
		weakCount := 0
		for _, r := range s {
			if _, ok := g.weak[r]; ok {
				weakCount++
			}
		}
		w := 1.0 + float64(weakCount)*g.factor
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(g.pool) - 1
}

func appendPart(text, part []rune) []rune {
	if len(text) > 0 {
		text = append(text, ' ')
	}
	return append(text, part...)
}
