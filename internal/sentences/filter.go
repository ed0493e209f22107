// Package sentences provides sentence filtering helpers.
package sentences

import "unicode"

// Printable reports whether a sentence can be typed as displayed: it must be
// non-empty and contain no control characters, tabs or newlines.
func Printable(sentence string) bool {
	if sentence == "" {
		return false
	}
	for _, r := range sentence {
		if r == '\t' || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
