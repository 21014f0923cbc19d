// Package textutil provides byte-bounded text helpers for preview building.
package textutil

import "unicode/utf8"

// TruncateBytes returns s unchanged when its byte length is at most max.
// Otherwise it returns the longest prefix of at most max bytes that ends on
// a rune boundary, so the result never contains a partial character.
func TruncateBytes(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	end := max
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end]
}
