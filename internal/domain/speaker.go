package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeSpeaker derives the canonical speaker identifier from a free-text
// name: lower-cased, accent-folded, surrounding punctuation stripped. The
// detector's name extraction and the store's key derivation both go through
// this function, so two spellings of the same name always address the same log.
func NormalizeSpeaker(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Trim(s, ".,;:!?¡¿\"'")
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	return s
}
