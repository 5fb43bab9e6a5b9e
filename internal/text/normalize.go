// Package text provides whitespace and punctuation cleanup for inbound
// chat fragments. Streamed deltas arrive with arbitrary spacing; the
// normalizer makes the coalesced message read naturally.
package text

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?;:])`)
	spaceAfterPunct  = regexp.MustCompile(`([.,!?;:])(\S)`)
	spaceAroundDash  = regexp.MustCompile(`\s*-\s*`)
	spaceAroundApos  = regexp.MustCompile(`\s*'\s*`)
	spaceInsideQuote = regexp.MustCompile(`"\s+([^"]*?)\s+"`)
	spaceAfterOpen   = regexp.MustCompile(`\(\s+`)
	spaceBeforeClose = regexp.MustCompile(`\s+\)`)
	noSpaceOpen      = regexp.MustCompile(`(\w)\(`)
	noSpaceClose     = regexp.MustCompile(`\)(\w)`)
)

// Normalize cleans whitespace and punctuation spacing. It is idempotent
// and total: no input fails, and empty input yields the empty string.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = spaceAfterPunct.ReplaceAllString(s, "$1 $2")
	s = spaceAroundDash.ReplaceAllString(s, "-")
	s = spaceAroundApos.ReplaceAllString(s, "'")
	s = spaceInsideQuote.ReplaceAllString(s, `"$1"`)
	s = spaceAfterOpen.ReplaceAllString(s, "(")
	s = spaceBeforeClose.ReplaceAllString(s, ")")
	s = noSpaceOpen.ReplaceAllString(s, "$1 (")
	s = noSpaceClose.ReplaceAllString(s, ") $1")

	return strings.TrimSpace(s)
}
