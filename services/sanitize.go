package services

import (
	"regexp"
	"strings"
)

// Generated questions are bounded to this many runes including the trailing
// question mark.
const maxQuestionRunes = 45

// A truncation cut at the last space is only taken when it keeps at least
// this many runes; otherwise the text is hard cut at the limit.
const minTruncateCut = 20

// sanitizeRule is one named prefix transform. Rules are best-effort: when the
// pattern does not match the text passes through unchanged.
type sanitizeRule struct {
	name string
	re   *regexp.Regexp
}

func (r sanitizeRule) apply(s string) string {
	return strings.TrimSpace(r.re.ReplaceAllString(s, ""))
}

// Prefix rules, applied in this order and repeated until nothing changes, so
// stacked prefixes strip regardless of the order they appear in. The
// generation prompt asks for a bare question, but models still emit bullets,
// numbering, "Q:" tags, level markers, and category labels often enough that
// every shape seen in the wild gets its own rule.
var sanitizeRules = []sanitizeRule{
	{name: "bullet", re: regexp.MustCompile(`^[-*•·]+\s*`)},
	{name: "numbering", re: regexp.MustCompile(`^\d+\s*[.):]\s*`)},
	{name: "q-tag", re: regexp.MustCompile(`^[Qq]\s*[:\-.]\s*`)},
	{name: "level", re: regexp.MustCompile(`^\(?\s*(?:[Ll]evel|레벨|난이도)\s*\d+\s*\)?\s*[:.\-]?\s*`)},
	{name: "parenthetical", re: regexp.MustCompile(`^\([^)]*\)\s*`)},
	{name: "category-tag", re: regexp.MustCompile(`^[\[【][^\]】]*[\]】]\s*`)},
}

// quotePairs are the wrapping characters stripped one layer deep when the
// whole line is enclosed in a matching pair.
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"‘", "’"},
	{"'", "'"},
	{"`", "`"},
	{"「", "」"},
	{"『", "』"},
}

// SanitizeQuestion normalizes untrusted generator output into a single clean
// question of at most 45 runes ending in exactly one question mark. Empty or
// whitespace-only input yields an empty string, which callers must treat as a
// generation failure rather than a valid question. The function is idempotent.
func SanitizeQuestion(raw string) string {
	s := firstLine(raw)
	// Rules and quote stripping run to a fixed point: a prefix can hide
	// another prefix or a quoted question behind it, in any order. Every
	// pass only removes characters, so the loop terminates.
	for {
		prev := s
		s = stripQuoteWrap(s)
		for _, rule := range sanitizeRules {
			s = rule.apply(s)
		}
		if s == prev {
			break
		}
	}
	s = truncateAtSpace(s, maxQuestionRunes)
	s = strings.TrimRight(s, ".?! \t")
	if s == "" {
		return ""
	}
	// Reserve one rune for the appended question mark.
	if runeLen(s) >= maxQuestionRunes {
		s = cutRunes(s, maxQuestionRunes-1)
		s = strings.TrimRight(s, ".?! \t")
	}
	if s == "" {
		return ""
	}
	return s + "?"
}

func firstLine(raw string) string {
	line := raw
	if idx := strings.IndexAny(raw, "\r\n"); idx >= 0 {
		line = raw[:idx]
	}
	return strings.TrimSpace(line)
}

// stripQuoteWrap removes exactly one layer of a matching quote pair wrapping
// the whole line.
func stripQuoteWrap(s string) string {
	for _, pair := range quotePairs {
		open, shut := pair[0], pair[1]
		if len(s) >= len(open)+len(shut) &&
			strings.HasPrefix(s, open) && strings.HasSuffix(s, shut) {
			return strings.TrimSpace(s[len(open) : len(s)-len(shut)])
		}
	}
	return s
}

// truncateAtSpace bounds s to limit runes, preferring a cut at the last space
// when that keeps a reasonable amount of text.
func truncateAtSpace(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	hard := cutRunes(s, limit)
	if idx := strings.LastIndex(hard, " "); idx >= 0 {
		cut := strings.TrimSpace(hard[:idx])
		if runeLen(cut) >= minTruncateCut {
			return cut
		}
	}
	return strings.TrimSpace(hard)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func cutRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
