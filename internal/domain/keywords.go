package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HasAnyKeyword reports whether text contains one of the keywords as a whole
// word or phrase, case-insensitively. Matches respect word boundaries, so
// "ai" matches "AI chips" but not "said" or "rain".
func HasAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		if hasKeyword(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func hasKeyword(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], keyword)
		if i < 0 {
			return false
		}
		i += start
		if boundaryBefore(text, i) && boundaryAfter(text, i+len(keyword)) {
			return true
		}
		start = i + len(keyword)
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
