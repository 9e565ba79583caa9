package domain

import "testing"

func TestHasAnyKeywordWordBoundaries(t *testing.T) {
	t.Parallel()

	keywords := []string{"ai", "machine learning", "tech"}

	matching := []string{
		"AI chips hit the market",
		"the promise of ai, revisited",
		"Machine Learning models shrink",
		"big tech under scrutiny",
		"qué es la AI",
	}
	for _, text := range matching {
		if !HasAnyKeyword(text, keywords) {
			t.Fatalf("expected a match for %q", text)
		}
	}

	nonMatching := []string{
		"the CEO said quarterly results maintain pace",
		"heavy rain expected tomorrow",
		"technology stocks rally",
		"failure of the mainframe",
		"",
	}
	for _, text := range nonMatching {
		if HasAnyKeyword(text, keywords) {
			t.Fatalf("unexpected match for %q", text)
		}
	}
}

func TestHasAnyKeywordPhrases(t *testing.T) {
	t.Parallel()

	if !HasAnyKeyword("advances in machine learning today", []string{"machine learning"}) {
		t.Fatal("phrase keyword must match across a space")
	}
	if HasAnyKeyword("machine learnings", []string{"machine learning"}) {
		t.Fatal("phrase must not match inside a longer word")
	}
}
