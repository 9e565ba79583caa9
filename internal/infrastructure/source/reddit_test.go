package source

import "testing"

func TestRelevantMatchesWholeWordsOnly(t *testing.T) {
	t.Parallel()

	matching := []string{
		"New AI model tops the benchmarks",
		"Why technology adoption stalls",
		"Open source funding round announced",
		"Quantum chips reach a milestone",
	}
	for _, title := range matching {
		if !relevant(title) {
			t.Fatalf("expected %q to be relevant", title)
		}
	}

	nonMatching := []string{
		"He said the rain delayed the game",
		"Maintain your garden in summer",
		"Best hiking trails this weekend",
	}
	for _, title := range nonMatching {
		if relevant(title) {
			t.Fatalf("expected %q to be irrelevant", title)
		}
	}
}
