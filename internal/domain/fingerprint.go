package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the dedup identity of a content item from its title and
// summary. The link deliberately does not participate: the same story reachable
// through two URLs is still one story. The result is stable across runs.
func Fingerprint(title, summary string) string {
	sum := sha256.Sum256([]byte(title + summary))
	return hex.EncodeToString(sum[:])
}
