package compose

import "strings"

// Validator is the final gate before a draft reaches the publish target.
type Validator struct {
	MaxLength int
	MinLength int
}

// NewValidator builds a validator with the configured floors and ceiling.
// Zero values fall back to the standard 280/50 profile.
func NewValidator(maxLength, minLength int) Validator {
	if maxLength == 0 {
		maxLength = DefaultConfig().MaxLength
	}
	if minLength == 0 {
		minLength = DefaultConfig().MinLength
	}
	return Validator{MaxLength: maxLength, MinLength: minLength}
}

// Validate reports whether a body is publishable. Length is counted in runes,
// and whitespace-only bodies never pass.
func (v Validator) Validate(body string) bool {
	if strings.TrimSpace(body) == "" {
		return false
	}
	n := runeLen(body)
	return n >= v.MinLength && n <= v.MaxLength
}
