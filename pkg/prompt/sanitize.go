package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxRequirementSize bounds a requirement in bytes.
const MaxRequirementSize = 16 << 10

var (
	ErrRequirementTooLarge = errors.New("requirement exceeds maximum allowed size")
	ErrRequirementEmpty    = errors.New("requirement is empty")
	ErrInvalidUTF8         = errors.New("requirement contains invalid UTF-8 sequences")
)

// SanitizeRequirement prepares a dataset requirement for a prompt. Oversized
// or non UTF-8 input is rejected rather than truncated. Control characters
// other than newline, tab and carriage return are removed so they can reach
// neither the model nor the logs.
func SanitizeRequirement(input string) (string, error) {
	if len(input) > MaxRequirementSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrRequirementTooLarge, len(input), MaxRequirementSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) >= 0 {
		var b strings.Builder
		b.Grow(len(input))
		for _, r := range input {
			if !unsafeControl(r) {
				b.WriteRune(r)
			}
		}
		input = b.String()
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrRequirementEmpty
	}
	return input, nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
