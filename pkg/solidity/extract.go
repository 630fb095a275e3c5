package solidity

import (
	"regexp"
	"slices"
	"strings"
)

var (
	solidityFence = regexp.MustCompile("(?s)```(?:solidity|Solidity)(.*?)```")
	importLine    = regexp.MustCompile(`(?m)^\s*import\s+[^;]*;`)
	stderrTail    = regexp.MustCompile(`(?s)> stderr:.*`)
)

// ExtractCode returns the body of the first ```solidity block of a model
// reply, or the reply itself when no such block exists.
func ExtractCode(reply string) string {
	if m := solidityFence.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return reply
}

// RemoveImports deletes every import statement from source.
func RemoveImports(source string) string {
	return importLine.ReplaceAllString(source, "")
}

// Substitute applies every placeholder -> replacement pair to source.
// Pairs are applied in key order so the result is deterministic.
func Substitute(source string, subs map[string]string) string {
	if len(subs) == 0 {
		return source
	}
	keys := make([]string, 0, len(subs))
	for k := range subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		source = strings.ReplaceAll(source, k, subs[k])
	}
	return source
}

// TrimDiagnostics keeps only the "> stderr:" tail of a compiler error dump
// when one is present. Otherwise the diagnostics are returned trimmed.
func TrimDiagnostics(diag string) string {
	if m := stderrTail.FindString(diag); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(diag)
}

// WordCountWithin reports whether source has strictly more than min and
// strictly fewer than max whitespace-separated words.
func WordCountWithin(source string, min, max int) bool {
	n := len(strings.Fields(source))
	return n > min && n < max
}
