// Package solidity holds the text helpers used around the Solidity toolchain:
// compiler version selection from pragmas, code extraction from model replies
// and diagnostic trimming.
package solidity

import (
	"regexp"

	"golang.org/x/mod/semver"
)

const (
	// DefaultVersion is used when the source has no usable pragma.
	DefaultVersion = "0.8.0"
	// MinimumVersion is the oldest compiler the toolchain can install.
	MinimumVersion = "0.4.11"
	// FloorVersion replaces any pragma older than MinimumVersion.
	FloorVersion = "0.4.12"
)

var pragmaPattern = regexp.MustCompile(`pragma\s+solidity\s*(=|>=|<=|\^)?\s*(\d+\.\d+\.\d+);`)

// DetectVersion returns the compiler version to use for source.
//
// The first pragma pinned with "=" wins, otherwise the first pragma found.
// Versions older than MinimumVersion are raised to FloorVersion and sources
// without a pragma get DefaultVersion.
func DetectVersion(source string) string {
	matches := pragmaPattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return DefaultVersion
	}

	chosen := matches[0][2]
	for _, m := range matches {
		if m[1] == "=" {
			chosen = m[2]
			break
		}
	}

	if Compare(chosen, MinimumVersion) < 0 {
		return FloorVersion
	}
	return chosen
}

// Compare compares two dotted versions like "0.8.19". Strings that are not
// valid versions sort before valid ones.
func Compare(a, b string) int {
	return semver.Compare("v"+a, "v"+b)
}

// ValidVersion reports whether v is a well-formed X.Y.Z compiler version.
func ValidVersion(v string) bool {
	return semver.IsValid("v"+v) && semver.Canonical("v"+v) == "v"+v
}
