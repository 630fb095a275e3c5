package fsmgen

import _ "embed"

// Version is the release of the fsmgen toolkit, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
