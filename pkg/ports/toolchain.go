package ports

import (
	"context"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Target selects the compiler release used for one toolchain call.
// It is passed explicitly so that calls for different versions can run in parallel.
type Target struct {
	Version string `json:"version"`
}

// CompileResult is the structured outcome of a compilation.
type CompileResult struct {
	OK bool `json:"ok"`
	// Diagnostics holds the compiler error output when OK is false.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// Compiler compiles Solidity source.
type Compiler interface {
	// Compile returns OK=false with diagnostics for source errors. The error
	// return is reserved for failures of the toolchain itself.
	Compile(ctx context.Context, code string, target Target) (CompileResult, error)
}

// Scanner runs static security analysis on Solidity source.
type Scanner interface {
	// Scan returns the raw findings of the analyzer. A failed analysis is an
	// error and must never be reported as an empty finding list.
	Scan(ctx context.Context, code string, target Target) ([]domain.Finding, error)
}
