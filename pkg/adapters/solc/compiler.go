// Package solc compiles Solidity through the solc binary managed by solc-select.
package solc

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/fsmgen/pkg/adapters/process"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/toolchain"
)

// Tool names looked up in the process registry.
const (
	ToolSolc       = "solc"
	ToolSolcSelect = "solc-select"
)

// VersionEnv is read by the solc-select shims to pick the compiler release
// for a single invocation.
const VersionEnv = "SOLC_VERSION"

// Compiler implements ports.Compiler.
type Compiler struct {
	runner    *process.Runner
	installer *toolchain.Installer
	basePath  string
}

var _ ports.Compiler = (*Compiler)(nil)

// Option configures the Compiler.
type Option func(*Compiler)

// WithInstaller installs missing compiler versions before compiling.
func WithInstaller(i *toolchain.Installer) Option {
	return func(c *Compiler) {
		c.installer = i
	}
}

// WithBasePath sets the directory relative imports are resolved against.
func WithBasePath(dir string) Option {
	return func(c *Compiler) {
		c.basePath = dir
	}
}

// New creates a Compiler. The runner gets default "solc" and "solc-select"
// registrations unless it already has them.
func New(runner *process.Runner, opts ...Option) *Compiler {
	runner.Register(ToolSolc, "solc")
	runner.Register(ToolSolcSelect, "solc-select")

	c := &Compiler{runner: runner}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Install returns a toolchain.InstallFunc that runs "solc-select install".
func Install(runner *process.Runner) toolchain.InstallFunc {
	return func(ctx context.Context, version string) error {
		out, err := runner.Run(ctx, process.Invocation{
			Tool: ToolSolcSelect,
			Args: []string{"install", version},
		})
		if err != nil {
			return err
		}
		if out.ExitCode != 0 {
			return fmt.Errorf("solc-select install %s exited with %d: %s", version, out.ExitCode, strings.TrimSpace(out.Stderr))
		}
		return nil
	}
}

// Compile feeds code to solc on stdin. Compilation errors come back as a
// failed CompileResult; only toolchain problems are returned as errors.
func (c *Compiler) Compile(ctx context.Context, code string, target ports.Target) (ports.CompileResult, error) {
	if c.installer != nil {
		if err := c.installer.Ensure(ctx, target.Version); err != nil {
			return ports.CompileResult{}, err
		}
	}

	args := []string{"--bin"}
	if c.basePath != "" {
		args = append(args, "--base-path", c.basePath, "--allow-paths", c.basePath)
	}
	args = append(args, "-")

	out, err := c.runner.Run(ctx, process.Invocation{
		Tool:  ToolSolc,
		Args:  args,
		Env:   map[string]string{VersionEnv: target.Version},
		Stdin: strings.NewReader(code),
		Dir:   c.basePath,
	})
	if err != nil {
		return ports.CompileResult{}, fmt.Errorf("run solc %s: %w", target.Version, err)
	}

	if out.ExitCode != 0 {
		diag := strings.TrimSpace(out.Stderr)
		if diag == "" {
			diag = strings.TrimSpace(out.Stdout)
		}
		return ports.CompileResult{OK: false, Diagnostics: diag}, nil
	}
	return ports.CompileResult{OK: true}, nil
}
