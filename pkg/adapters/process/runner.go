package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os/exec"
	"slices"
	"time"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Runner executes allow-listed toolchain binaries.
// Only commands registered by name can be started.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
	timeout  time.Duration
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string // leading args, before the per-call args
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ToolConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.registry[name] = RegisteredProcess{
				Command: tool.Command,
				Args:    tool.Args,
				Env:     tool.Env,
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds every execution. Zero disables the bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list unless a configured
// entry with the same name already exists.
func (r *Runner) Register(name string, command string, args ...string) {
	if _, ok := r.registry[name]; ok {
		return
	}
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Invocation is one call of a registered tool.
type Invocation struct {
	Tool  string
	Args  []string
	Env   map[string]string // added to the inherited environment
	Stdin io.Reader
	Dir   string // overrides the runner base dir
}

// Output is what a finished process produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the invocation. A non-zero exit status is reported through
// Output.ExitCode, not as an error. Errors are reserved for unknown tools,
// binaries that cannot be started (wrapping domain.ErrToolchainUnavailable)
// and context expiry.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Output, error) {
	proc, ok := r.registry[inv.Tool]
	if !ok {
		return Output{}, fmt.Errorf("process tool not registered: %s", inv.Tool)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append(slices.Clone(proc.Args), inv.Args...)
	cmd := exec.CommandContext(ctx, proc.Command, args...)
	cmd.Dir = r.baseDir
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	cmd.Stdin = inv.Stdin

	// Per-call parameters (e.g. SOLC_VERSION) travel as environment variables.
	env := maps.Clone(proc.Env)
	if env == nil {
		env = make(map[string]string)
	}
	maps.Copy(env, inv.Env)
	cmd.Env = cmd.Environ()
	for _, k := range slices.Sorted(maps.Keys(env)) {
		cmd.Env = append(cmd.Env, k+"="+env[k])
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s: %w", inv.Tool, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("%w: %s: %v", domain.ErrToolchainUnavailable, inv.Tool, err)
	}
	return out, nil
}

// Has reports whether a tool is registered.
func (r *Runner) Has(name string) bool {
	_, ok := r.registry[name]
	return ok
}
