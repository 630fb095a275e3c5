// Package slither runs the Slither static analyzer and maps its JSON report
// to domain findings.
package slither

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/fsmgen/pkg/adapters/process"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/toolchain"
)

// ToolSlither is the tool name looked up in the process registry.
const ToolSlither = "slither"

// ErrAnalysisFailed is returned when Slither reports an unsuccessful run,
// typically because the contract does not compile.
var ErrAnalysisFailed = errors.New("slither analysis failed")

// Scanner implements ports.Scanner.
type Scanner struct {
	runner    *process.Runner
	installer *toolchain.Installer
	workDir   string
}

var _ ports.Scanner = (*Scanner)(nil)

// Option configures the Scanner.
type Option func(*Scanner)

// WithInstaller installs missing compiler versions before scanning.
func WithInstaller(i *toolchain.Installer) Option {
	return func(s *Scanner) {
		s.installer = i
	}
}

// WithWorkDir sets where the temporary contract files are written; relative
// imports in the contract resolve against it.
func WithWorkDir(dir string) Option {
	return func(s *Scanner) {
		s.workDir = dir
	}
}

// New creates a Scanner. The runner gets a default "slither" registration
// unless it already has one.
func New(runner *process.Runner, opts ...Option) *Scanner {
	runner.Register(ToolSlither, "slither")
	s := &Scanner{runner: runner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan writes code to a temporary file and analyzes it with every detector.
// Slither exits non-zero whenever it finds something, so the JSON report on
// stdout is authoritative, not the exit code.
func (s *Scanner) Scan(ctx context.Context, code string, target ports.Target) ([]domain.Finding, error) {
	if s.installer != nil {
		if err := s.installer.Ensure(ctx, target.Version); err != nil {
			return nil, err
		}
	}

	f, err := os.CreateTemp(s.workDir, "fsmgen-*.sol")
	if err != nil {
		return nil, fmt.Errorf("create contract file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return nil, fmt.Errorf("write contract file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write contract file: %w", err)
	}

	out, err := s.runner.Run(ctx, process.Invocation{
		Tool: ToolSlither,
		Args: []string{path, "--json", "-"},
		Env:  map[string]string{"SOLC_VERSION": target.Version},
		Dir:  s.workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("run slither %s: %w", target.Version, err)
	}

	findings, err := ParseReport([]byte(out.Stdout))
	if err != nil {
		if stderr := strings.TrimSpace(out.Stderr); stderr != "" {
			return nil, fmt.Errorf("%w: %s", err, stderr)
		}
		return nil, err
	}
	return findings, nil
}

type report struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
	Results struct {
		Detectors []detector `json:"detectors"`
	} `json:"results"`
}

type detector struct {
	Check       string    `json:"check"`
	Impact      string    `json:"impact"`
	Confidence  string    `json:"confidence"`
	Description string    `json:"description"`
	Elements    []element `json:"elements"`
}

type element struct {
	SourceMapping struct {
		Lines []int `json:"lines"`
	} `json:"source_mapping"`
}

// ParseReport maps a "slither --json -" report to findings. Only the first
// element of each detector result locates the finding. Informational and
// optimization results are kept; filtering is left to the aggregator.
func ParseReport(data []byte) ([]domain.Finding, error) {
	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: unreadable report: %v", ErrAnalysisFailed, err)
	}
	if !r.Success {
		msg := "unknown error"
		if r.Error != nil && *r.Error != "" {
			msg = *r.Error
		}
		return nil, fmt.Errorf("%w: %s", ErrAnalysisFailed, strings.TrimSpace(msg))
	}

	findings := make([]domain.Finding, 0, len(r.Results.Detectors))
	for _, d := range r.Results.Detectors {
		if len(d.Elements) == 0 {
			continue
		}
		f := domain.Finding{
			Check:       d.Check,
			Impact:      domain.Level(d.Impact),
			Confidence:  domain.Level(d.Confidence),
			Description: strings.TrimSpace(d.Description),
		}
		if lines := d.Elements[0].SourceMapping.Lines; len(lines) > 0 {
			f.StartLine = lines[0]
			f.EndLine = lines[len(lines)-1]
		}
		findings = append(findings, f)
	}
	return findings, nil
}
