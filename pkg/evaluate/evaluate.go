// Package evaluate computes dataset-level quality metrics for generated
// contracts: compilation pass rate and the security metrics derived from
// static analysis.
package evaluate

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/security"
	"github.com/aretw0/fsmgen/pkg/solidity"
)

// CompileFailureScore is the risk score charged for a contract that could not be analyzed.
const CompileFailureScore = 10.0

// emptyCode replaces a record without code so that it still counts as a failure.
const emptyCode = "empty"

// Evaluator runs the toolchain over every record of a dataset.
type Evaluator struct {
	compiler ports.Compiler
	scanner  ports.Scanner

	subs           map[string]string
	removeImports  bool
	defaultVersion string
	workers        int
	logger         *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSubstitutions sets the placeholder replacements applied to each contract.
func WithSubstitutions(subs map[string]string) Option {
	return func(e *Evaluator) {
		e.subs = subs
	}
}

// WithoutImports strips import statements instead of substituting paths.
func WithoutImports() Option {
	return func(e *Evaluator) {
		e.removeImports = true
	}
}

// WithWorkers bounds the number of contracts processed at once.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger configures a logger for the Evaluator.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator. Either collaborator may be nil when only the
// other metric is computed.
func New(compiler ports.Compiler, scanner ports.Scanner, opts ...Option) *Evaluator {
	e := &Evaluator{
		compiler:       compiler,
		scanner:        scanner,
		defaultVersion: solidity.DefaultVersion,
		workers:        runtime.NumCPU(),
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prepare turns the raw code field of a record into compilable source.
func (e *Evaluator) Prepare(raw string) string {
	code := emptyCode
	if raw != "" {
		code = solidity.ExtractCode(raw)
	}
	if e.removeImports {
		return solidity.RemoveImports(code)
	}
	return solidity.Substitute(code, e.subs)
}

// CompileOutcome is the result for one record.
type CompileOutcome struct {
	ID          string `json:"id,omitempty"`
	OK          bool   `json:"ok"`
	Diagnostics string `json:"diagnostics,omitempty"`
}

// CPRResult is the compilation pass rate of a dataset.
type CPRResult struct {
	Total   int              `json:"total"`
	Passed  int              `json:"passed"`
	Rate    float64          `json:"compilation_pass_rate"`
	Results []CompileOutcome `json:"results,omitempty"`
}

// CPR compiles every record and reports the percentage that compiled.
// Toolchain failures count as compile failures.
func (e *Evaluator) CPR(ctx context.Context, records []domain.Record) (CPRResult, error) {
	out := CPRResult{Total: len(records), Results: make([]CompileOutcome, len(records))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rec := range records {
		g.Go(func() error {
			code := e.Prepare(rec.Code)
			res, err := e.compiler.Compile(gctx, code, ports.Target{Version: solidity.DetectVersion(code)})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Warn("compiler failed", "id", rec.ID, "error", err)
				res = ports.CompileResult{Diagnostics: err.Error()}
			}
			out.Results[i] = CompileOutcome{ID: rec.ID, OK: res.OK, Diagnostics: res.Diagnostics}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CPRResult{}, err
	}

	for _, r := range out.Results {
		if r.OK {
			out.Passed++
		}
	}
	out.Rate = percent(out.Passed, out.Total)
	return out, nil
}

// ContractRisk is the security result for one record. Report is nil when
// the contract could not be analyzed.
type ContractRisk struct {
	ID       string                 `json:"id,omitempty"`
	Score    float64                `json:"risk_score"`
	Report   *domain.RiskReport     `json:"report,omitempty"`
	Findings []domain.MergedFinding `json:"findings,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// SecurityResult aggregates risk over a dataset.
type SecurityResult struct {
	Total           int     `json:"total"`
	CompileFailed   int     `json:"compile_failed"`
	VRS             float64 `json:"vulnerability_risk_score"`
	ZRCP            float64 `json:"zero_risk_contract_percentage"`
	HRCP            float64 `json:"high_risk_contract_percentage"`
	TotalHighRisk   int     `json:"total_high_risk_count"`
	TotalMediumRisk int     `json:"total_medium_risk_count"`
	TotalLowRisk    int     `json:"total_low_risk_count"`

	Contracts []ContractRisk `json:"contracts,omitempty"`
}

// Security scans every record. A contract whose analysis fails scores
// CompileFailureScore and is excluded from the ZRCP and HRCP denominators.
func (e *Evaluator) Security(ctx context.Context, records []domain.Record) (SecurityResult, error) {
	out := SecurityResult{Total: len(records), Contracts: make([]ContractRisk, len(records))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rec := range records {
		g.Go(func() error {
			code := e.Prepare(rec.Code)
			findings, err := e.scanner.Scan(gctx, code, ports.Target{Version: solidity.DetectVersion(code)})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Debug("analysis failed", "id", rec.ID, "error", err)
				out.Contracts[i] = ContractRisk{ID: rec.ID, Score: CompileFailureScore, Error: err.Error()}
				return nil
			}
			merged, report := security.Aggregate(findings)
			out.Contracts[i] = ContractRisk{ID: rec.ID, Score: report.RiskScore, Report: &report, Findings: merged}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SecurityResult{}, err
	}

	var sum float64
	var zero, high int
	for _, c := range out.Contracts {
		sum += c.Score
		if c.Report == nil {
			out.CompileFailed++
			continue
		}
		if c.Report.RiskScore == 0 {
			zero++
		}
		if c.Report.High.Count > 0 {
			high++
		}
		out.TotalHighRisk += c.Report.High.Count
		out.TotalMediumRisk += c.Report.Medium.Count
		out.TotalLowRisk += c.Report.Low.Count
	}

	if out.Total > 0 {
		out.VRS = sum / float64(out.Total)
	}
	compiled := out.Total - out.CompileFailed
	out.ZRCP = percent(zero, compiled)
	out.HRCP = percent(high, compiled)
	return out, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
