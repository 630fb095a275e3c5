package refine

import (
	"context"
	"fmt"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/prompt"
	"github.com/aretw0/fsmgen/pkg/security"
	"github.com/aretw0/fsmgen/pkg/solidity"
)

// CodeResult describes the last code candidate of a session.
type CodeResult struct {
	Outcome  domain.Outcome
	Compiled bool
	Findings []domain.MergedFinding
	Report   domain.RiskReport
}

// RefineCode compiles and scans the code in the model reply, asking for
// fixes while the compile and security budgets allow.
//
// Phase A compiles the candidate; a failure with compile budget left triggers
// a corrective round. Phase B runs once the candidate compiles or the compile
// budget is spent; findings (or a failed analysis) with security budget left
// trigger a corrective round. Every corrective round restarts from phase A.
// Toolchain errors are logged and count as unresolved rounds.
func (l *Loop) RefineCode(ctx context.Context, sess *Session, reply string) (CodeResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return CodeResult{}, err
		}

		sess.Code = solidity.ExtractCode(reply)
		code := solidity.Substitute(sess.Code, l.subs)
		target := ports.Target{Version: solidity.DetectVersion(code)}

		compiled, diagnostics := l.compile(ctx, sess, code, target)
		l.observer.Round(PhaseCompile, compiled)

		if !compiled && sess.Remaining.Compile > 0 {
			next, err := l.chat(ctx, sess, prompt.CompileFeedback(diagnostics))
			if err != nil {
				return CodeResult{}, fmt.Errorf("compile feedback round: %w", err)
			}
			sess.Remaining.Compile--
			reply = next
			continue
		}

		findings, scanErr := l.scanner.Scan(ctx, code, target)
		if scanErr != nil {
			l.logger.Error("security analysis failed", "session", sess.ID, "version", target.Version, "error", scanErr)
		}
		merged, report := security.Aggregate(findings)
		clean := scanErr == nil && len(merged) == 0
		l.observer.Round(PhaseSecurity, clean)

		if !clean && sess.Remaining.Security > 0 {
			feedback := prompt.SecurityFeedback(merged)
			if scanErr != nil {
				feedback = prompt.AnalysisFailureFeedback(scanErr.Error())
			}
			next, err := l.chat(ctx, sess, feedback)
			if err != nil {
				return CodeResult{}, fmt.Errorf("security feedback round: %w", err)
			}
			sess.Remaining.Security--
			reply = next
			continue
		}

		outcome := domain.OutcomeExhausted
		if compiled && clean {
			outcome = domain.OutcomeAccepted
		}
		l.observer.Finished(PhaseCode, outcome)
		return CodeResult{
			Outcome:  outcome,
			Compiled: compiled,
			Findings: merged,
			Report:   report,
		}, nil
	}
}

// compile returns whether code compiled and, if not, the diagnostics to feed back.
func (l *Loop) compile(ctx context.Context, sess *Session, code string, target ports.Target) (bool, string) {
	res, err := l.compiler.Compile(ctx, code, target)
	if err != nil {
		l.logger.Error("compiler failed", "session", sess.ID, "version", target.Version, "error", err)
		return false, err.Error()
	}
	if !res.OK {
		return false, solidity.TrimDiagnostics(res.Diagnostics)
	}
	return true, ""
}
