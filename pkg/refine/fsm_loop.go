package refine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/fsm"
	"github.com/aretw0/fsmgen/pkg/prompt"
)

// RefineFSM checks the model reply and, while the FSM budget allows, asks the
// model to fix every defect found. The accepted (or last) FSM payload is
// stored in sess.FSM.
//
// A document is accepted when it is valid JSON as written, passes the
// structural checks, every declared state is reachable from the initial
// state and its graph has a cycle.
func (l *Loop) RefineFSM(ctx context.Context, sess *Session, reply string) (domain.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sess.FSM = fsm.ExtractPayload(reply)
		issues := inspectFSM(reply)
		l.observer.Round(PhaseFSM, issues.Empty())

		if issues.Empty() {
			l.observer.Finished(PhaseFSM, domain.OutcomeAccepted)
			return domain.OutcomeAccepted, nil
		}
		if sess.Remaining.FSM <= 0 {
			l.logger.Warn("FSM budget exhausted", "session", sess.ID)
			l.observer.Finished(PhaseFSM, domain.OutcomeExhausted)
			return domain.OutcomeExhausted, nil
		}

		var err error
		reply, err = l.chat(ctx, sess, prompt.FSMFeedback(issues))
		if err != nil {
			return "", fmt.Errorf("FSM feedback round: %w", err)
		}
		sess.Remaining.FSM--
	}
}

func inspectFSM(reply string) prompt.FSMIssues {
	doc, err := fsm.ParseStrict(reply)
	if err != nil {
		var derr *fsm.DecodeError
		if errors.As(err, &derr) {
			return prompt.FSMIssues{ParseErrors: derr.Violations()}
		}
		return prompt.FSMIssues{ParseErrors: []string{err.Error()}}
	}

	var issues prompt.FSMIssues
	if ok, msg := fsm.Validate(doc); !ok {
		issues.Structural = msg
	}
	analysis := fsm.Analyze(doc)
	issues.Unreachable = analysis.Unreachable
	issues.NoCycle = !analysis.HasCycle
	return issues
}
