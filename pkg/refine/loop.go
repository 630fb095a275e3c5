package refine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
	"github.com/aretw0/fsmgen/pkg/prompt"
	"github.com/aretw0/fsmgen/pkg/solidity"
)

// Loop runs refinement sessions. A Loop holds no per-session state and can
// serve many sessions concurrently.
type Loop struct {
	dialogue ports.Dialogue
	compiler ports.Compiler
	scanner  ports.Scanner

	budgets        Budgets
	subs           map[string]string
	randomize      bool
	defaultVersion string

	logger   *slog.Logger
	observer Observer
}

// New creates a Loop backed by the given collaborators.
func New(dialogue ports.Dialogue, compiler ports.Compiler, scanner ports.Scanner, opts ...Option) *Loop {
	l := &Loop{
		dialogue:       dialogue,
		compiler:       compiler,
		scanner:        scanner,
		budgets:        DefaultBudgets(),
		defaultVersion: solidity.DefaultVersion,
		logger:         logging.NewNop(),
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Session is the transient state of one refinement session.
type Session struct {
	ID      string
	History []domain.Message

	// Remaining budgets, decremented by each corrective round.
	Remaining Budgets

	FSM string
	// Code is the contract as the model wrote it, before substitutions.
	Code string
}

// Result is what a finished session produced.
type Result struct {
	SessionID   string
	FSM         string
	Code        string
	FSMOutcome  domain.Outcome
	CodeOutcome domain.Outcome

	// Compiled and Report describe the last code candidate.
	Compiled bool
	Report   domain.RiskReport
	Findings []domain.MergedFinding

	// Rounds consumed per category.
	Rounds  Budgets
	History []domain.Message
}

// NewSession starts an empty session with the loop's budgets.
func (l *Loop) NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Remaining: l.budgets,
	}
}

// Run drives a full session for one requirement: FSM generation and
// refinement, then code generation and refinement.
// Only dialogue failures and context cancellation are returned as errors.
func (l *Loop) Run(ctx context.Context, req domain.Requirement) (*Result, error) {
	sess := l.NewSession()
	log := l.logger.With("session", sess.ID)

	version := req.Version
	if version == "" {
		version = l.defaultVersion
	}

	reply, err := l.chat(ctx, sess, prompt.FSMGeneration(req.UserRequirement))
	if err != nil {
		return nil, fmt.Errorf("generate FSM: %w", err)
	}

	fsmOutcome, err := l.RefineFSM(ctx, sess, reply)
	if err != nil {
		return nil, err
	}
	log.Info("FSM refined", "outcome", fsmOutcome, "rounds", l.budgets.FSM-sess.Remaining.FSM)

	reply, err = l.chat(ctx, sess, prompt.CodeGeneration(version))
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	code, err := l.RefineCode(ctx, sess, reply)
	if err != nil {
		return nil, err
	}
	log.Info("code refined",
		"outcome", code.Outcome,
		"compiled", code.Compiled,
		"risk_score", code.Report.RiskScore,
	)

	return &Result{
		SessionID:   sess.ID,
		FSM:         sess.FSM,
		Code:        sess.Code,
		FSMOutcome:  fsmOutcome,
		CodeOutcome: code.Outcome,
		Compiled:    code.Compiled,
		Report:      code.Report,
		Findings:    code.Findings,
		Rounds: Budgets{
			FSM:      l.budgets.FSM - sess.Remaining.FSM,
			Compile:  l.budgets.Compile - sess.Remaining.Compile,
			Security: l.budgets.Security - sess.Remaining.Security,
		},
		History: sess.History,
	}, nil
}

func (l *Loop) chat(ctx context.Context, sess *Session, text string) (string, error) {
	reply, history, err := l.dialogue.Chat(ctx, text, sess.History, l.randomize)
	if err != nil {
		return "", err
	}
	sess.History = history
	return reply, nil
}
