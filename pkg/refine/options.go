package refine

import (
	"log/slog"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Budgets bounds the number of corrective rounds per failure category.
type Budgets struct {
	FSM      int `json:"fsm" yaml:"fsm" mapstructure:"fsm" validate:"gte=0"`
	Compile  int `json:"compile" yaml:"compile" mapstructure:"compile" validate:"gte=0"`
	Security int `json:"security" yaml:"security" mapstructure:"security" validate:"gte=0"`
}

// DefaultBudgets grants one compile and one security round, and twice as
// many FSM rounds.
func DefaultBudgets() Budgets {
	return Budgets{FSM: 2, Compile: 1, Security: 1}
}

// Phase names a category of refinement round.
type Phase string

const (
	PhaseFSM      Phase = "fsm"
	PhaseCompile  Phase = "compile"
	PhaseSecurity Phase = "security"

	// PhaseCode names the whole code sub-loop in Finished.
	PhaseCode Phase = "code"
)

// Observer is notified of loop progress. Implementations must be safe for
// concurrent use because sessions can run in parallel.
type Observer interface {
	// Round is called after each check; resolved tells whether it passed.
	Round(phase Phase, resolved bool)
	// Finished is called once per sub-loop with its outcome.
	Finished(loop Phase, outcome domain.Outcome)
}

type nopObserver struct{}

func (nopObserver) Round(Phase, bool)              {}
func (nopObserver) Finished(Phase, domain.Outcome) {}

// Option configures the Loop.
type Option func(*Loop)

// WithBudgets overrides the default budgets.
func WithBudgets(b Budgets) Option {
	return func(l *Loop) {
		l.budgets = b
	}
}

// WithSubstitutions sets placeholder rewrites (e.g. "@openzeppelin" to a
// local path) applied to every code candidate before compiling or scanning it.
func WithSubstitutions(subs map[string]string) Option {
	return func(l *Loop) {
		l.subs = subs
	}
}

// WithRandomSampling asks the dialogue to draw sampling parameters per call.
func WithRandomSampling(enabled bool) Option {
	return func(l *Loop) {
		l.randomize = enabled
	}
}

// WithDefaultVersion sets the compiler version requested from the model when
// a requirement does not carry one.
func WithDefaultVersion(v string) Option {
	return func(l *Loop) {
		if v != "" {
			l.defaultVersion = v
		}
	}
}

// WithLogger configures a logger for the Loop.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithObserver registers a progress observer (e.g. metrics).
func WithObserver(o Observer) Option {
	return func(l *Loop) {
		if o != nil {
			l.observer = o
		}
	}
}
