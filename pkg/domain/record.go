package domain

// Outcome tells whether a refinement sub-loop met its acceptance predicate
// or returned its last artifact after exhausting the budget.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeExhausted Outcome = "exhausted"
)

// Requirement is one line of an input dataset.
type Requirement struct {
	ID              string `json:"id,omitempty"`
	UserRequirement string `json:"user_requirement"`
	Version         string `json:"version,omitempty"`

	// FSM and Code are present in datasets produced by earlier runs and are
	// consumed by the offline filter and the evaluators.
	FSM  string `json:"FSM,omitempty"`
	Code string `json:"code,omitempty"`
}

// Record is the line appended to the output dataset for each refinement session.
type Record struct {
	ID              string  `json:"id,omitempty"`
	UserRequirement string  `json:"user_requirement"`
	FSM             string  `json:"FSM"`
	Code            string  `json:"code"`
	Model           string  `json:"model"`
	FSMOutcome      Outcome `json:"fsm_outcome,omitempty"`
	CodeOutcome     Outcome `json:"code_outcome,omitempty"`
}

// Accepted reports whether both sub-loops met their acceptance predicates.
func (r Record) Accepted() bool {
	return r.FSMOutcome == OutcomeAccepted && r.CodeOutcome == OutcomeAccepted
}
