package domain

// State is a named node of the FSM. A state without transitions is terminal.
type State struct {
	Name        string       `json:"name" mapstructure:"name" validate:"required"`
	Transitions []Transition `json:"transitions" mapstructure:"transitions" validate:"dive"`
}

// Terminal reports whether the state has no outgoing transitions.
func (s State) Terminal() bool {
	return len(s.Transitions) == 0
}
