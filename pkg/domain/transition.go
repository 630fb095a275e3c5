package domain

// Transition is a directed edge from its owning state to Target, gated by Trigger.
type Transition struct {
	Trigger string `json:"trigger" mapstructure:"trigger"`
	Target  string `json:"target" mapstructure:"target"`
	Action  string `json:"action" mapstructure:"action"`

	// Condition is an optional guard expression, kept verbatim.
	Condition string `json:"condition,omitempty" mapstructure:"condition"`
}
