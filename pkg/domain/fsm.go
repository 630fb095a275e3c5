package domain

// Document is the FSM intermediate representation used to scaffold contract generation.
type Document struct {
	ContractName string `json:"contractName" mapstructure:"contractName"`

	// Inherited lists the parent contracts named by the model.
	Inherited []string `json:"inherited contracts,omitempty" mapstructure:"inherited contracts"`

	InitialState string         `json:"initialState" mapstructure:"initialState" validate:"required"`
	States       []State        `json:"states" mapstructure:"states" validate:"required,min=1,dive"`
	Variables    []Variable     `json:"variables" mapstructure:"variables" validate:"dive"`
	Functions    []FunctionSpec `json:"functions" mapstructure:"functions" validate:"dive"`
	Events       []string       `json:"events" mapstructure:"events"`
}

// Variable is a contract storage variable declared by the FSM.
type Variable struct {
	Name         string `json:"name" mapstructure:"name" validate:"required"`
	Type         string `json:"type" mapstructure:"type"`
	InitialValue any    `json:"initialValue,omitempty" mapstructure:"initialValue"`
}

// FunctionSpec describes a contract function in natural language.
type FunctionSpec struct {
	Name     string `json:"name" mapstructure:"name" validate:"required"`
	Function string `json:"function" mapstructure:"function"`
}

// StateNames returns the declared state names in declaration order.
func (d *Document) StateNames() []string {
	names := make([]string, 0, len(d.States))
	for _, s := range d.States {
		names = append(names, s.Name)
	}
	return names
}

// StateSet returns the declared state names as a set.
func (d *Document) StateSet() map[string]bool {
	set := make(map[string]bool, len(d.States))
	for _, s := range d.States {
		set[s.Name] = true
	}
	return set
}

// EventSet returns the declared events as a set.
func (d *Document) EventSet() map[string]bool {
	set := make(map[string]bool, len(d.Events))
	for _, e := range d.Events {
		set[e] = true
	}
	return set
}
