package fsm

import "strings"

// DefaultPlaceholders are names copied from the generation template. A
// payload that still contains one of them was not filled in by the model.
var DefaultPlaceholders = []string{"State1", "actionA", "EventA", "variable1"}

// Filter is the offline acceptance rule for FSM payloads in a dataset.
type Filter struct {
	MinStates    int      // states must be strictly greater
	MaxFunctions int      // functions must be strictly lower
	Placeholders []string // template names that must not appear
}

// DefaultFilter keeps FSMs with more than two states, at least one event
// and between one and nine functions.
func DefaultFilter() Filter {
	return Filter{
		MinStates:    2,
		MaxFunctions: 10,
		Placeholders: DefaultPlaceholders,
	}
}

// Accept reports whether the raw model reply passes the filter.
func (f Filter) Accept(reply string) bool {
	payload := ExtractPayload(reply)
	c := RepairAndExtract(payload)
	if c.ParseFailed {
		return false
	}
	if c.States <= f.MinStates || c.Events == 0 {
		return false
	}
	if c.Functions == 0 || c.Functions >= f.MaxFunctions {
		return false
	}
	for _, p := range f.Placeholders {
		if strings.Contains(reply, p) {
			return false
		}
	}
	return true
}
