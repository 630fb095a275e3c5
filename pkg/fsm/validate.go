package fsm

import (
	"fmt"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// PassedMessage is returned by Validate when every check succeeds.
const PassedMessage = "FSM validation passed"

// Validate runs the structural checks in order and stops at the first failure:
// the initial state must be declared, every transition target must be declared,
// and every trigger must be a declared event. The message names the offending element.
func Validate(doc *domain.Document) (bool, string) {
	states := doc.StateSet()

	if !states[doc.InitialState] {
		return false, fmt.Sprintf("Initial state %s does not exist in the state list.", doc.InitialState)
	}

	for _, s := range doc.States {
		for _, t := range s.Transitions {
			if !states[t.Target] {
				return false, fmt.Sprintf("The target %s of state %s is invalid.", t.Target, s.Name)
			}
		}
	}

	events := doc.EventSet()
	for _, s := range doc.States {
		for _, t := range s.Transitions {
			if !events[t.Trigger] {
				return false, fmt.Sprintf("The trigger %s of state %s is not defined in the event list.", t.Trigger, s.Name)
			}
		}
	}

	return true, PassedMessage
}
