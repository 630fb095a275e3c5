package fsm

import "encoding/json"

// Cardinality summarizes the size of an FSM payload.
type Cardinality struct {
	ParseFailed bool `json:"parse_failed"`
	States      int  `json:"states"`
	Events      int  `json:"events"`
	Functions   int  `json:"functions"`
}

// RepairAndExtract decodes payload as strict JSON, falling back to a lenient
// repair pass (trailing commas, comments, unquoted keys, truncated braces).
// It only counts states, events and functions; no semantic check is made.
// When both passes fail ParseFailed is set and every count is zero.
func RepairAndExtract(payload string) Cardinality {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		raw, err = repairObject(payload)
		if err != nil {
			return Cardinality{ParseFailed: true}
		}
	}

	return Cardinality{
		States:    count(raw["states"]),
		Events:    count(raw["events"]),
		Functions: count(raw["functions"]),
	}
}

func count(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		return 0
	}
}
