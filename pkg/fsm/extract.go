package fsm

import (
	"regexp"
	"strings"
)

var fencedPayload = regexp.MustCompile("(?s)^```(?:StateMachine/json|json|JSON)?[ \t]*\r?\n?(.*?)```$")

// ExtractPayload strips a surrounding code fence (```StateMachine/json,
// ```json or a bare ```) from a model reply. Replies without a fence are
// returned unchanged apart from surrounding whitespace.
func ExtractPayload(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if m := fencedPayload.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}
