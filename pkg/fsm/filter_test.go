package fsm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Accept(t *testing.T) {
	good := `{
  "initialState": "Open",
  "states": [{"name": "Open"}, {"name": "Voting"}, {"name": "Closed"}],
  "functions": [{"name": "vote", "function": "Casts a vote."}],
  "events": ["VoteCast"]
}`

	f := DefaultFilter()

	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"accepted", good, true},
		{"fenced", "```json\n" + good + "\n```", true},
		{"too few states", strings.Replace(good, `, {"name": "Closed"}`, "", 1), false},
		{"no events", strings.Replace(good, `["VoteCast"]`, `[]`, 1), false},
		{"no functions", strings.Replace(good, `[{"name": "vote", "function": "Casts a vote."}]`, `[]`, 1), false},
		{"template placeholder", strings.Replace(good, "Voting", "State1", 1), false},
		{"unparseable", "[None]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Accept(tt.reply))
		})
	}
}

func TestFilter_TooManyFunctions(t *testing.T) {
	var fns []string
	for i := 0; i < 10; i++ {
		fns = append(fns, `{"name": "f", "function": "x"}`)
	}
	reply := `{"initialState": "A", "states": [{"name": "A"}, {"name": "B"}, {"name": "C"}], "events": ["e"], "functions": [` +
		strings.Join(fns, ",") + `]}`

	assert.False(t, DefaultFilter().Accept(reply))
}
