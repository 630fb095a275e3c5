package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairAndExtract(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Cardinality
	}{
		{
			name:    "strict JSON",
			payload: auctionJSON,
			want:    Cardinality{States: 2, Events: 2, Functions: 1},
		},
		{
			name:    "trailing commas",
			payload: `{"states": [{"name": "A"}, {"name": "B"},], "events": ["e",], "functions": [],}`,
			want:    Cardinality{States: 2, Events: 1, Functions: 0},
		},
		{
			name:    "unquoted keys",
			payload: `{states: [{name: "A"}, {name: "B"}], events: ["e"], functions: [{name: "f", function: "does f"}]}`,
			want:    Cardinality{States: 2, Events: 1, Functions: 1},
		},
		{
			name:    "truncated braces",
			payload: `{"states": [{"name": "A"}, {"name": "B"}, {"name": "C"`,
			want:    Cardinality{States: 3},
		},
		{
			name:    "missing keys count as zero",
			payload: `{"states": [{"name": "A"}]}`,
			want:    Cardinality{States: 1},
		},
		{
			name:    "not an object",
			payload: `[1, 2, 3]`,
			want:    Cardinality{ParseFailed: true},
		},
		{
			name:    "empty reply",
			payload: ``,
			want:    Cardinality{ParseFailed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairAndExtract(tt.payload))
		})
	}
}
