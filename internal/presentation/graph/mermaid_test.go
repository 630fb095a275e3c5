package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/fsmgen/internal/presentation/graph"
	"github.com/aretw0/fsmgen/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	doc := &domain.Document{
		InitialState: "Created",
		States: []domain.State{
			{Name: "Created", Transitions: []domain.Transition{{Trigger: "Start", Target: "Bidding-Open"}}},
			{Name: "Bidding-Open", Transitions: []domain.Transition{
				{Trigger: "Bid", Target: "Bidding-Open", Condition: `msg.value > "highest"`},
				{Trigger: "End", Target: "Ended"},
			}},
			{Name: "Ended"},
			{Name: "Orphan"},
		},
	}

	tests := []struct {
		name     string
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes",
			contains: []string{
				"graph TD\n",
				`Created(("Created"))`,
				`Bidding_Open["Bidding-Open"]`,
				`Ended(["Ended"])`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				`Created -- "Start" --> Bidding_Open`,
				`Bidding_Open -- "Bid [msg.value > 'highest']" --> Bidding_Open`,
				`Bidding_Open -- "End" --> Ended`,
			},
		},
		{
			name:     "NoOverlay",
			excludes: []string{"classDef"},
		},
		{
			name:    "Unreachable",
			overlay: &graph.GraphOverlay{Unreachable: []string{"Orphan", "Orphan"}},
			contains: []string{
				"classDef unreachable",
				"class Orphan unreachable;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(doc, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("expected output not to contain %q", unwanted)
				}
			}
			if n := strings.Count(got, "class Orphan unreachable;"); n > 1 {
				t.Errorf("unreachable class applied %d times", n)
			}
		})
	}
}

func TestGenerateMermaid_Nil(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("unexpected output for nil document: %q", got)
	}
}
