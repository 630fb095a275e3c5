package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/fsmgen/pkg/domain"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name            string
		doc             *domain.Document
		wantUnreachable []string
		wantCycle       bool
	}{
		{
			name:      "all reachable with cycle",
			doc:       auctionDoc(),
			wantCycle: true,
		},
		{
			name: "linear chain has no cycle",
			doc: &domain.Document{
				InitialState: "A",
				States: []domain.State{
					st("A", tr("e", "B")),
					st("B", tr("e", "C")),
					st("C"),
				},
			},
		},
		{
			name: "self loop is a cycle",
			doc: &domain.Document{
				InitialState: "A",
				States:       []domain.State{st("A", tr("tick", "A"))},
			},
			wantCycle: true,
		},
		{
			name: "isolated state is unreachable",
			doc: &domain.Document{
				InitialState: "A",
				States: []domain.State{
					st("A", tr("e", "B")),
					st("B", tr("e", "A")),
					st("Orphan"),
				},
			},
			wantUnreachable: []string{"Orphan"},
			wantCycle:       true,
		},
		{
			name: "cycle outside the reachable part still counts",
			doc: &domain.Document{
				InitialState: "A",
				States: []domain.State{
					st("A"),
					st("X", tr("e", "Y")),
					st("Y", tr("e", "X")),
				},
			},
			wantUnreachable: []string{"X", "Y"},
			wantCycle:       true,
		},
		{
			name: "parallel edges collapse",
			doc: &domain.Document{
				InitialState: "A",
				States: []domain.State{
					st("A", tr("e1", "B"), tr("e2", "B")),
					st("B"),
				},
			},
		},
		{
			name: "no transitions at all",
			doc: &domain.Document{
				InitialState: "A",
				States:       []domain.State{st("A"), st("B")},
			},
			wantUnreachable: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.doc)
			assert.Equal(t, tt.wantUnreachable, got.Unreachable)
			assert.Equal(t, tt.wantCycle, got.HasCycle)
		})
	}
}

func TestAnalyze_InvalidDocumentDoesNotPanic(t *testing.T) {
	doc := &domain.Document{
		InitialState: "Ghost",
		States:       []domain.State{st("A", tr("e", "Missing"))},
	}

	assert.NotPanics(t, func() {
		got := Analyze(doc)
		assert.Equal(t, []string{"A"}, got.Unreachable)
		assert.False(t, got.HasCycle)
	})
}
