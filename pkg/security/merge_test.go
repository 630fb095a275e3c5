package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/fsmgen/pkg/domain"
)

func f(check string, start, end int) domain.Finding {
	return domain.Finding{
		Check:      check,
		Impact:     domain.LevelMedium,
		Confidence: domain.LevelHigh,
		StartLine:  start,
		EndLine:    end,
	}
}

func ranges(ms []domain.MergedFinding) [][3]any {
	out := make([][3]any, 0, len(ms))
	for _, m := range ms {
		out = append(out, [3]any{m.Check, m.StartLine, m.EndLine})
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.Finding
		want [][3]any
	}{
		{
			name: "overlapping and disjoint",
			in:   []domain.Finding{f("X", 100, 110), f("X", 105, 120), f("X", 200, 210)},
			want: [][3]any{{"X", 100, 120}, {"X", 200, 210}},
		},
		{
			name: "touching intervals merge",
			in:   []domain.Finding{f("X", 1, 5), f("X", 5, 9)},
			want: [][3]any{{"X", 1, 9}},
		},
		{
			name: "adjacent lines with a gap stay apart",
			in:   []domain.Finding{f("X", 1, 5), f("X", 6, 9)},
			want: [][3]any{{"X", 1, 5}, {"X", 6, 9}},
		},
		{
			name: "unsorted input",
			in:   []domain.Finding{f("X", 30, 40), f("X", 1, 2), f("X", 35, 50)},
			want: [][3]any{{"X", 1, 2}, {"X", 30, 50}},
		},
		{
			name: "groups keep first occurrence order",
			in:   []domain.Finding{f("reentrancy", 10, 12), f("tx-origin", 3, 3), f("reentrancy", 1, 2)},
			want: [][3]any{{"reentrancy", 1, 2}, {"reentrancy", 10, 12}, {"tx-origin", 3, 3}},
		},
		{
			name: "contained interval",
			in:   []domain.Finding{f("X", 1, 100), f("X", 10, 20)},
			want: [][3]any{{"X", 1, 100}},
		},
		{
			name: "empty",
			in:   nil,
			want: [][3]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ranges(Merge(tt.in)))
		})
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []domain.Finding{f("X", 105, 120), f("X", 100, 110)}
	snapshot := append([]domain.Finding(nil), in...)

	Merge(in)

	assert.Equal(t, snapshot, in)
}

func TestMerge_Idempotent(t *testing.T) {
	in := []domain.Finding{f("X", 100, 110), f("Y", 4, 4), f("X", 105, 120), f("X", 200, 210)}

	once := Merge(in)
	twice := Merge(once)

	assert.Equal(t, once, twice)
}

func TestActionable(t *testing.T) {
	info := f("naming", 1, 1)
	info.Impact = domain.LevelInformational
	opt := f("constable", 2, 2)
	opt.Impact = domain.LevelOptimization
	keep := f("reentrancy", 3, 4)

	got := Actionable([]domain.Finding{info, keep, opt})

	assert.Equal(t, []domain.Finding{keep}, got)
}
