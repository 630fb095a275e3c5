package security

import (
	"slices"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Actionable drops findings whose impact is Informational or Optimization.
// It returns a new slice.
func Actionable(findings []domain.Finding) []domain.Finding {
	out := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Impact.Actionable() {
			out = append(out, f)
		}
	}
	return out
}

// Merge coalesces overlapping or touching line ranges of findings that share
// the same check. Groups keep the order in which each check first appears;
// intervals inside a group are ordered left to right. A merged finding keeps
// the impact, confidence and description of the leftmost finding of its run.
// The input slice is never modified.
func Merge(findings []domain.Finding) []domain.MergedFinding {
	var order []string
	groups := make(map[string][]domain.Finding)
	for _, f := range findings {
		if _, ok := groups[f.Check]; !ok {
			order = append(order, f.Check)
		}
		groups[f.Check] = append(groups[f.Check], f)
	}

	merged := make([]domain.MergedFinding, 0, len(findings))
	for _, check := range order {
		items := groups[check]
		slices.SortStableFunc(items, func(a, b domain.Finding) int {
			if a.StartLine != b.StartLine {
				return a.StartLine - b.StartLine
			}
			return a.EndLine - b.EndLine
		})

		cur := items[0]
		for _, next := range items[1:] {
			if next.StartLine <= cur.EndLine {
				cur.EndLine = max(cur.EndLine, next.EndLine)
				continue
			}
			merged = append(merged, cur)
			cur = next
		}
		merged = append(merged, cur)
	}
	return merged
}
