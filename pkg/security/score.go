package security

import "github.com/aretw0/fsmgen/pkg/domain"

// Score computes the weighted risk of a list of merged findings.
//
// Each finding weighs impact×confidence (Low=1, Medium=2, High=3) and the
// risk score is the mean weight, 0 for an empty list. Severity counts and
// percentages only consider the impact.
func Score(findings []domain.MergedFinding) domain.RiskReport {
	var report domain.RiskReport
	total := len(findings)
	if total == 0 {
		return report
	}

	sum := 0
	for _, f := range findings {
		sum += f.Impact.Weight() * f.Confidence.Weight()
		switch f.Impact {
		case domain.LevelLow:
			report.Low.Count++
		case domain.LevelMedium:
			report.Medium.Count++
		case domain.LevelHigh:
			report.High.Count++
		}
	}

	report.RiskScore = float64(sum) / float64(total)
	report.Low.Percent = float64(report.Low.Count) / float64(total)
	report.Medium.Percent = float64(report.Medium.Count) / float64(total)
	report.High.Percent = float64(report.High.Count) / float64(total)
	return report
}

// Aggregate filters, merges and scores raw analyzer findings in one call.
func Aggregate(findings []domain.Finding) ([]domain.MergedFinding, domain.RiskReport) {
	merged := Merge(Actionable(findings))
	return merged, Score(merged)
}
