package domain

// SeverityStat counts findings of one impact level.
type SeverityStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// RiskReport is the weighted risk derived from a list of merged findings.
type RiskReport struct {
	RiskScore float64      `json:"risk_score"`
	Low       SeverityStat `json:"Low"`
	Medium    SeverityStat `json:"Medium"`
	High      SeverityStat `json:"High"`
}

// Total returns the number of findings the report was computed from.
func (r RiskReport) Total() int {
	return r.Low.Count + r.Medium.Count + r.High.Count
}
