package domain

// Level grades the impact or confidence of a Finding.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"

	// Informational and Optimization are impacts reported by analyzers that are
	// never actionable. They are dropped before aggregation.
	LevelInformational Level = "Informational"
	LevelOptimization  Level = "Optimization"
)

// Weight maps Low/Medium/High to 1/2/3. Any other level weighs 0.
func (l Level) Weight() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	default:
		return 0
	}
}

// Actionable reports whether an impact of this level must be fixed.
func (l Level) Actionable() bool {
	return l != LevelInformational && l != LevelOptimization
}

// Finding is a single static-analysis result for a candidate contract.
type Finding struct {
	Check       string `json:"check"`
	Impact      Level  `json:"impact"`
	Confidence  Level  `json:"confidence"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Description string `json:"description"`
}

// MergedFinding has the shape of a Finding whose line range spans the
// coalesced interval of every overlapping finding of the same check.
type MergedFinding = Finding
