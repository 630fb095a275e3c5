package security

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/aretw0/fsmgen/pkg/domain"
)

const (
	toolName = "slither"
	toolURI  = "https://github.com/crytic/slither"
)

// SARIF builds a SARIF 2.1.0 report for the findings of a single contract file.
func SARIF(uri string, findings []domain.MergedFinding) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	for _, f := range findings {
		level := sarifLevel(f.Impact)
		rule := run.AddRule(f.Check).
			WithDescription(f.Check).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)).
				WithRegion(sarif.NewRegion().WithStartLine(f.StartLine).WithEndLine(f.EndLine)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(f.Description)).
			WithLevel(level).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)
	return report, nil
}

// WriteSARIF writes the SARIF report for findings to w.
func WriteSARIF(w io.Writer, uri string, findings []domain.MergedFinding) error {
	report, err := SARIF(uri, findings)
	if err != nil {
		return err
	}
	return report.PrettyWrite(w)
}

func sarifLevel(impact domain.Level) string {
	switch impact {
	case domain.LevelHigh:
		return "error"
	case domain.LevelMedium:
		return "warning"
	case domain.LevelLow:
		return "note"
	default:
		return "none"
	}
}
