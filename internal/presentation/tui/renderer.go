package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer when f is a terminal and a
// pass-through renderer otherwise, so piped output stays plain markdown.
func NewRenderer(f *os.File) Renderer {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return Plain
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return Plain
	}
	return r.Render
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// RiskMarkdown summarizes a security report as a markdown document.
func RiskMarkdown(title string, report domain.RiskReport, findings []domain.MergedFinding) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Risk score:** %.2f\n\n", report.RiskScore)

	sb.WriteString("| Severity | Count | Share |\n|---|---|---|\n")
	for _, row := range []struct {
		name string
		stat domain.SeverityStat
	}{
		{"High", report.High},
		{"Medium", report.Medium},
		{"Low", report.Low},
	} {
		fmt.Fprintf(&sb, "| %s | %d | %.0f%% |\n", row.name, row.stat.Count, row.stat.Percent*100)
	}

	if len(findings) == 0 {
		sb.WriteString("\nNo actionable findings.\n")
		return sb.String()
	}

	sb.WriteString("\n## Findings\n\n")
	for _, f := range findings {
		fmt.Fprintf(&sb, "- `%s` (%s impact, %s confidence), lines %d-%d\n", f.Check, f.Impact, f.Confidence, f.StartLine, f.EndLine)
	}
	return sb.String()
}
