package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// GraphOverlay contains analysis results to visualize on the graph.
type GraphOverlay struct {
	Unreachable []string
}

// GenerateMermaid produces a Mermaid flowchart of the state machine.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Terminal state: ([Stadium])
// - Default: [Rectangle]
// Edges are labelled with their trigger and, when present, their condition.
func GenerateMermaid(doc *domain.Document, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if doc == nil {
		return sb.String()
	}

	for _, state := range doc.States {
		safeID := sanitizeMermaidID(state.Name)

		opener, closer := "[", "]"
		switch {
		case state.Name == doc.InitialState:
			opener, closer = "((", "))"
		case state.Terminal():
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(state.Name), closer)

		for _, t := range state.Transitions {
			label := escapeLabel(t.Trigger)
			if t.Condition != "" {
				label += " [" + escapeLabel(t.Condition) + "]"
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(t.Target))
		}
	}

	if overlay != nil && len(overlay.Unreachable) > 0 {
		sb.WriteString("\n    %% Analysis\n")
		sb.WriteString("    classDef unreachable fill:#ffebee,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Unreachable {
			safeID := sanitizeMermaidID(name)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s unreachable;\n", safeID)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
