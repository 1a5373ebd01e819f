// Package graph renders the workflow node table as Mermaid flowchart syntax.
package graph

import (
	"fmt"
	"strings"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Overlay carries dynamic project state to visualize on the graph.
type Overlay struct {
	CompletedNodes []string
	CurrentNode    string
	BlockedNodes   []string
}

// GenerateMermaid produces a Mermaid flowchart from the workflow.
// Shapes encode node semantics:
//   - Optional: ([stadium])
//   - On-request: [/parallelogram/]
//   - Default: [rectangle]
//
// Dependency edges are solid; edges into optional nodes are dotted.
func GenerateMermaid(wf *domain.Workflow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range wf.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.CreateOnlyIfUserAsks:
			opener, closer = "[/", "/]"
		case node.Optional:
			opener, closer = "([", "])"
		}

		label := fmt.Sprintf("%s: %s", node.ID, node.ArtifactName)
		if node.AnyInSpec || node.MultiFile {
			label += " *"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, dep := range node.Dependencies {
			safeDep := sanitizeMermaidID(dep)
			arrow := "-->"
			if node.Optional {
				arrow = "-.->"
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeDep, arrow, safeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef blocked fill:#ffebee,stroke:#b71c1c,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.CompletedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s completed;\n", safeID))
			}
		}
		for _, id := range overlay.BlockedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s blocked;\n", safeID))
			}
		}
		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return "n" + s
}
