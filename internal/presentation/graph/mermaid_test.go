package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/waymark-ai/waymark/pkg/domain"
)

func TestGenerateMermaid_NodesAndEdges(t *testing.T) {
	out := GenerateMermaid(domain.DefaultWorkflow(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	// First node, dot replaced with underscore.
	assert.Contains(t, out, `n1_1["1.1: business-requirements"]`)
	// 1.3 depends on 1.1: solid edge.
	assert.Contains(t, out, "n1_1 --> n1_3")
	// Optional node gets stadium shape and dotted incoming edges.
	assert.Contains(t, out, `n1_2(["1.2: user-personas"])`)
	assert.Contains(t, out, "n1_1 -.-> n1_2")
}

func TestGenerateMermaid_OnRequestShape(t *testing.T) {
	out := GenerateMermaid(domain.DefaultWorkflow(), nil)

	// 4.3 is produced only when asked for: parallelogram.
	assert.Contains(t, out, `n4_3[/"4.3: data-migration-plan"/]`)
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	overlay := &Overlay{
		CompletedNodes: []string{"1.1", "1.1", "1.3"},
		CurrentNode:    "1.3",
		BlockedNodes:   []string{"2.1"},
	}
	out := GenerateMermaid(domain.DefaultWorkflow(), overlay)

	assert.Contains(t, out, "class n1_1 completed;")
	assert.Contains(t, out, "class n1_3 current;")
	assert.Contains(t, out, "class n2_1 blocked;")
	// Duplicates collapse to one class line.
	assert.Equal(t, 1, strings.Count(out, "class n1_1 completed;"))
}
