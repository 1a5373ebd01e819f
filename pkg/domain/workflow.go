package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Workflow is an ordered table of node definitions. The slice order IS the
// canonical total order: the resolver walks it front to back and candidate
// selection advances along it.
type Workflow struct {
	Nodes []NodeDef

	index map[string]int // node ID -> position in Nodes
}

// NewWorkflow builds a workflow from an ordered node table.
func NewWorkflow(nodes []NodeDef) *Workflow {
	w := &Workflow{
		Nodes: nodes,
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		w.index[n.ID] = i
	}
	return w
}

// Node returns the definition for the given ID.
func (w *Workflow) Node(id string) (NodeDef, bool) {
	i, ok := w.index[id]
	if !ok {
		return NodeDef{}, false
	}
	return w.Nodes[i], true
}

// IndexOf returns the canonical position of a node, or -1 if unknown.
func (w *Workflow) IndexOf(id string) int {
	i, ok := w.index[id]
	if !ok {
		return -1
	}
	return i
}

// First returns the first node in canonical order.
func (w *Workflow) First() (NodeDef, bool) {
	if len(w.Nodes) == 0 {
		return NodeDef{}, false
	}
	return w.Nodes[0], true
}

// Validate checks the structural invariants of the table:
// unique IDs, known dependency references, and every dependency appearing
// strictly earlier in the canonical order. Because dependencies must point
// backwards, a valid table is a DAG by construction; any cycle necessarily
// contains a forward edge and is reported here.
// Call it once at startup and fail fast.
func (w *Workflow) Validate() error {
	if len(w.Nodes) == 0 {
		return fmt.Errorf("workflow has no nodes")
	}

	seen := make(map[string]int, len(w.Nodes))
	for i, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node at position %d has empty id", i)
		}
		if prev, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q at positions %d and %d", n.ID, prev, i)
		}
		seen[n.ID] = i
		if n.ArtifactType == "" || n.SpecName == "" {
			return fmt.Errorf("node %q is missing artifact coordinates", n.ID)
		}
	}

	for i, n := range w.Nodes {
		for _, dep := range n.Dependencies {
			j, ok := seen[dep]
			if !ok {
				return fmt.Errorf("node %q depends on unknown node %q", n.ID, dep)
			}
			if j >= i {
				return fmt.Errorf("node %q depends on %q which does not precede it in the canonical order", n.ID, dep)
			}
		}
	}

	return nil
}

// workflowFile is the YAML envelope for custom node tables.
type workflowFile struct {
	Nodes []NodeDef `yaml:"nodes"`
}

// LoadWorkflow reads a custom node table from a YAML file and validates it.
func LoadWorkflow(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var f workflowFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}

	w := NewWorkflow(f.Nodes)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow table: %w", err)
	}
	return w, nil
}

// DefaultWorkflow returns the canonical SDLC artifact sequence.
func DefaultWorkflow() *Workflow {
	return NewWorkflow([]NodeDef{
		// Phase 1: Requirements
		{ID: "1.1", ArtifactType: KindRequirements, SpecName: "product", ArtifactName: "business-requirements"},
		{ID: "1.2", ArtifactType: KindRequirements, SpecName: "product", ArtifactName: "user-personas",
			Dependencies: []string{"1.1"}, Optional: true},
		{ID: "1.3", ArtifactType: KindRequirements, SpecName: "product", ArtifactName: "functional-requirements",
			Dependencies: []string{"1.1"}},
		{ID: "1.4", ArtifactType: KindRequirements, SpecName: "product", ArtifactName: "non-functional-requirements",
			Dependencies: []string{"1.3"}, Optional: true},

		// Phase 2: Architecture
		{ID: "2.1", ArtifactType: KindHighLevelDesign, SpecName: "architecture", ArtifactName: "system-architecture",
			Dependencies: []string{"1.3"}},
		{ID: "2.2", ArtifactType: KindHighLevelDesign, SpecName: "architecture", ArtifactName: "tech-stack",
			Dependencies: []string{"2.1"}, Optional: true},
		{ID: "2.3", ArtifactType: KindDiagram, SpecName: "architecture", ArtifactName: "er-diagram",
			Dependencies: []string{"2.1"}},
		{ID: "2.4", ArtifactType: KindDiagram, SpecName: "architecture", ArtifactName: "flow-diagram",
			Dependencies: []string{"2.1"}, Optional: true},

		// Phase 3: UX
		{ID: "3.1", ArtifactType: KindWireframe, SpecName: "ux", ArtifactName: "screen-inventory",
			Dependencies: []string{"1.3"}},
		{ID: "3.2", ArtifactType: KindWireframe, SpecName: "ux", ArtifactName: "screen-wireframes",
			Dependencies: []string{"3.1"}, AnyInSpec: true, MultiFile: true},
		{ID: "3.3", ArtifactType: KindRequirements, SpecName: "ux", ArtifactName: "acceptance-criteria",
			Dependencies: []string{"3.2"}, AnyInSpec: true, MultiFile: true},
		{ID: "3.4", ArtifactType: KindDiagram, SpecName: "ux", ArtifactName: "navigation-map",
			Dependencies: []string{"3.1"}, Optional: true},

		// Phase 4: Low-level design
		{ID: "4.1", ArtifactType: KindLowLevelDesign, SpecName: "engineering", ArtifactName: "module-design",
			Dependencies: []string{"2.1"}},
		{ID: "4.2", ArtifactType: KindLowLevelDesign, SpecName: "engineering", ArtifactName: "api-contract",
			Dependencies: []string{"4.1"}, Optional: true},
		{ID: "4.3", ArtifactType: KindLowLevelDesign, SpecName: "engineering", ArtifactName: "data-migration-plan",
			Dependencies: []string{"4.1"}, CreateOnlyIfUserAsks: true},

		// Phase 5: Planning
		{ID: "5.1", ArtifactType: KindTask, SpecName: "planning", ArtifactName: "task-breakdown",
			Dependencies: []string{"4.1"}},
		{ID: "5.2", ArtifactType: KindTask, SpecName: "planning", ArtifactName: "estimation",
			Dependencies: []string{"5.1"}, Optional: true},

		// Phase 6: QA
		{ID: "6.1", ArtifactType: KindTest, SpecName: "qa", ArtifactName: "test-plan",
			Dependencies: []string{"5.1"}},
		{ID: "6.2", ArtifactType: KindTest, SpecName: "qa", ArtifactName: "test-cases",
			Dependencies: []string{"6.1"}, AnyInSpec: true, MultiFile: true},
		{ID: "6.3", ArtifactType: KindTest, SpecName: "qa", ArtifactName: "traceability-matrix",
			Dependencies: []string{"6.2"}, CreateOnlyIfUserAsks: true},
	})
}
