// Package assembly selects the bounded artifact context handed to the
// generator alongside an instruction. Pure selection logic; no I/O.
package assembly

import (
	"github.com/waymark-ai/waymark/pkg/domain"
)

// Policy bounds and orders context selection. Only MaxArtifacts affects
// correctness; the other knobs exist so tuning stays a data change.
type Policy struct {
	MaxArtifacts  int
	PriorityOrder []string
	Fallback      string
}

// DefaultPolicy returns the standard selection policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxArtifacts:  8,
		PriorityOrder: []string{"dependencies", "current", "llm_context", "remaining"},
		Fallback:      "snapshot-order",
	}
}

// Rules is the fixed guidance text attached to every compiled instruction.
var Rules = []string{
	"Reference each context artifact with the mention syntax @{artifact_type/spec_name/artifact_name}.",
	"Emit only the artifact content. Do not add commentary, preambles, or explanations.",
	"Do not create an artifact that duplicates an existing one.",
}

// Select builds the bounded context artifact list for the primary candidate.
//
// Phase order: (a) the candidate's direct dependency artifacts, (b) the
// artifact matching the current node, (c) artifacts flagged as always-relevant
// LLM context, (d) remaining artifacts in snapshot order. An artifact selected
// in an earlier phase is never re-added, and selection stops at MaxArtifacts.
func Select(wf *domain.Workflow, rs domain.ResolvedState, snap *domain.GraphSnapshot, policy Policy) []domain.ArtifactSummary {
	max := policy.MaxArtifacts
	if max <= 0 {
		max = DefaultPolicy().MaxArtifacts
	}

	selected := make([]domain.ArtifactSummary, 0, max)
	seen := make(map[string]bool)

	add := func(a domain.ArtifactSummary) bool {
		if len(selected) >= max {
			return false
		}
		if seen[a.Key()] {
			return true
		}
		seen[a.Key()] = true
		selected = append(selected, a)
		return true
	}

	// (a) Direct dependencies of the primary candidate.
	if len(rs.NextCandidates) > 0 {
		if def, ok := wf.Node(rs.NextCandidates[0].NodeID); ok {
			for _, depID := range def.Dependencies {
				dep, ok := wf.Node(depID)
				if !ok {
					continue
				}
				if m := snap.FindMatch(dep); m != nil {
					if !add(*m) {
						return selected
					}
				}
			}
		}
	}

	// (b) The artifact satisfying the current node itself.
	if rs.CurrentNode != "" {
		if def, ok := wf.Node(rs.CurrentNode); ok {
			if m := snap.FindMatch(def); m != nil {
				if !add(*m) {
					return selected
				}
			}
		}
	}

	// (c) Artifacts flagged as always worth showing.
	for _, a := range snap.Artifacts {
		if !a.IsLLMContext {
			continue
		}
		if !add(a) {
			return selected
		}
	}

	// (d) Fill the remaining budget in snapshot order.
	for _, a := range snap.Artifacts {
		if !add(a) {
			return selected
		}
	}

	return selected
}
