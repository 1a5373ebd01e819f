// Package resolver maps a project's artifact snapshot onto the canonical
// workflow order. Resolve is a pure function: no I/O, no side effects, fully
// deterministic for a given workflow table and snapshot.
package resolver

import (
	"fmt"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Resolve computes the current/next position in the workflow.
//
// lastKnown is an optional out-of-band hint ("the agent says it just finished
// this node"). When it is strictly ahead of the computed current node and not
// yet reflected in the snapshot, candidate selection restarts after it. The
// hint never marks nodes completed: dependency checks always run against the
// snapshot, so a stale or lying hint can at worst produce a blocked candidate.
func Resolve(wf *domain.Workflow, snap *domain.GraphSnapshot, lastKnown string) domain.ResolvedState {
	rs := domain.ResolvedState{
		CompletedNodes: []string{},
		BlockedNodes:   []string{},
		SkippableNodes: []string{},
		NextCandidates: []domain.Candidate{},
		Reasoning:      []string{},
	}

	// Pass 1: match artifacts to nodes in canonical order.
	completed := make(map[string]bool, len(wf.Nodes))
	for _, def := range wf.Nodes {
		if m := snap.FindMatch(def); m != nil {
			completed[def.ID] = true
			rs.CompletedNodes = append(rs.CompletedNodes, def.ID)
			rs.CurrentNode = def.ID
		}
	}

	// Pass 2: classify unmatched nodes as blocked or skippable.
	for _, def := range wf.Nodes {
		if completed[def.ID] {
			continue
		}
		if !depsSatisfied(wf, def, completed) {
			rs.BlockedNodes = append(rs.BlockedNodes, def.ID)
			continue
		}
		if def.Optional {
			rs.SkippableNodes = append(rs.SkippableNodes, def.ID)
		}
	}

	if len(rs.CompletedNodes) == 0 {
		first, ok := wf.First()
		if !ok {
			rs.RecommendedAction = domain.ActionNoOp
			rs.Reasoning = append(rs.Reasoning, "Workflow table is empty; nothing to do")
			return rs
		}
		rs.Reasoning = append(rs.Reasoning, "No artifacts; start at node 1")
		if !depsSatisfied(wf, first, completed) {
			rs.NextCandidates = append(rs.NextCandidates, domain.Candidate{
				NodeID:  first.ID,
				Blocked: true,
				Reason:  "dependencies not satisfied",
			})
			rs.RecommendedAction = domain.ActionWaitForInput
			return rs
		}
		rs.NextCandidates = append(rs.NextCandidates, domain.Candidate{NodeID: first.ID})
		rs.RecommendedAction = domain.ActionGenerate
		return rs
	}

	rs.Reasoning = append(rs.Reasoning,
		fmt.Sprintf("Last completed node in canonical order: %s (%d of %d nodes done)",
			rs.CurrentNode, len(rs.CompletedNodes), len(wf.Nodes)))

	// Candidate scan starts after the current node, or after the caller's
	// hint when it is strictly ahead and not already completed.
	scanFrom := wf.IndexOf(rs.CurrentNode)
	if lastKnown != "" && !completed[lastKnown] {
		if idx := wf.IndexOf(lastKnown); idx > scanFrom {
			scanFrom = idx
			rs.Reasoning = append(rs.Reasoning,
				fmt.Sprintf("Caller reports %s finished out of band; scanning from there", lastKnown))
		}
	}

	primary := nextCandidate(wf, scanFrom+1, completed)
	if primary == nil {
		rs.RecommendedAction = domain.ActionNoOp
		rs.Reasoning = append(rs.Reasoning, "No remaining nodes; workflow is complete")
		return rs
	}

	if !depsSatisfied(wf, *primary, completed) {
		rs.NextCandidates = append(rs.NextCandidates, domain.Candidate{
			NodeID:  primary.ID,
			Blocked: true,
			Reason:  fmt.Sprintf("dependencies %v not satisfied", missingDeps(wf, *primary, completed)),
		})
		rs.RecommendedAction = domain.ActionWaitForInput
		rs.Reasoning = append(rs.Reasoning,
			fmt.Sprintf("Next node %s is blocked on missing dependencies", primary.ID))
		return rs
	}

	rs.NextCandidates = append(rs.NextCandidates, domain.Candidate{NodeID: primary.ID})
	rs.RecommendedAction = domain.ActionGenerate
	rs.Reasoning = append(rs.Reasoning, fmt.Sprintf("Next node %s is ready to generate", primary.ID))

	// When the primary is optional, offer the next required node as well so
	// the caller can choose to skip straight past the optional stretch.
	if primary.Optional {
		if req := nextRequired(wf, wf.IndexOf(primary.ID)+1, completed); req != nil && depsSatisfied(wf, *req, completed) {
			rs.NextCandidates = append(rs.NextCandidates, domain.Candidate{NodeID: req.ID})
			rs.Reasoning = append(rs.Reasoning,
				fmt.Sprintf("%s is optional; %s is the next required node and may be generated instead", primary.ID, req.ID))
		}
	}

	return rs
}

// ResolveNode returns the first workflow node the given artifact coordinates
// satisfy. Used by progress recording to translate an acknowledgement back
// into a node ID.
func ResolveNode(wf *domain.Workflow, coords domain.ArtifactCoordinates) (domain.NodeDef, bool) {
	a := domain.ArtifactSummary{
		ArtifactType: coords.ArtifactType,
		SpecName:     coords.SpecName,
		ArtifactName: coords.ArtifactName,
	}
	for _, def := range wf.Nodes {
		if def.Matches(a) {
			return def, true
		}
	}
	return domain.NodeDef{}, false
}

// Successor returns the canonical successor of a node, skipping nodes that
// are never offered (createOnlyIfUserAsks).
func Successor(wf *domain.Workflow, nodeID string) (domain.NodeDef, bool) {
	idx := wf.IndexOf(nodeID)
	if idx < 0 {
		return domain.NodeDef{}, false
	}
	for i := idx + 1; i < len(wf.Nodes); i++ {
		if wf.Nodes[i].CreateOnlyIfUserAsks {
			continue
		}
		return wf.Nodes[i], true
	}
	return domain.NodeDef{}, false
}

// depsSatisfied reports whether every dependency is completed or optional.
// Optional nodes never block their dependents.
func depsSatisfied(wf *domain.Workflow, def domain.NodeDef, completed map[string]bool) bool {
	for _, dep := range def.Dependencies {
		if completed[dep] {
			continue
		}
		if d, ok := wf.Node(dep); ok && d.Optional {
			continue
		}
		return false
	}
	return true
}

func missingDeps(wf *domain.Workflow, def domain.NodeDef, completed map[string]bool) []string {
	var missing []string
	for _, dep := range def.Dependencies {
		if completed[dep] {
			continue
		}
		if d, ok := wf.Node(dep); ok && d.Optional {
			continue
		}
		missing = append(missing, dep)
	}
	return missing
}

// nextCandidate scans forward from the given position, skipping completed
// nodes and nodes that are only created on explicit request.
func nextCandidate(wf *domain.Workflow, from int, completed map[string]bool) *domain.NodeDef {
	for i := from; i < len(wf.Nodes); i++ {
		def := wf.Nodes[i]
		if completed[def.ID] {
			continue
		}
		if def.CreateOnlyIfUserAsks {
			continue
		}
		return &def
	}
	return nil
}

// nextRequired scans forward for the first non-optional, offerable node.
func nextRequired(wf *domain.Workflow, from int, completed map[string]bool) *domain.NodeDef {
	for i := from; i < len(wf.Nodes); i++ {
		def := wf.Nodes[i]
		if completed[def.ID] || def.CreateOnlyIfUserAsks || def.Optional {
			continue
		}
		return &def
	}
	return nil
}
