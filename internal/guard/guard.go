// Package guard vets a compiled instruction immediately before it leaves the
// engine. It is the last defense against duplicate creation and premature
// generation; failures are downgrades, never errors.
package guard

import (
	"fmt"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Result is the guard's verdict. On failure the orchestrator substitutes
// SuggestedAction, blanks the prompt, and records Reason.
type Result struct {
	OK              bool
	Reason          string
	SuggestedAction domain.Action
}

func pass() Result {
	return Result{OK: true}
}

// Check validates an instruction against the current snapshot.
//
// NO_OP and WAIT_FOR_INPUT always pass. A GENERATE whose exact target already
// exists is rejected in favor of NO_OP; a generative instruction whose node
// still has unmet dependencies is rejected in favor of WAIT_FOR_INPUT.
// Dependency satisfaction follows resolver semantics: absent optional
// dependencies never count as unmet.
func Check(wf *domain.Workflow, instr *domain.NextInstruction, snap *domain.GraphSnapshot) Result {
	switch instr.Action {
	case domain.ActionNoOp, domain.ActionWaitForInput:
		return pass()
	}

	if instr.Action == domain.ActionGenerate && targetExists(snap, instr.Target) {
		return Result{
			Reason:          "artifact already exists",
			SuggestedAction: domain.ActionNoOp,
		}
	}

	if len(instr.NextCandidates) > 0 {
		def, ok := wf.Node(instr.NextCandidates[0].NodeID)
		if ok && !depsResolved(wf, def, snap) {
			return Result{
				Reason:          "dependencies for next node not satisfied",
				SuggestedAction: domain.ActionWaitForInput,
			}
		}
	}

	return pass()
}

// targetExists checks for an artifact at the exact target coordinates.
func targetExists(snap *domain.GraphSnapshot, target domain.ArtifactCoordinates) bool {
	for _, a := range snap.Artifacts {
		if a.ArtifactType == target.ArtifactType &&
			a.SpecName == target.SpecName &&
			a.ArtifactName == target.ArtifactName {
			return true
		}
	}
	return false
}

func depsResolved(wf *domain.Workflow, def domain.NodeDef, snap *domain.GraphSnapshot) bool {
	for _, depID := range def.Dependencies {
		dep, ok := wf.Node(depID)
		if !ok {
			return false
		}
		if snap.FindMatch(dep) != nil {
			continue
		}
		if dep.Optional {
			continue
		}
		return false
	}
	return true
}

// Describe renders the verdict for decision traces.
func (r Result) Describe() string {
	if r.OK {
		return "guard: pass"
	}
	return fmt.Sprintf("guard: rejected (%s), downgrading to %s", r.Reason, r.SuggestedAction)
}
