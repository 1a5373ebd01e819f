// Package compiler turns a resolved next step into a concrete generation
// prompt plus a machine-checkable expected outcome. Pure transform; no I/O.
package compiler

import (
	"fmt"
	"strings"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Forbidden actions attached to every compiled instruction.
const (
	forbidDuplicate     = "create a duplicate of an existing artifact"
	forbidIgnoreContext = "ignore a required context mention"
)

// Compile produces the prompt and expected outcome for an instruction.
// The prompt is the ordered concatenation of a target statement, a context
// mentions statement, and the rules. Non-generative actions get no prompt.
func Compile(action domain.Action, target domain.ArtifactCoordinates, contextArtifacts []domain.ArtifactSummary, rules []string) (string, domain.ExpectedOutcome) {
	outcome := domain.ExpectedOutcome{
		MustCreate:       []domain.ArtifactCoordinates{},
		MustLink:         []domain.LinkEdge{},
		ForbiddenActions: []string{forbidDuplicate, forbidIgnoreContext},
	}

	if action != domain.ActionGenerate && action != domain.ActionUpdate {
		return "", outcome
	}

	outcome.MustCreate = append(outcome.MustCreate, target)
	for _, a := range contextArtifacts {
		outcome.MustLink = append(outcome.MustLink, domain.LinkEdge{
			From: target,
			To: domain.ArtifactCoordinates{
				ArtifactType: a.ArtifactType,
				SpecName:     a.SpecName,
				ArtifactName: a.ArtifactName,
			},
			Relation: "depends_on",
		})
	}

	var b strings.Builder

	verb := "Generate"
	if action == domain.ActionUpdate {
		verb = "Update"
	}
	fmt.Fprintf(&b, "%s the %q artifact named %q in spec %q.\n",
		verb, target.ArtifactType, target.ArtifactName, target.SpecName)

	if len(contextArtifacts) > 0 {
		b.WriteString("\nUse the following context artifacts and reference each one by mention:\n")
		for _, a := range contextArtifacts {
			fmt.Fprintf(&b, "- @{%s}\n", a.Key())
		}
	}

	if len(rules) > 0 {
		b.WriteString("\nRules:\n")
		for _, r := range rules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	return b.String(), outcome
}
