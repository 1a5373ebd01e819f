package domain

// NodeDef is one step in the canonical artifact-production sequence.
// The table of NodeDefs is static data: it is compiled into the binary (see
// DefaultWorkflow) or loaded from a YAML file, and never mutated at runtime.
type NodeDef struct {
	ID string `json:"id" yaml:"id"` // e.g. "3.4"

	// Coordinates of the artifact that satisfies this node.
	ArtifactType string `json:"artifact_type" yaml:"artifact_type"`
	SpecName     string `json:"spec_name" yaml:"spec_name"`
	ArtifactName string `json:"artifact_name" yaml:"artifact_name"`

	// Dependencies lists node IDs that must be satisfied first.
	// Every entry must appear earlier in the workflow order.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`

	// Optional nodes may be skipped; their absence never blocks downstream nodes.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`

	// AnyInSpec relaxes matching: any artifact of the same type+spec satisfies
	// the node regardless of its exact name.
	AnyInSpec bool `json:"any_in_spec,omitempty" yaml:"any_in_spec,omitempty"`

	// MultiFile marks artifact families that produce several files
	// (e.g. one wireframe per screen). Matching is relaxed like AnyInSpec.
	MultiFile bool `json:"multi_file,omitempty" yaml:"multi_file,omitempty"`

	// CreateOnlyIfUserAsks nodes are skipped during candidate selection unless
	// a matching artifact already exists; once created they count as completed
	// and are never re-offered.
	CreateOnlyIfUserAsks bool `json:"create_only_if_user_asks,omitempty" yaml:"create_only_if_user_asks,omitempty"`
}

// Matches reports whether the artifact satisfies this node.
func (d NodeDef) Matches(a ArtifactSummary) bool {
	if a.ArtifactType != d.ArtifactType || a.SpecName != d.SpecName {
		return false
	}
	if d.AnyInSpec || d.MultiFile {
		return true
	}
	return a.ArtifactName == d.ArtifactName
}

// Target returns the artifact coordinates a generator must produce for this node.
func (d NodeDef) Target() ArtifactCoordinates {
	return ArtifactCoordinates{
		ArtifactType: d.ArtifactType,
		SpecName:     d.SpecName,
		ArtifactName: d.ArtifactName,
	}
}

// ArtifactCoordinates identify an artifact by type, spec and name.
type ArtifactCoordinates struct {
	ArtifactType string `json:"artifact_type"`
	SpecName     string `json:"spec_name"`
	ArtifactName string `json:"artifact_name,omitempty"`
}
