package domain

// Artifact kinds recognized by the engine. These are the values carried in
// ArtifactSummary.ArtifactType and NodeDef.ArtifactType.
const (
	KindRequirements    = "requirements"
	KindHighLevelDesign = "high_level_design"
	KindLowLevelDesign  = "low_level_design"
	KindTask            = "task"
	KindDiagram         = "diagram"
	KindWireframe       = "wireframe"
	KindTest            = "test"
	KindContext         = "context"
)

// Kinds returns every artifact kind, in the order snapshots fetch them.
func Kinds() []string {
	return []string{
		KindRequirements,
		KindHighLevelDesign,
		KindLowLevelDesign,
		KindTask,
		KindDiagram,
		KindWireframe,
		KindTest,
		KindContext,
	}
}

// ArtifactSummary is the engine's view of one existing artifact: identity
// and coordinates only, never content. Content stays in the artifact store
// and reaches the agent through context mentions.
type ArtifactSummary struct {
	ID           string `json:"id"`
	RootID       string `json:"root_id,omitempty"`
	ArtifactType string `json:"artifact_type"`
	SpecName     string `json:"spec_name"`
	ArtifactName string `json:"artifact_name"`
	Version      int    `json:"version"`
	IsLatest     bool   `json:"is_latest"`
	IsLLMContext bool   `json:"is_llm_context,omitempty"`
}

// Key returns the artifact's coordinate key, type/spec/name. Two summaries
// with the same key describe the same logical artifact.
func (a ArtifactSummary) Key() string {
	return a.ArtifactType + "/" + a.SpecName + "/" + a.ArtifactName
}

// ArtifactLinkRecord is one directed relation between two artifacts.
type ArtifactLinkRecord struct {
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Relation string `json:"relation,omitempty"`
}

// GraphSnapshot is a point-in-time view of a project's artifact graph.
// The resolver and guard treat it as immutable.
type GraphSnapshot struct {
	ProjectID string               `json:"project_id"`
	Artifacts []ArtifactSummary    `json:"artifacts"`
	Links     []ArtifactLinkRecord `json:"links,omitempty"`
}

// Empty reports whether the snapshot holds no artifacts at all.
func (s *GraphSnapshot) Empty() bool {
	return len(s.Artifacts) == 0
}

// FindMatch returns the first artifact satisfying the node, or nil.
func (s *GraphSnapshot) FindMatch(def NodeDef) *ArtifactSummary {
	for i := range s.Artifacts {
		if def.Matches(s.Artifacts[i]) {
			return &s.Artifacts[i]
		}
	}
	return nil
}
