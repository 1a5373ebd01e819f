// Package waymark orchestrates the production of a software project's
// artifacts in a fixed, dependency-ordered sequence.
//
// The engine never generates content itself. It maps the artifacts that
// already exist onto a canonical node table, decides the single next step,
// compiles a bounded prompt for the driving agent, and advances persisted
// state exactly once per acknowledged instruction, even across restarts,
// retries and duplicate acks.
//
// The two-call protocol is deliberately small:
//
//	engine, _ := waymark.New(store, source)
//	instr, _ := engine.NextInstruction(ctx, "proj-1", "build an MVP", "")
//	// ... agent generates the artifact, pushes it to the store ...
//	engine.RecordProgress(ctx, "proj-1", ports.ProgressAck{
//		ArtifactType:         instr.Target.ArtifactType,
//		SpecName:             instr.Target.SpecName,
//		ArtifactName:         instr.Target.ArtifactName,
//		PendingInstructionID: instr.PendingInstructionID,
//	})
//
// Persistence, artifact sources, HTTP/MCP surfaces and locking are adapters
// under pkg/adapters; the decision core (resolver, context assembly,
// instruction compiler, guard) is pure and lives under internal/.
package waymark
