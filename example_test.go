package waymark_test

import (
	"context"
	"fmt"
	"log"

	"github.com/waymark-ai/waymark"
	"github.com/waymark-ai/waymark/pkg/adapters/memory"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// ExampleNew demonstrates the two-call protocol over in-memory adapters.
// This is the smallest useful embedding: no server, no files, no redis.
func ExampleNew() {
	store := memory.NewStore()
	source := memory.NewSource()

	engine, err := waymark.New(store, source)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// 1. Ask what should happen next. A fresh project starts at the first
	// node of the canonical table.
	instr, err := engine.NextInstruction(ctx, "demo", "build an MVP", "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Action: %s\n", instr.Action)
	fmt.Printf("Target: %s/%s/%s\n",
		instr.Target.ArtifactType, instr.Target.SpecName, instr.Target.ArtifactName)

	// 2. The driving agent produces the artifact out of band, then
	// acknowledges the instruction so the workflow advances.
	result, err := engine.RecordProgress(ctx, "demo", ports.ProgressAck{
		ArtifactType:         instr.Target.ArtifactType,
		SpecName:             instr.Target.SpecName,
		ArtifactName:         instr.Target.ArtifactName,
		PendingInstructionID: instr.PendingInstructionID,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Advanced to: %s\n", result.CurrentNode)
	// Output:
	// Action: GENERATE
	// Target: requirements/product/business-requirements
	// Advanced to: 1.2
}
