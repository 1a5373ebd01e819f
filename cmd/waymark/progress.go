package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/pkg/ports"
)

var progressCmd = &cobra.Command{
	Use:   "progress <project-id> <type/spec/name>",
	Short: "Acknowledge a produced artifact",
	Long: `Reports that an instructed artifact now exists so the workflow can advance.

The artifact is addressed by its coordinates, e.g.:

  waymark progress proj-1 requirements/product/business-requirements --pending-id <id>`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		projectID := args[0]

		parts := strings.SplitN(args[1], "/", 3)
		if len(parts) < 2 {
			fmt.Println("Artifact coordinates must be type/spec or type/spec/name")
			os.Exit(1)
		}
		ack := ports.ProgressAck{
			ArtifactType: parts[0],
			SpecName:     parts[1],
		}
		if len(parts) == 3 {
			ack.ArtifactName = parts[2]
		}
		ack.ArtifactID, _ = cmd.Flags().GetString("artifact-id")
		ack.PendingInstructionID, _ = cmd.Flags().GetString("pending-id")

		rt, err := buildRuntime(cmd)
		if err != nil {
			fmt.Printf("Error initializing waymark: %v\n", err)
			os.Exit(1)
		}
		defer rt.cleanup()

		result, err := rt.engine.RecordProgress(cmd.Context(), projectID, ack)
		if err != nil {
			fmt.Printf("Error recording progress: %v\n", err)
			os.Exit(1)
		}

		if !result.Success {
			fmt.Println("Progress not recorded (unknown project or unmatched artifact)")
			os.Exit(1)
		}
		fmt.Printf("Recorded. Current node: %s (%d completed)\n",
			result.CurrentNode, len(result.CompletedNodes))
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)

	progressCmd.Flags().String("artifact-id", "", "Store ID of the produced artifact")
	progressCmd.Flags().String("pending-id", "", "Pending instruction ID being acknowledged")
}
