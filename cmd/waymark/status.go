package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/pkg/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status <project-id>",
	Short: "Show the project's position in the workflow",
	Long:  `Prints the persisted workflow state of a project as a per-node table.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		projectID := args[0]

		rt, err := buildRuntime(cmd)
		if err != nil {
			fmt.Printf("Error initializing waymark: %v\n", err)
			os.Exit(1)
		}
		defer rt.cleanup()

		state, err := rt.store.LoadState(cmd.Context(), projectID)
		if err != nil {
			if err == domain.ErrStateNotFound {
				fmt.Printf("No workflow state for project %q yet. Run 'waymark next %s' first.\n", projectID, projectID)
				os.Exit(1)
			}
			fmt.Printf("Error loading state: %v\n", err)
			os.Exit(1)
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.SetTitle("Project %s (current node: %s)", projectID, orDash(state.CurrentNode))
		tw.AppendHeader(table.Row{"Node", "Artifact", "Status", "Flags"})

		for _, node := range rt.engine.Workflow().Nodes {
			tw.AppendRow(table.Row{
				node.ID,
				node.ArtifactName,
				nodeStatus(node, state),
				nodeFlags(node),
			})
		}
		tw.Render()

		if state.LastDecisionReason != "" {
			fmt.Printf("\nLast decision: %s\n", state.LastDecisionReason)
		}
		if state.PendingInstructionID != "" {
			fmt.Printf("Pending instruction: %s\n", state.PendingInstructionID)
		}
	},
}

func nodeStatus(node domain.NodeDef, state *domain.WorkflowState) string {
	switch {
	case slices.Contains(state.CompletedNodes, node.ID):
		return "completed"
	case node.ID == state.CurrentNode:
		return "current"
	case slices.Contains(state.BlockedNodes, node.ID):
		return "blocked"
	case slices.Contains(state.SkippedNodes, node.ID):
		return "skipped"
	default:
		return "pending"
	}
}

func nodeFlags(node domain.NodeDef) string {
	var flags []string
	if node.Optional {
		flags = append(flags, "optional")
	}
	if node.AnyInSpec || node.MultiFile {
		flags = append(flags, "multi")
	}
	if node.CreateOnlyIfUserAsks {
		flags = append(flags, "on-request")
	}
	if len(flags) == 0 {
		return ""
	}
	out := flags[0]
	for _, f := range flags[1:] {
		out += ", " + f
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
