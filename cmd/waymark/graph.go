package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/internal/presentation/graph"
	"github.com/waymark-ai/waymark/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [project-id]",
	Short: "Export the workflow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the workflow node table.
With a project ID, the project's completed, current and blocked nodes are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := buildRuntime(cmd)
		if err != nil {
			fmt.Printf("Error initializing waymark: %v\n", err)
			os.Exit(1)
		}
		defer rt.cleanup()

		var overlay *graph.Overlay
		if len(args) > 0 {
			state, err := rt.store.LoadState(cmd.Context(), args[0])
			if err != nil && err != domain.ErrStateNotFound {
				fmt.Printf("Error loading state: %v\n", err)
				os.Exit(1)
			}
			if state != nil {
				overlay = &graph.Overlay{
					CompletedNodes: state.CompletedNodes,
					CurrentNode:    state.CurrentNode,
					BlockedNodes:   state.BlockedNodes,
				}
			}
		}

		fmt.Print(graph.GenerateMermaid(rt.engine.Workflow(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
