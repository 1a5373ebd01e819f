package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/internal/presentation/tui"
	"github.com/waymark-ai/waymark/pkg/domain"
)

var nextCmd = &cobra.Command{
	Use:   "next <project-id>",
	Short: "Ask the engine what to do next",
	Long:  `Computes the next instruction for a project and prints it, styled for the terminal or as raw JSON.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		projectID := args[0]
		intent, _ := cmd.Flags().GetString("intent")
		lastKnown, _ := cmd.Flags().GetString("last-known")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := buildRuntime(cmd)
		if err != nil {
			fmt.Printf("Error initializing waymark: %v\n", err)
			os.Exit(1)
		}
		defer rt.cleanup()

		instr, err := rt.engine.NextInstruction(cmd.Context(), projectID, intent, lastKnown)
		if err != nil {
			fmt.Printf("Error computing next instruction: %v\n", err)
			os.Exit(1)
		}

		if asJSON {
			out, _ := json.MarshalIndent(instr, "", "  ")
			fmt.Println(string(out))
			return
		}

		render := tui.NewRenderer()
		out, err := render(formatInstruction(instr))
		if err != nil {
			out = formatInstruction(instr)
		}
		fmt.Print(out)
	},
}

// formatInstruction lays out an instruction as markdown for terminal display.
func formatInstruction(instr *domain.NextInstruction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", instr.Action)
	if instr.Target.ArtifactName != "" {
		fmt.Fprintf(&b, "**Target:** `%s/%s/%s`\n\n",
			instr.Target.ArtifactType, instr.Target.SpecName, instr.Target.ArtifactName)
	}
	if instr.CurrentState != "" {
		fmt.Fprintf(&b, "**State:** %s\n\n", instr.CurrentState)
	}

	if instr.Prompt != "" {
		b.WriteString("## Prompt\n\n")
		b.WriteString(instr.Prompt)
		b.WriteString("\n")
	}

	if len(instr.DecisionTrace.Reasoning) > 0 {
		b.WriteString("\n## Reasoning\n\n")
		for _, line := range instr.DecisionTrace.Reasoning {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if instr.PendingInstructionID != "" {
		fmt.Fprintf(&b, "\n*Acknowledge with pending instruction ID `%s`.*\n", instr.PendingInstructionID)
	}

	return b.String()
}

func init() {
	rootCmd.AddCommand(nextCmd)

	nextCmd.Flags().String("intent", "", "What you want, in your own words")
	nextCmd.Flags().String("last-known", "", "Node ID you last saw completed (optional hint)")
	nextCmd.Flags().Bool("json", false, "Print the raw instruction as JSON")
}
