package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate [workflow-file]",
	Short: "Check a workflow table for consistency",
	Long: `Validates a workflow YAML file: unique node IDs, known dependencies and
strictly forward (acyclic) dependency order. Without an argument, the
built-in table is checked.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Workflow is valid! ✅")
	},
}

func runValidate(args []string) error {
	if len(args) == 0 {
		return domain.DefaultWorkflow().Validate()
	}

	_, err := domain.LoadWorkflow(args[0])
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
