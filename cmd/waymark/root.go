package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "waymark",
	Short: "Waymark sequences software project artifacts for AI coding agents",
	Long: `Waymark decides what artifact an AI coding agent should produce next.

It maps the artifacts that already exist onto a canonical dependency-ordered
node table, compiles a bounded instruction for the next one, and advances
exactly once per acknowledged instruction.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default: ./waymark.yaml if present)")
}
