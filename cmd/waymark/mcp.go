package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark"
	"github.com/waymark-ai/waymark/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP server so AI agents can call
get_next_instruction and record_progress as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")

		rt, err := buildRuntime(cmd)
		if err != nil {
			log.Fatalf("Error initializing waymark: %v", err)
		}
		defer rt.cleanup()

		srv := mcp.NewServer(rt.engine, rt.engine.Workflow(), waymark.Version)

		switch transport {
		case "stdio":
			// Keep logs off Stdout; it carries JSON-RPC.
			log.SetOutput(os.Stderr)
			rt.logger.Info("Starting Waymark MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				rt.logger.Error("MCP server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			port := rt.config.Server.MCPPort
			rt.logger.Info("Starting Waymark MCP server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					rt.logger.Error("MCP server execution failed", "err", err)
					os.Exit(1)
				}
			}
			rt.logger.Info("MCP server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
}
