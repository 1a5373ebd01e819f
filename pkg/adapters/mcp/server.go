// Package mcp exposes the engine as a Model Context Protocol server so
// coding agents can drive the workflow through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    ports.Orchestrator
	workflow  *domain.Workflow
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the engine.
func NewServer(engine ports.Orchestrator, workflow *domain.Workflow, version string) *Server {
	s := &Server{
		engine:    engine,
		workflow:  workflow,
		mcpServer: server.NewMCPServer("waymark-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_next_instruction
	nextTool := mcp.NewTool("get_next_instruction",
		mcp.WithDescription("Ask the workflow engine what artifact to produce next for a project. Returns an action (GENERATE, UPDATE, NO_OP or WAIT_FOR_INPUT), the target artifact coordinates, a prompt and the context artifacts to mention."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("user_intent", mcp.Description("What the user asked for, in their words (optional)")),
		mcp.WithString("last_known_state", mcp.Description("Node ID the caller last saw completed (optional hint)")),
		mcp.WithOutputSchema[domain.NextInstruction](),
	)
	s.mcpServer.AddTool(nextTool, mcp.NewStructuredToolHandler(s.handleNextInstruction))

	// TOOL: record_progress
	progressTool := mcp.NewTool("record_progress",
		mcp.WithDescription("Report that an instructed artifact now exists so the workflow can advance. Safe to retry: a duplicate acknowledgement never advances the workflow twice."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project identifier")),
		mcp.WithString("artifact_type", mcp.Required(), mcp.Description("Type of the produced artifact, e.g. requirements")),
		mcp.WithString("spec_name", mcp.Required(), mcp.Description("Spec the artifact belongs to")),
		mcp.WithString("artifact_name", mcp.Description("Name of the produced artifact")),
		mcp.WithString("artifact_id", mcp.Description("Store ID of the produced artifact (optional)")),
		mcp.WithString("pending_instruction_id", mcp.Description("ID from the instruction being acknowledged")),
		mcp.WithOutputSchema[domain.ProgressResult](),
	)
	s.mcpServer.AddTool(progressTool, mcp.NewStructuredToolHandler(s.handleRecordProgress))

	// TOOL: get_workflow
	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Get the canonical workflow node table for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.workflow.Nodes)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleNextInstruction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.NextInstruction, error) {
	projectID, _ := args["project_id"].(string)
	if projectID == "" {
		return domain.NextInstruction{}, fmt.Errorf("project_id is required")
	}
	userIntent, _ := args["user_intent"].(string)
	lastKnown, _ := args["last_known_state"].(string)

	instr, err := s.engine.NextInstruction(ctx, projectID, userIntent, lastKnown)
	if err != nil {
		return domain.NextInstruction{}, fmt.Errorf("next instruction failed: %w", err)
	}
	return *instr, nil
}

func (s *Server) handleRecordProgress(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.ProgressResult, error) {
	projectID, _ := args["project_id"].(string)
	if projectID == "" {
		return domain.ProgressResult{}, fmt.Errorf("project_id is required")
	}

	ack := ports.ProgressAck{}
	ack.ArtifactType, _ = args["artifact_type"].(string)
	ack.SpecName, _ = args["spec_name"].(string)
	ack.ArtifactName, _ = args["artifact_name"].(string)
	ack.ArtifactID, _ = args["artifact_id"].(string)
	ack.PendingInstructionID, _ = args["pending_instruction_id"].(string)

	if ack.ArtifactType == "" || ack.SpecName == "" {
		return domain.ProgressResult{}, fmt.Errorf("artifact_type and spec_name are required")
	}

	result, err := s.engine.RecordProgress(ctx, projectID, ack)
	if err != nil {
		return domain.ProgressResult{}, fmt.Errorf("record progress failed: %w", err)
	}
	return *result, nil
}

func (s *Server) registerResources() {
	// EXPOSE: waymark://workflow
	s.mcpServer.AddResource(mcp.NewResource("waymark://workflow", "Canonical Workflow Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.workflow.Nodes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal workflow: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "waymark://workflow",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
