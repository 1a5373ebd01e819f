// Package httpapi exposes the engine over HTTP for remote drivers.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/waymark-ai/waymark/api"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// ValidateSpec parses the embedded OpenAPI document and checks it against
// the 3.0 schema. Called at server construction so a broken spec fails the
// boot, not the first /openapi.yaml request.
func ValidateSpec(ctx context.Context) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return fmt.Errorf("failed to parse embedded OpenAPI spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("embedded OpenAPI spec is invalid: %w", err)
	}
	return nil
}

// Server handles the engine's HTTP surface.
type Server struct {
	engine    ports.Orchestrator
	workflow  *domain.Workflow
	logger    *slog.Logger
	jwtSecret string
	gatherer  prometheus.Gatherer
}

type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithJWTSecret enables bearer-token authentication on the /v1 routes.
// Without it the API is open, which suits local single-user setups.
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// WithMetricsGatherer mounts /metrics backed by the given gatherer.
func WithMetricsGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(ctx context.Context, engine ports.Orchestrator, workflow *domain.Workflow, opts ...Option) (http.Handler, error) {
	if err := ValidateSpec(ctx); err != nil {
		return nil, err
	}

	server := &Server{
		engine:   engine,
		workflow: workflow,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	r.Get("/health", server.handleHealth)
	r.Get("/openapi.yaml", server.handleOpenAPISpec)
	r.Get("/swagger", server.handleSwagger)
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if server.jwtSecret != "" {
			r.Use(server.requireBearerToken)
		}
		r.Get("/workflow", server.handleGetWorkflow)
		r.Post("/projects/{projectId}/next-instruction", server.handleNextInstruction)
		r.Post("/projects/{projectId}/progress", server.handleRecordProgress)
	})

	return enableCORS(r), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(api.Spec)
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"nodes": s.workflow.Nodes})
}

type nextInstructionRequest struct {
	UserIntent     string `json:"user_intent"`
	LastKnownState string `json:"last_known_state"`
}

func (s *Server) handleNextInstruction(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var req nextInstructionRequest
	// Empty body is a valid "just tell me what's next" call.
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	instr, err := s.engine.NextInstruction(r.Context(), projectID, req.UserIntent, req.LastKnownState)
	if err != nil {
		s.logger.Error("next-instruction failed", "project_id", projectID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute next instruction")
		return
	}

	writeJSON(w, http.StatusOK, instr)
}

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	var ack ports.ProgressAck
	if err := json.NewDecoder(r.Body).Decode(&ack); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ack.ArtifactType == "" || ack.SpecName == "" {
		writeError(w, http.StatusBadRequest, "artifact_type and spec_name are required")
		return
	}

	result, err := s.engine.RecordProgress(r.Context(), projectID, ack)
	if err != nil {
		s.logger.Error("record-progress failed", "project_id", projectID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to record progress")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Waymark API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
