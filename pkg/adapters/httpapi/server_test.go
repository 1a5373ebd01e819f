package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/adapters/httpapi"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/observability"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// stubEngine returns canned responses and records what it was asked.
type stubEngine struct {
	lastProjectID string
	lastIntent    string
	lastAck       ports.ProgressAck
	instruction   *domain.NextInstruction
	result        *domain.ProgressResult
}

func (s *stubEngine) NextInstruction(ctx context.Context, projectID, userIntent, lastKnownState string) (*domain.NextInstruction, error) {
	s.lastProjectID = projectID
	s.lastIntent = userIntent
	return s.instruction, nil
}

func (s *stubEngine) RecordProgress(ctx context.Context, projectID string, ack ports.ProgressAck) (*domain.ProgressResult, error) {
	s.lastProjectID = projectID
	s.lastAck = ack
	return s.result, nil
}

func newTestHandler(t *testing.T, engine ports.Orchestrator, opts ...httpapi.Option) http.Handler {
	t.Helper()

	handler, err := httpapi.NewHandler(context.Background(), engine, domain.DefaultWorkflow(), opts...)
	require.NoError(t, err)
	return handler
}

func TestEmbeddedSpecIsValid(t *testing.T) {
	require.NoError(t, httpapi.ValidateSpec(context.Background()))
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, &stubEngine{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetWorkflow(t *testing.T) {
	handler := newTestHandler(t, &stubEngine{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/workflow", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Nodes []domain.NodeDef `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(domain.DefaultWorkflow().Nodes), len(body.Nodes))
	assert.Equal(t, "1.1", body.Nodes[0].ID)
}

func TestNextInstruction(t *testing.T) {
	engine := &stubEngine{
		instruction: &domain.NextInstruction{
			Action: domain.ActionGenerate,
			Target: domain.ArtifactCoordinates{
				ArtifactType: domain.KindRequirements,
				SpecName:     "product",
				ArtifactName: "business-requirements",
			},
			PendingInstructionID: "pi-1",
		},
	}
	handler := newTestHandler(t, engine)

	body := bytes.NewBufferString(`{"user_intent":"build an MVP"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/projects/proj-1/next-instruction", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proj-1", engine.lastProjectID)
	assert.Equal(t, "build an MVP", engine.lastIntent)

	var instr domain.NextInstruction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &instr))
	assert.Equal(t, domain.ActionGenerate, instr.Action)
	assert.Equal(t, "pi-1", instr.PendingInstructionID)
}

func TestNextInstruction_EmptyBodyAllowed(t *testing.T) {
	engine := &stubEngine{instruction: &domain.NextInstruction{Action: domain.ActionNoOp}}
	handler := newTestHandler(t, engine)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/projects/proj-1/next-instruction", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecordProgress(t *testing.T) {
	engine := &stubEngine{
		result: &domain.ProgressResult{Success: true, CurrentNode: "1.1", CompletedNodes: []string{"1.1"}},
	}
	handler := newTestHandler(t, engine)

	body := bytes.NewBufferString(`{"artifact_type":"requirements","spec_name":"product","artifact_name":"business-requirements","pending_instruction_id":"pi-1"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/projects/proj-1/progress", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi-1", engine.lastAck.PendingInstructionID)

	var result domain.ProgressResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "1.1", result.CurrentNode)
}

func TestRecordProgress_MissingCoordinates(t *testing.T) {
	handler := newTestHandler(t, &stubEngine{result: &domain.ProgressResult{}})

	body := bytes.NewBufferString(`{"artifact_name":"tasks"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/projects/proj-1/progress", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	engine := &stubEngine{instruction: &domain.NextInstruction{Action: domain.ActionNoOp}}
	handler := newTestHandler(t, engine, httpapi.WithJWTSecret(secret))

	// No token: rejected.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/workflow", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Valid token: accepted.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "agent-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/v1/workflow", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong secret: rejected.
	badToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "agent-1"})
	badSigned, err := badToken.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/v1/workflow", nil)
	req.Header.Set("Authorization", "Bearer "+badSigned)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)
	metrics.InstructionIssued("GENERATE")

	handler := newTestHandler(t, &stubEngine{}, httpapi.WithMetricsGatherer(reg))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "waymark_instructions_issued_total")
}
