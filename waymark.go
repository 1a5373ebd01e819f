package waymark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/waymark-ai/waymark/internal/assembly"
	"github.com/waymark-ai/waymark/internal/compiler"
	"github.com/waymark-ai/waymark/internal/guard"
	"github.com/waymark-ai/waymark/internal/logging"
	"github.com/waymark-ai/waymark/internal/resolver"
	"github.com/waymark-ai/waymark/internal/snapshot"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/observability"
	"github.com/waymark-ai/waymark/pkg/ports"
	"github.com/waymark-ai/waymark/pkg/project"
)

// Version is the library version, overridable at build time.
var Version = "0.3.0"

// Engine is the workflow orchestrator: it decides what a project's driving
// agent should do next and advances state exactly once per acknowledgement.
// It implements ports.Orchestrator.
type Engine struct {
	workflow *domain.Workflow
	store    ports.Store
	source   ports.ArtifactSource
	locker   ports.DistributedLocker

	snapshots *snapshot.Builder
	locks     *project.LockManager
	policy    assembly.Policy
	metrics   *observability.Metrics
	logger    *slog.Logger

	// driver identifies who is driving the workflow in persisted state.
	driver  string
	lockTTL time.Duration

	newID func() string
	now   func() time.Time
}

var _ ports.Orchestrator = (*Engine)(nil)

// Option configures the Engine.
type Option func(*Engine)

// WithWorkflow replaces the canonical node table.
func WithWorkflow(wf *domain.Workflow) Option {
	return func(e *Engine) { e.workflow = wf }
}

// WithLogger sets a structured logger (default: no-op).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithContextPolicy overrides the context selection policy.
func WithContextPolicy(p assembly.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDistributedLocker extends per-project serialization across replicas.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithLockTTL sets the distributed lock expiry (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.lockTTL = ttl }
}

// WithDriver sets the source recorded in persisted state (default "claude").
func WithDriver(driver string) Option {
	return func(e *Engine) { e.driver = driver }
}

// New initializes the engine over a persistence store and an artifact source.
// The workflow table is validated once here; an invalid table fails fast.
func New(store ports.Store, source ports.ArtifactSource, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if source == nil {
		return nil, fmt.Errorf("artifact source is required")
	}

	e := &Engine{
		workflow: domain.DefaultWorkflow(),
		store:    store,
		source:   source,
		policy:   assembly.DefaultPolicy(),
		driver:   "claude",
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if err := e.workflow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workflow table: %w", err)
	}

	e.snapshots = snapshot.New(source, e.logger)

	lockOpts := []project.Option{project.WithLogger(e.logger)}
	if e.locker != nil {
		lockOpts = append(lockOpts, project.WithLocker(e.locker))
	}
	if e.lockTTL > 0 {
		lockOpts = append(lockOpts, project.WithLockTTL(e.lockTTL))
	}
	e.locks = project.NewLockManager(lockOpts...)

	return e, nil
}

// Workflow returns the node table the engine runs on.
func (e *Engine) Workflow() *domain.Workflow {
	return e.workflow
}

// NextInstruction decides the single next step for a project and hands it
// out with a fresh pending instruction ID. The whole decision runs under the
// project lock: load state, snapshot, resolve, assemble, compile, guard,
// persist, return.
func (e *Engine) NextInstruction(ctx context.Context, projectID, userIntent, lastKnownState string) (*domain.NextInstruction, error) {
	var instr *domain.NextInstruction

	err := e.locks.WithLock(ctx, projectID, func(ctx context.Context) error {
		state, err := e.loadOrCreateState(ctx, projectID)
		if err != nil {
			return err
		}
		if err := e.upsertIntent(ctx, projectID, userIntent); err != nil {
			return err
		}

		started := e.now()
		snap, err := e.snapshots.Build(ctx, projectID)
		if err != nil {
			return err
		}
		e.metrics.SnapshotBuilt(e.now().Sub(started).Seconds())

		hint := lastKnownState
		if hint == "" {
			hint = state.CurrentNode
		}
		rs := resolver.Resolve(e.workflow, snap, hint)

		instr = e.compileDraft(rs, snap)

		verdict := guard.Check(e.workflow, instr, snap)
		if !verdict.OK {
			e.metrics.GuardRejected(verdict.Reason)
			e.downgrade(instr, verdict)
		}

		state.CurrentNode = rs.CurrentNode
		state.CompletedNodes = rs.CompletedNodes
		state.BlockedNodes = rs.BlockedNodes
		state.SkippedNodes = rs.SkippableNodes
		state.Source = e.driver
		if userIntent != "" {
			state.LastUserIntent = userIntent
		}
		state.LastDecisionReason = lastReason(instr.DecisionTrace.Reasoning)
		state.PendingInstructionID = instr.PendingInstructionID
		state.UpdatedAt = e.now().UTC()

		if err := e.store.SaveState(ctx, state); err != nil {
			return fmt.Errorf("persist workflow state: %w", err)
		}

		e.metrics.InstructionIssued(string(instr.Action))
		e.logger.Info("instruction issued",
			"project_id", projectID,
			"action", instr.Action,
			"target", instr.Target.ArtifactName,
			"pending_id", instr.PendingInstructionID,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return instr, nil
}

// compileDraft turns a resolved state into a full draft instruction.
func (e *Engine) compileDraft(rs domain.ResolvedState, snap *domain.GraphSnapshot) *domain.NextInstruction {
	instr := &domain.NextInstruction{
		Action:         rs.RecommendedAction,
		CurrentState:   rs.CurrentNode,
		NextCandidates: rs.NextCandidates,
		Rules:          assembly.Rules,
		DecisionTrace: domain.DecisionTrace{
			DetectedState: detectedState(rs),
			Reasoning:     rs.Reasoning,
			RulesApplied:  []string{"canonical-order", "dependency-gating", "optional-skip", "duplicate-prevention"},
			LLMConsulted:  false,
		},
	}

	if len(rs.NextCandidates) > 0 {
		if def, ok := e.workflow.Node(rs.NextCandidates[0].NodeID); ok {
			instr.Target = def.Target()
		}
	}

	instr.ContextArtifacts = assembly.Select(e.workflow, rs, snap, e.policy)
	instr.Prompt, instr.ExpectedOutcome = compiler.Compile(instr.Action, instr.Target, instr.ContextArtifacts, instr.Rules)

	// Only a generative offer needs acknowledging.
	if instr.Action == domain.ActionGenerate || instr.Action == domain.ActionUpdate {
		instr.PendingInstructionID = e.newID()
	}

	return instr
}

// downgrade applies a guard verdict: substitute the suggested action, blank
// the prompt, drop the pending offer, and record the reason so repeated calls
// surface the same stable outcome.
func (e *Engine) downgrade(instr *domain.NextInstruction, verdict guard.Result) {
	instr.Action = verdict.SuggestedAction
	instr.PendingInstructionID = ""
	instr.Prompt, instr.ExpectedOutcome = compiler.Compile(instr.Action, instr.Target, instr.ContextArtifacts, instr.Rules)
	instr.DecisionTrace.Reasoning = append(instr.DecisionTrace.Reasoning, verdict.Reason)
}

// RecordProgress acknowledges a handed-out instruction. Acks carrying a
// pending ID that does not match the stored one are retries of an already
// applied step: they succeed without advancing anything.
func (e *Engine) RecordProgress(ctx context.Context, projectID string, ack ports.ProgressAck) (*domain.ProgressResult, error) {
	var result *domain.ProgressResult

	err := e.locks.WithLock(ctx, projectID, func(ctx context.Context) error {
		state, err := e.store.LoadState(ctx, projectID)
		if errors.Is(err, domain.ErrStateNotFound) {
			e.metrics.ProgressAck("unknown_project")
			e.logger.Warn("progress ack for unknown project", "project_id", projectID)
			result = &domain.ProgressResult{Success: false}
			return nil
		}
		if err != nil {
			return err
		}

		if ack.PendingInstructionID != "" && ack.PendingInstructionID != state.PendingInstructionID {
			// Stale or duplicate acknowledgement: already applied, do not
			// advance again.
			e.metrics.ProgressAck("stale")
			result = &domain.ProgressResult{
				Success:        true,
				CurrentNode:    state.CurrentNode,
				CompletedNodes: state.CompletedNodes,
			}
			return nil
		}

		def, ok := resolver.ResolveNode(e.workflow, domain.ArtifactCoordinates{
			ArtifactType: ack.ArtifactType,
			SpecName:     ack.SpecName,
			ArtifactName: ack.ArtifactName,
		})
		if !ok {
			e.metrics.ProgressAck("unknown_node")
			e.logger.Warn("progress ack matches no workflow node",
				"project_id", projectID,
				"artifact_type", ack.ArtifactType,
				"spec_name", ack.SpecName,
			)
			result = &domain.ProgressResult{Success: false}
			return nil
		}

		state.MarkCompleted(def.ID)
		if next, ok := resolver.Successor(e.workflow, def.ID); ok {
			state.CurrentNode = next.ID
		} else {
			state.CurrentNode = def.ID
		}
		state.PendingInstructionID = ""
		state.UpdatedAt = e.now().UTC()

		if err := e.store.SaveState(ctx, state); err != nil {
			return fmt.Errorf("persist workflow state: %w", err)
		}

		e.metrics.ProgressAck("advanced")
		e.logger.Info("progress recorded",
			"project_id", projectID,
			"node", def.ID,
			"current", state.CurrentNode,
		)
		result = &domain.ProgressResult{
			Success:        true,
			CurrentNode:    state.CurrentNode,
			CompletedNodes: state.CompletedNodes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadOrCreateState fetches the project record, constructing (and persisting)
// a default on first use. Corrupt records surface as not-found in the store
// adapters, so a damaged file behaves like a fresh project.
func (e *Engine) loadOrCreateState(ctx context.Context, projectID string) (*domain.WorkflowState, error) {
	state, err := e.store.LoadState(ctx, projectID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, domain.ErrStateNotFound) {
		return nil, fmt.Errorf("load workflow state: %w", err)
	}

	state = domain.NewWorkflowState(projectID)
	state.Source = e.driver
	if err := e.store.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("initialize workflow state: %w", err)
	}
	return state, nil
}

// upsertIntent creates the intent record on first use and rewrites it only
// when the active intent text actually changed.
func (e *Engine) upsertIntent(ctx context.Context, projectID, userIntent string) error {
	intent, err := e.store.LoadIntent(ctx, projectID)
	if errors.Is(err, domain.ErrIntentNotFound) {
		if userIntent == "" {
			return nil
		}
		return e.store.SaveIntent(ctx, domain.NewWorkflowIntent(projectID, userIntent))
	}
	if err != nil {
		return fmt.Errorf("load workflow intent: %w", err)
	}

	if userIntent == "" || userIntent == intent.ActiveIntent {
		return nil
	}
	intent.ActiveIntent = userIntent
	intent.UpdatedAt = e.now().UTC()
	return e.store.SaveIntent(ctx, intent)
}

func detectedState(rs domain.ResolvedState) string {
	if rs.CurrentNode == "" {
		return "empty"
	}
	if rs.RecommendedAction == domain.ActionNoOp && len(rs.NextCandidates) == 0 {
		return "complete"
	}
	if rs.RecommendedAction == domain.ActionWaitForInput {
		return "blocked"
	}
	return "in-progress"
}

func lastReason(reasoning []string) string {
	if len(reasoning) == 0 {
		return ""
	}
	return reasoning[len(reasoning)-1]
}
