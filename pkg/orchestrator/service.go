package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/compiler"
	"github.com/chainpilot/chainpilot/pkg/eventbus"
	"github.com/chainpilot/chainpilot/pkg/events"
	"github.com/chainpilot/chainpilot/pkg/identity"
	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/chainpilot/chainpilot/pkg/notify"
	"github.com/chainpilot/chainpilot/pkg/otelhelper"
	"github.com/chainpilot/chainpilot/pkg/planner"
	"github.com/chainpilot/chainpilot/pkg/sanitizer"
	"github.com/chainpilot/chainpilot/pkg/sessions"
	"github.com/chainpilot/chainpilot/pkg/tracker"
)

// Service is the orchestration layer: one plan/execute call runs
// sanitizer -> compiler -> backend -> tracker strictly once, in order.
type Service struct {
	planner  planner.Planner
	context  planner.ContextProvider
	identity identity.Resolver
	backend  backend.Client
	catalog  *blocks.Catalog

	sanitizer *sanitizer.Sanitizer
	compiler  *compiler.Compiler
	sessions  sessions.Store
	tracker   *tracker.Tracker
	notifier  notify.Notifier
	bus       eventbus.EventPublisher

	logger *slog.Logger
	tracer trace.Tracer

	// spawn runs background tracking; tests replace it to observe
	// completion.
	spawn func(fn func())
}

// Deps bundles the service's collaborators.
type Deps struct {
	Planner   planner.Planner
	Context   planner.ContextProvider
	Identity  identity.Resolver
	Backend   backend.Client
	Catalog   *blocks.Catalog
	Sanitizer *sanitizer.Sanitizer
	Compiler  *compiler.Compiler
	Sessions  sessions.Store
	Tracker   *tracker.Tracker
	Notifier  notify.Notifier
	Bus       eventbus.EventPublisher
}

// NewService wires the orchestration service.
func NewService(deps Deps, logger *slog.Logger) *Service {
	return &Service{
		planner:   deps.Planner,
		context:   deps.Context,
		identity:  deps.Identity,
		backend:   deps.Backend,
		catalog:   deps.Catalog,
		sanitizer: deps.Sanitizer,
		compiler:  deps.Compiler,
		sessions:  deps.Sessions,
		tracker:   deps.Tracker,
		notifier:  deps.Notifier,
		bus:       deps.Bus,
		logger:    logger.With("module", "orchestrator"),
		tracer:    otel.Tracer("chainpilot/orchestrator"),
		spawn:     func(fn func()) { go fn() },
	}
}

// PlanRequest asks for a plan from a free-text prompt.
type PlanRequest struct {
	Prompt          string
	UserID          string
	ConversationKey string
}

// Plan turns a prompt into a sanitized plan and stores it in the
// conversation's session. Context fetching is best-effort; a planner
// failure is the only error path.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*models.Plan, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "orchestrator.plan",
		attribute.String(otelhelper.ConversationKey, req.ConversationKey),
		attribute.String(otelhelper.UserIDKey, req.UserID))
	defer span.End()

	hints := s.context.Fetch(ctx, planner.ContextRequest{
		UserID:         req.UserID,
		ConversationID: req.ConversationKey,
		Prompt:         req.Prompt,
	})

	plan, err := s.generate(ctx, req, hints)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	// One refinement attempt: refetch context targeted at the missing
	// fields, and only re-plan when that actually produced something.
	if plan.HasMissingInputs() {
		targeted := s.context.Fetch(ctx, planner.ContextRequest{
			UserID:         req.UserID,
			ConversationID: req.ConversationKey,
			Fields:         plan.MissingFields(),
			Prompt:         req.Prompt,
		})

		if len(targeted) > 0 {
			refined, err := s.generate(ctx, req, mergeHints(hints, targeted))
			if err == nil {
				plan = refined
			} else {
				s.logger.Warn("Plan refinement failed, keeping first plan", "error", err)
			}
		}
	}

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowNameKey, plan.WorkflowName),
		attribute.Int(otelhelper.PlanStepsKey, len(plan.Steps)),
	)

	s.updateSession(ctx, req.ConversationKey, func(session *models.Session) {
		session.UserID = req.UserID
		session.LastPlan = plan
	})

	s.publish(ctx, req.ConversationKey, events.PlanCreated{
		BaseEvent:    events.NewBaseEvent(events.PlanCreatedEvent, req.ConversationKey, req.UserID),
		WorkflowName: plan.WorkflowName,
		Steps:        len(plan.Steps),
		MissingCount: len(plan.MissingInputs),
	})

	return plan, nil
}

func (s *Service) generate(ctx context.Context, req PlanRequest, hints map[string]string) (*models.Plan, error) {
	raw, err := s.planner.GeneratePlan(ctx, planner.Request{
		System:    s.systemPrompt(hints),
		Prompt:    req.Prompt,
		RequestID: uuid.NewString(),
		UserID:    req.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlannerUnavailable, err)
	}

	return s.sanitizer.SanitizeResponse(raw), nil
}

// systemPrompt describes the available blocks and any known context to
// the planning model.
func (s *Service) systemPrompt(hints map[string]string) string {
	var b strings.Builder

	b.WriteString("You translate user requests into automation plans. Available blocks:\n")

	for _, def := range s.catalog.List() {
		b.WriteString("- " + def.ID + ": " + def.Description + "\n")
	}

	if len(hints) > 0 {
		keys := make([]string, 0, len(hints))
		for key := range hints {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		b.WriteString("Known context:\n")

		for _, key := range keys {
			b.WriteString("- " + key + ": " + hints[key] + "\n")
		}
	}

	return b.String()
}

// ExecuteRequest resolves and runs a plan. Resolution priority:
// explicit plan, then a fresh plan from the prompt, then the session's
// last plan.
type ExecuteRequest struct {
	Prompt          string
	Plan            *models.Plan
	UserID          string
	ConversationKey string
}

// ExecuteResult reports what execution produced.
type ExecuteResult struct {
	WorkflowID      string             `json:"workflow_id"`
	ExecutionID     string             `json:"execution_id,omitempty"`
	TimeBlockID     string             `json:"time_block_id,omitempty"`
	Schedule        *compiler.Schedule `json:"schedule,omitempty"`
	ExecutionUserID string             `json:"execution_user_id"`
	Warnings        []string           `json:"warnings,omitempty"`
}

// Execute compiles the resolved plan, creates the workflow, starts (or
// schedules) it, and launches background tracking.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "orchestrator.execute",
		attribute.String(otelhelper.ConversationKey, req.ConversationKey),
		attribute.String(otelhelper.UserIDKey, req.UserID))
	defer span.End()

	plan, err := s.resolvePlan(ctx, req)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if plan.HasMissingInputs() {
		return nil, fmt.Errorf("%w: %s", ErrPlanHasMissingInputs, strings.Join(plan.MissingFields(), ", "))
	}

	link, err := s.resolveLink(ctx, req.ConversationKey, plan)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	cctx := compiler.Context{ConversationID: req.ConversationKey}
	if link != nil {
		cctx.ProviderConnectionID = link.ConnectionID
		cctx.DestinationID = link.DestinationID
	}

	compiled, err := s.compiler.Compile(plan, cctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	executionUserID := req.UserID
	if link != nil && link.UserID != "" {
		executionUserID = link.UserID
	}

	workflowID, err := s.createWorkflow(ctx, executionUserID, compiled.Workflow, link)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, workflowID))

	s.publish(ctx, req.ConversationKey, events.WorkflowCreated{
		BaseEvent:  events.NewBaseEvent(events.WorkflowCreatedEvent, req.ConversationKey, executionUserID),
		WorkflowID: workflowID,
		Nodes:      len(compiled.Workflow.Nodes),
	})

	destination := req.ConversationKey
	if link != nil && link.DestinationID != "" {
		destination = link.DestinationID
	}

	result := &ExecuteResult{
		WorkflowID:      workflowID,
		Schedule:        compiled.Schedule,
		ExecutionUserID: executionUserID,
		Warnings:        compiled.Warnings,
	}

	// Tracking outlives the request; detach it from the request context.
	trackCtx := context.WithoutCancel(ctx)

	if compiled.Schedule != nil {
		timeBlockID, err := s.backend.CreateTimeTrigger(ctx, executionUserID, backend.TimeTriggerRequest{
			WorkflowID:      workflowID,
			IntervalSeconds: compiled.Schedule.IntervalSeconds,
			DurationSeconds: compiled.Schedule.DurationSeconds,
			Cron:            compiled.Schedule.Cron,
		})
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("registering recurring trigger: %w", err)
		}

		result.TimeBlockID = timeBlockID
		span.SetAttributes(attribute.String(otelhelper.TimeBlockIDKey, timeBlockID))

		s.publish(ctx, req.ConversationKey, events.ScheduleRegistered{
			BaseEvent:       events.NewBaseEvent(events.ScheduleRegisteredEvent, req.ConversationKey, executionUserID),
			WorkflowID:      workflowID,
			TimeBlockID:     timeBlockID,
			IntervalSeconds: compiled.Schedule.IntervalSeconds,
			DurationSeconds: compiled.Schedule.DurationSeconds,
		})

		window := time.Duration(compiled.Schedule.DurationSeconds) * time.Second
		s.spawn(func() {
			s.tracker.TrackScheduled(trackCtx, executionUserID, workflowID, timeBlockID, destination, window)
		})
	} else {
		execution, err := s.backend.ExecuteWorkflow(ctx, executionUserID, workflowID)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, fmt.Errorf("starting execution: %w", err)
		}

		result.ExecutionID = execution.ExecutionID
		span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ExecutionID))

		s.publish(ctx, req.ConversationKey, events.ExecutionStarted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, req.ConversationKey, executionUserID),
			WorkflowID:  workflowID,
			ExecutionID: execution.ExecutionID,
		})

		s.spawn(func() {
			s.tracker.Track(trackCtx, executionUserID, execution.ExecutionID, destination)
		})
	}

	s.updateSession(ctx, req.ConversationKey, func(session *models.Session) {
		session.UserID = req.UserID
		session.LastPlan = plan
		session.LastWorkflowID = workflowID

		// Only overwrite the identifier this call produced; a
		// scheduled run must not wipe the last execution id and
		// vice versa.
		if result.ExecutionID != "" {
			session.LastExecutionID = result.ExecutionID
		}

		if result.TimeBlockID != "" {
			session.LastTimeBlockID = result.TimeBlockID
		}
	})

	return result, nil
}

// createWorkflow attempts creation with exactly one narrow recovery:
// when the backend rejects notification nodes for a missing connection
// id and the identity link can supply one, the nodes are patched in
// place and creation is retried once.
func (s *Service) createWorkflow(ctx context.Context, userID string, workflow *models.Workflow, link *identity.Link) (string, error) {
	workflowID, err := s.backend.CreateWorkflow(ctx, userID, workflow)
	if err == nil {
		return workflowID, nil
	}

	apiErr, ok := backend.AsAPIError(err)
	if !ok || link == nil || link.ConnectionID == "" {
		return "", err
	}

	indexes := apiErr.MissingConnectionNodes()
	if len(indexes) == 0 {
		return "", err
	}

	patched := false

	for _, index := range indexes {
		if index < 0 || index >= len(workflow.Nodes) {
			continue
		}

		node := workflow.Nodes[index]
		if node.Config == nil {
			node.Config = map[string]any{}
		}

		node.Config["connection_id"] = link.ConnectionID
		patched = true
	}

	if !patched {
		return "", err
	}

	s.logger.Info("Retrying workflow creation with patched connection id", "nodes", indexes)

	return s.backend.CreateWorkflow(ctx, userID, workflow)
}

func (s *Service) resolvePlan(ctx context.Context, req ExecuteRequest) (*models.Plan, error) {
	if req.Plan != nil {
		return req.Plan, nil
	}

	if strings.TrimSpace(req.Prompt) != "" {
		return s.Plan(ctx, PlanRequest{
			Prompt:          req.Prompt,
			UserID:          req.UserID,
			ConversationKey: req.ConversationKey,
		})
	}

	session, err := s.sessions.Get(ctx, req.ConversationKey)
	if err == nil && session.LastPlan != nil {
		return session.LastPlan, nil
	}

	return nil, ErrNoPlanToExecute
}

// resolveLink enforces the identity-link requirement: steps that act
// on chain or message the user need a linked account, and its absence
// is a hard, actionable failure.
func (s *Service) resolveLink(ctx context.Context, conversationKey string, plan *models.Plan) (*identity.Link, error) {
	link, err := s.identity.Resolve(ctx, conversationKey)
	if err == nil {
		return link, nil
	}

	if errors.Is(err, identity.ErrNotLinked) {
		if planRequiresLink(plan) {
			return nil, ErrAccountNotLinked
		}

		return nil, nil
	}

	return nil, fmt.Errorf("resolving identity link: %w", err)
}

func planRequiresLink(plan *models.Plan) bool {
	for _, step := range plan.Steps {
		switch step.BlockID {
		case blocks.BlockNotify, blocks.BlockUniswapSwap, blocks.BlockOneinchSwap:
			return true
		}
	}

	return false
}

// updateSession does a read-modify-replace of the conversation's
// session so identifiers untouched by this call survive.
func (s *Service) updateSession(ctx context.Context, key string, mutate func(*models.Session)) {
	session, err := s.sessions.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sessions.ErrNotFound) {
			s.logger.Warn("Session read failed", "key", key, "error", err)
		}

		session = &models.Session{}
	}

	mutate(session)
	session.UpdatedAt = time.Now().UTC()

	if err := s.sessions.Put(ctx, key, session); err != nil {
		s.logger.Warn("Session write failed", "key", key, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.bus == nil {
		return
	}

	if err := s.bus.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Event publish failed", "event_type", event.GetType(), "error", err)
	}
}

func mergeHints(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))

	for key, value := range base {
		merged[key] = value
	}

	for key, value := range extra {
		merged[key] = value
	}

	return merged
}
