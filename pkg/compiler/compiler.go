// Package compiler turns a sanitized plan into an execution-ready
// workflow graph, applying per-node-type normalization for chains,
// tokens, price feeds and conditions. Every normalization failure with
// a safe default degrades to a warning; only structural failures are
// errors.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/models"
)

var (
	// ErrEmptyPlan is returned when the plan has no steps at all.
	ErrEmptyPlan = errors.New("plan has no steps")
	// ErrNoActionableSteps is returned when the schedule trigger is the
	// only step.
	ErrNoActionableSteps = errors.New("plan has no actionable steps")
	// ErrUnknownBlock indicates a step whose block id is not in the
	// catalog. The sanitizer should have dropped it; this is defense in
	// depth.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrInvalidGraph indicates the compiled graph violates its own
	// invariants, which is a compiler defect rather than a user error.
	ErrInvalidGraph = errors.New("compiled graph is invalid")
)

const defaultCategory = "automation"

// Layout constants for the left-to-right display hint.
const (
	layoutOriginX  = 80
	layoutSpacingX = 260
	layoutRowY     = 200
)

// Context carries per-request compilation inputs.
type Context struct {
	ConversationID       string
	Category             string
	Tags                 []string
	ProviderConnectionID string
	DestinationID        string
}

// Result is the output of one compilation.
type Result struct {
	Workflow *models.Workflow
	Warnings []string
	Schedule *Schedule
}

// Compiler compiles plans against a block catalog.
type Compiler struct {
	catalog  *blocks.Catalog
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a compiler.
func New(catalog *blocks.Catalog, logger *slog.Logger) *Compiler {
	return &Compiler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger.With("module", "compiler"),
	}
}

// Compile builds the workflow graph for a plan.
func (c *Compiler) Compile(plan *models.Plan, cctx Context) (*Result, error) {
	if plan == nil || len(plan.Steps) == 0 {
		return nil, ErrEmptyPlan
	}

	steps := plan.Steps

	var (
		schedule *Schedule
		warnings []string
		trigger  *models.Node
	)

	if steps[0].BlockID == blocks.BlockSchedule {
		parsed, schedWarnings := parseSchedule(steps[0].ConfigHints)
		warnings = append(warnings, schedWarnings...)
		schedule = &parsed
		trigger = scheduleTriggerNode(parsed)
		steps = steps[1:]

		if len(steps) == 0 {
			return nil, ErrNoActionableSteps
		}
	} else {
		trigger = manualTriggerNode()
	}

	nodes := []*models.Node{trigger}

	for i, step := range steps {
		def, ok := c.catalog.Lookup(step.BlockID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, step.BlockID)
		}

		node, nodeWarnings := c.buildNode(def, step, i, cctx)
		warnings = append(warnings, nodeWarnings...)
		nodes = append(nodes, node)
	}

	linkAdjacent(nodes)

	workflow := &models.Workflow{
		Name:          plan.WorkflowName,
		Description:   plan.Description,
		Nodes:         nodes,
		Edges:         synthesizeEdges(nodes),
		TriggerNodeID: trigger.ID,
		Category:      categoryOrDefault(cctx.Category),
		Tags:          cctx.Tags,
	}

	if err := c.validateGraph(workflow); err != nil {
		return nil, err
	}

	c.logger.Debug("Compiled plan",
		"workflow_name", workflow.Name,
		"nodes", len(workflow.Nodes),
		"edges", len(workflow.Edges),
		"warnings", len(warnings))

	return &Result{
		Workflow: workflow,
		Warnings: warnings,
		Schedule: schedule,
	}, nil
}

func manualTriggerNode() *models.Node {
	return &models.Node{
		ID:          uuid.NewString(),
		Type:        models.NodeTypeManualTrigger,
		Name:        "Manual start",
		Description: "Starts the automation when executed",
		Config:      map[string]any{},
		Position:    Position(0),
	}
}

func scheduleTriggerNode(schedule Schedule) *models.Node {
	config := map[string]any{
		"interval_seconds": schedule.IntervalSeconds,
		"duration_seconds": schedule.DurationSeconds,
	}
	if schedule.Cron != "" {
		config["cron"] = schedule.Cron
	}

	return &models.Node{
		ID:          uuid.NewString(),
		Type:        models.NodeTypeScheduleTrigger,
		Name:        "Schedule",
		Description: "Re-runs the automation on a recurring schedule",
		Config:      config,
		Position:    Position(0),
	}
}

// Position lays nodes out left to right. Display only; execution order
// comes from the edges.
func Position(index int) models.Position {
	return models.Position{X: layoutOriginX + layoutSpacingX*index, Y: layoutRowY}
}

func (c *Compiler) buildNode(def blocks.Definition, step models.Step, index int, cctx Context) (*models.Node, []string) {
	config := make(map[string]any, len(step.ConfigHints))
	for key, value := range step.ConfigHints {
		config[key] = value
	}

	node := &models.Node{
		ID:          uuid.NewString(),
		Type:        def.BackendType,
		Name:        def.Label,
		Description: step.Purpose,
		Config:      config,
		Position:    Position(index + 1),
		Metadata:    map[string]any{"block_id": def.ID},
	}

	var warnings []string

	switch def.BackendType {
	case models.NodeTypeNotification:
		warnings = normalizeNotification(node, step, cctx)
	case models.NodeTypePriceFeed:
		warnings = normalizePriceFeed(node, step)
	case models.NodeTypeConditional:
		normalizeConditional(node, step)
	case models.NodeTypeSwap:
		warnings = normalizeSwap(node, step, def)
	}

	return node, warnings
}

func normalizeNotification(node *models.Node, step models.Step, cctx Context) []string {
	var warnings []string

	if message, _ := node.Config["message"].(string); strings.TrimSpace(message) == "" {
		node.Config["message"] = step.Purpose
	}

	if destination, _ := node.Config["destination_id"].(string); destination == "" {
		if cctx.DestinationID != "" {
			node.Config["destination_id"] = cctx.DestinationID
		} else {
			warnings = append(warnings, "notification node has no destination; backend validation may reject it")
		}
	}

	if connection, _ := node.Config["connection_id"].(string); connection == "" {
		if cctx.ProviderConnectionID != "" {
			node.Config["connection_id"] = cctx.ProviderConnectionID
		} else {
			warnings = append(warnings, "notification node has no connection id; backend validation may reject it")
		}
	}

	return warnings
}

func normalizePriceFeed(node *models.Node, step models.Step) []string {
	var warnings []string

	provider := strings.ToLower(strings.TrimSpace(hint(step, "provider")))
	switch provider {
	case ProviderChainlink, ProviderPyth:
	case "":
		provider = ProviderChainlink
	default:
		warnings = append(warnings, "unknown price provider "+strconv.Quote(provider)+", using "+ProviderChainlink)
		provider = ProviderChainlink
	}

	chain := NormalizeChain(hint(step, "chain"))

	feedHint := hint(step, "feed", "pair", "symbol", "asset")
	pair, address, ok := ResolveFeed(chain, feedHint)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("no %s feed found for %q on %s, using default ETH/USD aggregator", provider, feedHint, chain))
		address = defaultFeedAddress

		if pair == "" {
			pair = "ETH/USD"
		}
	}

	staleness := DefaultStalenessSeconds
	if value, ok := positiveInt(step.ConfigHints, "staleness_seconds"); ok {
		staleness = value
	}

	node.Config["provider"] = provider
	node.Config["chain"] = chain
	node.Config["pair"] = pair
	node.Config["feed_address"] = address
	node.Config["staleness_seconds"] = staleness
	node.Config["output"] = map[string]any{
		"key":   PriceOutputKey,
		"label": outputLabel(step, pair),
	}

	return warnings
}

// outputLabel maps a free-text output hint onto the structured output
// mapping, defaulting to the pair itself.
func outputLabel(step models.Step, pair string) string {
	if label := strings.TrimSpace(hint(step, "output")); label != "" {
		return label
	}

	return pair
}

func normalizeConditional(node *models.Node, step models.Step) {
	condition := ParseCondition(hint(step, "condition", "expression", "when"))

	node.Config["condition"] = map[string]any{
		"left_path":   condition.LeftPath,
		"operator":    condition.Operator,
		"right_value": condition.RightValue,
	}
}

func normalizeSwap(node *models.Node, step models.Step, def blocks.Definition) []string {
	var warnings []string

	chain := NormalizeChain(hint(step, "chain"))
	node.Config["chain"] = chain
	node.Config["dex"] = def.ID

	tokenInSymbol := hint(step, "token_in", "from_token", "sell")
	tokenOutSymbol := hint(step, "token_out", "to_token", "buy")

	tokenIn, ok := ResolveToken(chain, tokenInSymbol)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown token %q on %s, using zero address", tokenInSymbol, chain))
		tokenIn = Token{Symbol: tokenInSymbol, Address: ZeroAddress, Decimals: 18}
	}

	tokenOut, ok := ResolveToken(chain, tokenOutSymbol)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unknown token %q on %s, using zero address", tokenOutSymbol, chain))
		tokenOut = Token{Symbol: tokenOutSymbol, Address: ZeroAddress, Decimals: 18}
	}

	node.Config["token_in"] = tokenIn.Symbol
	node.Config["token_in_address"] = tokenIn.Address
	node.Config["token_in_decimals"] = tokenIn.Decimals
	node.Config["token_out"] = tokenOut.Symbol
	node.Config["token_out_address"] = tokenOut.Address
	node.Config["token_out_decimals"] = tokenOut.Decimals

	if amount := hint(step, "amount", "amount_in"); amount != "" {
		baseUnits, err := ToBaseUnits(amount, tokenIn.Decimals)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("unparseable swap amount %q dropped", amount))
		} else {
			node.Config["amount_in"] = baseUnits
		}
	}

	return warnings
}

// linkAdjacent is the post-pass that wires a notification node to the
// price feed node immediately before it: when the message carries no
// template expression yet, a reference to the feed's output is
// appended so the alert shows the observed price.
func linkAdjacent(nodes []*models.Node) {
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Type != models.NodeTypeNotification || nodes[i-1].Type != models.NodeTypePriceFeed {
			continue
		}

		message, _ := nodes[i].Config["message"].(string)
		if strings.Contains(message, "{{") {
			continue
		}

		nodes[i].Config["message"] = message + " (price: {{" + nodes[i-1].ID + "." + PriceOutputKey + "}})"
	}
}

// synthesizeEdges links the nodes linearly in order. Branching
// topology is a backend concern once compiled; edge ids are
// deterministic.
func synthesizeEdges(nodes []*models.Node) []*models.Edge {
	edges := make([]*models.Edge, 0, len(nodes)-1)

	for i := 1; i < len(nodes); i++ {
		edges = append(edges, &models.Edge{
			ID:           nodes[i-1].ID + "->" + nodes[i].ID,
			SourceNodeID: nodes[i-1].ID,
			TargetNodeID: nodes[i].ID,
		})
	}

	return edges
}

func (c *Compiler) validateGraph(workflow *models.Workflow) error {
	if err := c.validate.Struct(workflow); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	var triggerCount, actionCount int

	incoming := make(map[string]bool, len(workflow.Edges))
	for _, edge := range workflow.Edges {
		incoming[edge.TargetNodeID] = true
	}

	for _, node := range workflow.Nodes {
		if models.IsTriggerType(node.Type) {
			triggerCount++

			continue
		}

		actionCount++

		if !incoming[node.ID] {
			return fmt.Errorf("%w: node %s has no incoming edge", ErrInvalidGraph, node.ID)
		}
	}

	if triggerCount != 1 {
		return fmt.Errorf("%w: expected exactly one trigger node, found %d", ErrInvalidGraph, triggerCount)
	}

	if actionCount == 0 {
		return fmt.Errorf("%w: no action nodes", ErrInvalidGraph)
	}

	trigger := workflow.TriggerNode()
	if trigger == nil || !models.IsTriggerType(trigger.Type) {
		return fmt.Errorf("%w: trigger node id does not reference a trigger node", ErrInvalidGraph)
	}

	if len(workflow.Edges) < actionCount {
		return fmt.Errorf("%w: %d edges for %d action nodes", ErrInvalidGraph, len(workflow.Edges), actionCount)
	}

	return validateWorkflowSchema(workflow)
}

func categoryOrDefault(category string) string {
	if category == "" {
		return defaultCategory
	}

	return category
}

func hint(step models.Step, keys ...string) string {
	for _, key := range keys {
		if value, ok := step.ConfigHints[key]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}

	return ""
}
