package web

import (
	"net/http"
	"time"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/orchestrator"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	orchestrator *orchestrator.Service
	backend      backend.Client
	catalog      *blocks.Catalog
	validator    *validator.Validate
}

func NewAPIHandlers(
	orchestratorService *orchestrator.Service,
	backendClient backend.Client,
	catalog *blocks.Catalog,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		orchestrator: orchestratorService,
		backend:      backendClient,
		catalog:      catalog,
		validator:    validator,
	}
}

// Register mounts all routes on the app.
func (h *APIHandlers) Register(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	v1 := app.Group("/v1")
	v1.Post("/plan", h.CreatePlan)
	v1.Post("/execute", h.Execute)
	v1.Get("/executions/:id", h.GetExecution)
	v1.Get("/blocks", h.ListBlocks)
}

func (h *APIHandlers) CreatePlan(c fiber.Ctx) error {
	var req PlanAPIRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	plan, err := h.orchestrator.Plan(c.Context(), orchestrator.PlanRequest{
		Prompt:          req.Prompt,
		UserID:          req.UserID,
		ConversationKey: req.ConversationKey,
	})
	if err != nil {
		return handleOrchestratorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(PlanResponse{
		Plan:             plan,
		ReadyForApproval: !plan.HasMissingInputs(),
		MissingFields:    plan.MissingFields(),
	})
}

func (h *APIHandlers) Execute(c fiber.Ctx) error {
	var req ExecuteAPIRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return badRequest(c, "Invalid request: "+err.Error())
	}

	result, err := h.orchestrator.Execute(c.Context(), orchestrator.ExecuteRequest{
		Prompt:          req.Prompt,
		Plan:            req.Plan,
		UserID:          req.UserID,
		ConversationKey: req.ConversationKey,
	})
	if err != nil {
		return handleOrchestratorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	userID := c.Get("X-Acting-User")
	if userID == "" {
		return badRequest(c, "X-Acting-User header is required")
	}

	execution, err := h.backend.GetExecution(c.Context(), userID, id)
	if err != nil {
		if apiErr, ok := backend.AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(TransformExecutionResponse(execution))
}

func (h *APIHandlers) ListBlocks(c fiber.Ctx) error {
	defs := h.catalog.List()

	out := make([]BlockResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, BlockResponse{
			ID:          def.ID,
			BackendType: def.BackendType,
			Label:       def.Label,
			Description: def.Description,
		})
	}

	return c.JSON(fiber.Map{
		"blocks":      out,
		"total_count": len(out),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"message":   "ChainPilot API is healthy",
		"timestamp": time.Now().UTC(),
	})
}
