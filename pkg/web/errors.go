package web

import (
	"errors"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/orchestrator"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleOrchestratorError maps orchestrator error kinds onto RFC 7807
// responses. User-correctable conditions become 4xx with an actionable
// detail; everything else is an opaque 500.
func handleOrchestratorError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrNoPlanToExecute):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("no_plan").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, orchestrator.ErrPlanHasMissingInputs):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("missing_inputs").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case errors.Is(err, orchestrator.ErrAccountNotLinked):
		problem := problems.NewStatusProblem(412).
			WithInstance(c.Path()).
			WithType("account_not_linked").
			WithDetail(err.Error())

		return c.Status(fiber.StatusPreconditionFailed).JSON(problem)

	case errors.Is(err, orchestrator.ErrPlannerUnavailable):
		problem := problems.NewStatusProblem(503).
			WithInstance(c.Path()).
			WithType("planner_unavailable").
			WithDetail("planning service is unavailable, retry shortly")

		return c.Status(fiber.StatusServiceUnavailable).JSON(problem)

	case orchestrator.IsCompilationError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("compilation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case orchestrator.IsUserError(err):
		// User-correctable kinds not matched above, such as a
		// wrapped identity.ErrNotLinked from the resolver.
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_request").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	default:
		if apiErr, ok := backend.AsAPIError(err); ok {
			problem := problems.NewStatusProblem(fiber.StatusBadGateway).
				WithInstance(c.Path()).
				WithType("backend_error").
				WithDetail(apiErr.Message)

			return c.Status(fiber.StatusBadGateway).JSON(problem)
		}

		// Log unexpected errors but don't expose details
		return internalError(c, err)
	}
}
