package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/compiler"
	"github.com/chainpilot/chainpilot/pkg/identity"
	"github.com/chainpilot/chainpilot/pkg/orchestrator"
)

func TestHandleOrchestratorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "no plan",
			err:            orchestrator.ErrNoPlanToExecute,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing inputs",
			err:            fmt.Errorf("%w: amount", orchestrator.ErrPlanHasMissingInputs),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "account not linked",
			err:            orchestrator.ErrAccountNotLinked,
			expectedStatus: http.StatusPreconditionFailed,
		},
		{
			name:           "planner unavailable",
			err:            fmt.Errorf("%w: connection refused", orchestrator.ErrPlannerUnavailable),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "compilation error",
			err:            compiler.ErrEmptyPlan,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "wrapped not-linked from the resolver",
			err:            fmt.Errorf("resolving identity link: %w", identity.ErrNotLinked),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "backend error",
			err:            &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "unexpected error",
			err:            errors.New("disk on fire"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := fiber.New()
			app.Get("/fail", func(c fiber.Ctx) error {
				return handleOrchestratorError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "json")
		})
	}
}
