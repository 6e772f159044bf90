// Package orchestrator sequences sanitizer, compiler, backend calls
// and tracking exactly once per plan/execute call, and owns the
// per-conversation session state.
package orchestrator

import (
	"errors"

	"github.com/chainpilot/chainpilot/pkg/compiler"
	"github.com/chainpilot/chainpilot/pkg/identity"
)

// Plan-state errors. These are user-actionable and distinguishable by
// kind so the presentation layer can render tailored messages.
var (
	ErrNoPlanToExecute      = errors.New("no plan to execute; create one first")
	ErrPlanHasMissingInputs = errors.New("plan still has unresolved inputs")
	ErrAccountNotLinked     = errors.New("this step needs a linked account; link one and try again")
	ErrPlannerUnavailable   = errors.New("planning service is unavailable")
)

// IsUserError reports whether the error should be rendered as a
// user-correctable condition rather than an internal failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNoPlanToExecute) ||
		errors.Is(err, ErrPlanHasMissingInputs) ||
		errors.Is(err, ErrAccountNotLinked) ||
		errors.Is(err, identity.ErrNotLinked)
}

// IsCompilationError reports whether the error is a structural
// compilation failure, indicating a catalog or planner contract
// mismatch rather than a user mistake.
func IsCompilationError(err error) bool {
	return errors.Is(err, compiler.ErrEmptyPlan) ||
		errors.Is(err, compiler.ErrNoActionableSteps) ||
		errors.Is(err, compiler.ErrUnknownBlock) ||
		errors.Is(err, compiler.ErrInvalidGraph)
}
