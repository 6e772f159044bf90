package sanitizer

import (
	"strings"
	"testing"

	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeResponseFencedJSON(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan := s.SanitizeResponse("```json\n{\"workflowName\": \"Fenced\", \"steps\": [{\"blockId\": \"notify\"}]}\n```")

	assert.Equal(t, "Fenced", plan.WorkflowName)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, blocks.BlockNotify, plan.Steps[0].BlockID)
}

func TestSanitizeResponseEmbeddedJSON(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan := s.SanitizeResponse(`Sure, here is the plan you asked for:
{"workflowName": "Embedded", "steps": [{"blockId": "price_feed"}]}
Let me know if you want changes.`)

	assert.Equal(t, "Embedded", plan.WorkflowName)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, blocks.BlockPriceFeed, plan.Steps[0].BlockID)
}

func TestSanitizeResponseFallsBackToClarification(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	for _, response := range []string{
		"",
		"I cannot help with that.",
		"{not valid json at all",
		`{"workflowName": "no steps", "steps": []}`,
	} {
		plan := s.SanitizeResponse(response)

		require.NotNil(t, plan, "response: %q", response)
		require.Len(t, plan.Steps, 1)
		assert.Equal(t, blocks.BlockNotify, plan.Steps[0].BlockID)
		assert.True(t, plan.HasMissingInputs())
		assert.Equal(t, "request", plan.MissingInputs[0].Field)
		require.Len(t, plan.Notes, 1)
		assert.Equal(t, models.NoteTypeMissingData, plan.Notes[0].Type)
	}
}

func TestClarificationExcerptTruncated(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan := s.SanitizeResponse(strings.Repeat("a", 1000))

	require.True(t, plan.HasMissingInputs())
	question := plan.MissingInputs[0].Question
	assert.LessOrEqual(t, len(question), MaxQuestionLen+maxExcerptLen)
	assert.Contains(t, question, strings.Repeat("a", maxExcerptLen))
	assert.NotContains(t, question, strings.Repeat("a", maxExcerptLen+1))
}
