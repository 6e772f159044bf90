package sanitizer

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanitizer() *Sanitizer {
	return New(blocks.NewCatalog(), slog.Default())
}

func decode(t *testing.T, raw string) any {
	t.Helper()

	var value any
	require.NoError(t, json.Unmarshal([]byte(raw), &value))

	return value
}

func TestSanitizeFlatObject(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan, err := s.Sanitize(decode(t, `{
		"workflowName": "Watch ETH",
		"description": "Price watcher",
		"steps": [
			{"blockId": "price_feed", "purpose": "watch", "configHints": {"pair": "ETH/USD"}},
			{"blockId": "notify", "purpose": "tell me"}
		]
	}`))

	require.NoError(t, err)
	assert.Equal(t, "Watch ETH", plan.WorkflowName)
	assert.Equal(t, "Price watcher", plan.Description)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, blocks.BlockPriceFeed, plan.Steps[0].BlockID)
	assert.Equal(t, map[string]string{"pair": "ETH/USD"}, plan.Steps[0].ConfigHints)
	assert.Empty(t, plan.MissingInputs)
	assert.Empty(t, plan.Notes)
}

func TestSanitizeSectionedObject(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan, err := s.Sanitize(decode(t, `{
		"workflowSection": {
			"name": "Swap on dip",
			"steps": [{"block_id": "swap", "purpose": "buy the dip"}]
		},
		"notesSection": {
			"missingInputs": [{"field": "amount", "question": "How much USDC?"}],
			"notes": [{"type": "assumption", "message": "Assuming Uniswap on Ethereum"}]
		}
	}`))

	require.NoError(t, err)
	assert.Equal(t, "Swap on dip", plan.WorkflowName)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, blocks.BlockUniswapSwap, plan.Steps[0].BlockID)
	require.Len(t, plan.MissingInputs, 1)
	assert.Equal(t, "amount", plan.MissingInputs[0].Field)
	require.Len(t, plan.Notes, 1)
	assert.Equal(t, models.NoteTypeAssumption, plan.Notes[0].Type)
}

func TestSanitizeDropsMalformedSteps(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan, err := s.Sanitize(decode(t, `{
		"workflowName": "Mixed bag",
		"steps": [
			"not an object",
			{"purpose": "no block id"},
			{"blockId": "teleport", "purpose": "unknown block"},
			{"blockId": "notify"},
			{"blockId": 42}
		]
	}`))

	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, blocks.BlockNotify, plan.Steps[0].BlockID)
	assert.Equal(t, "Unspecified step", plan.Steps[0].Purpose)
}

func TestSanitizeNoUsableSteps(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	for _, raw := range []string{
		`{"workflowName": "empty", "steps": []}`,
		`{"workflowName": "unknown only", "steps": [{"blockId": "teleport"}]}`,
		`{"workflowName": "no steps key"}`,
		`[1, 2, 3]`,
		`"just a string"`,
	} {
		_, err := s.Sanitize(decode(t, raw))
		assert.ErrorIs(t, err, ErrInvalidPlan, "input: %s", raw)
	}
}

func TestSanitizeHintFiltering(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan, err := s.Sanitize(decode(t, `{
		"workflowName": "Hints",
		"steps": [{
			"blockId": "price_feed",
			"configHints": {
				"pair": "ETH/USD",
				"nested": {"chain": "ETHEREUM"},
				"count": 3,
				"flag": true,
				"": "empty key"
			}
		}]
	}`))

	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, map[string]string{"pair": "ETH/USD"}, plan.Steps[0].ConfigHints)
}

func TestSanitizeCaps(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	var steps, missing, notes []string
	for i := 0; i < 30; i++ {
		steps = append(steps, `{"blockId": "notify"}`)
		missing = append(missing, `{"field": "f", "question": "q"}`)
		notes = append(notes, `{"type": "risk", "message": "m"}`)
	}

	raw := `{
		"workflowName": "` + strings.Repeat("n", 400) + `",
		"steps": [` + strings.Join(steps, ",") + `],
		"missingInputs": [` + strings.Join(missing, ",") + `],
		"notes": [` + strings.Join(notes, ",") + `]
	}`

	plan, err := s.Sanitize(decode(t, raw))
	require.NoError(t, err)

	assert.Len(t, plan.WorkflowName, MaxWorkflowNameLen)
	assert.Len(t, plan.Steps, MaxSteps)
	assert.Len(t, plan.MissingInputs, MaxMissingInputs)
	assert.Len(t, plan.Notes, MaxNotes)
}

func TestSanitizeMultibyteTruncation(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	raw := `{
		"workflowName": "` + strings.Repeat("€", 250) + `",
		"description": "` + strings.Repeat("é", 150) + `",
		"steps": [{"blockId": "notify", "purpose": "` + strings.Repeat("ü", 300) + `"}]
	}`

	plan, err := s.Sanitize(decode(t, raw))
	require.NoError(t, err)

	// Limits count characters, and no rune is ever split.
	assert.Equal(t, MaxWorkflowNameLen, utf8.RuneCountInString(plan.WorkflowName))
	assert.True(t, utf8.ValidString(plan.WorkflowName))
	assert.Equal(t, strings.Repeat("é", 150), plan.Description)
	assert.Equal(t, MaxPurposeLen, utf8.RuneCountInString(plan.Steps[0].Purpose))
	assert.True(t, utf8.ValidString(plan.Steps[0].Purpose))
}

func TestSanitizeDropsInvalidNotesAndMissingInputs(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	plan, err := s.Sanitize(decode(t, `{
		"workflowName": "Notes",
		"steps": [{"blockId": "notify"}],
		"missingInputs": [
			{"field": "", "question": "no field"},
			{"field": "no question"},
			{"field": "ok", "question": "ok?"}
		],
		"notes": [
			{"type": "sarcasm", "message": "unknown type"},
			{"type": "risk", "message": ""},
			{"type": "risk", "message": "slippage may spike", "field": "amount"}
		]
	}`))

	require.NoError(t, err)
	require.Len(t, plan.MissingInputs, 1)
	assert.Equal(t, "ok", plan.MissingInputs[0].Field)
	require.Len(t, plan.Notes, 1)
	assert.Equal(t, "amount", plan.Notes[0].Field)
}

func TestSanitizeIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer()

	first, err := s.Sanitize(decode(t, `{
		"workflowName": "  Stable  ",
		"steps": [{"blockId": "Price Feed", "purpose": "  watch  ", "configHints": {"pair": "ETH/USD"}}]
	}`))
	require.NoError(t, err)

	// Round-trip the sanitized plan through JSON and sanitize again.
	encoded, err := json.Marshal(map[string]any{
		"workflowName": first.WorkflowName,
		"description":  first.Description,
		"steps": []map[string]any{{
			"blockId":     first.Steps[0].BlockID,
			"purpose":     first.Steps[0].Purpose,
			"configHints": first.Steps[0].ConfigHints,
		}},
	})
	require.NoError(t, err)

	second, err := s.Sanitize(decode(t, string(encoded)))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
