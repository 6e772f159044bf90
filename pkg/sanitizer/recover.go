package sanitizer

import (
	"encoding/json"
	"strings"

	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/models"
)

const maxExcerptLen = 200

// SanitizeResponse turns a raw planner response into a plan without
// ever failing. Structured responses go through Sanitize; free text is
// stripped of markdown fencing and scanned for an embedded JSON
// object; when nothing usable remains, a fixed clarification plan is
// synthesized so the pipeline keeps moving.
func (s *Sanitizer) SanitizeResponse(response string) *models.Plan {
	if raw, ok := recoverJSONObject(response); ok {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			plan, err := s.Sanitize(decoded)
			if err == nil {
				return plan
			}

			s.logger.Warn("Recovered JSON produced no usable plan", "error", err)
		}
	}

	s.logger.Warn("Planner response unusable, falling back to clarification plan")

	return s.clarificationPlan(response)
}

// clarificationPlan is the fixed fallback for an unusable planner
// response: one notification step plus a missing input carrying a
// truncated excerpt of what the planner actually said.
func (s *Sanitizer) clarificationPlan(response string) *models.Plan {
	excerpt := truncate(strings.TrimSpace(response), maxExcerptLen)
	if excerpt == "" {
		excerpt = "(empty response)"
	}

	return &models.Plan{
		WorkflowName: "Clarification needed",
		Description:  "The request could not be turned into an automation yet",
		Steps: []models.Step{
			{
				BlockID: blocks.BlockNotify,
				Purpose: "Ask the user to restate the request",
			},
		},
		MissingInputs: []models.MissingInput{
			{
				Field:    "request",
				Question: "I could not turn this into an automation. Planner said: " + excerpt,
			},
		},
		Notes: []models.Note{
			{
				Type:    models.NoteTypeMissingData,
				Message: "Planner response was not parseable as a plan",
			},
		},
	}
}

// recoverJSONObject strips common delimiter fencing and returns the
// outermost {...} span, if any.
func recoverJSONObject(response string) (string, bool) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")

	if start == -1 || end <= start {
		return "", false
	}

	return cleaned[start : end+1], true
}
