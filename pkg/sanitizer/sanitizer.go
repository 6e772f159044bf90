// Package sanitizer validates and clamps untrusted planner output into
// a strictly typed plan. The upstream is a generative model: every
// field gets an explicit validity check and a deterministic fallback,
// never a direct cast.
package sanitizer

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/chainpilot/chainpilot/pkg/blocks"
	"github.com/chainpilot/chainpilot/pkg/models"
)

// ErrInvalidPlan is returned when no usable steps remain after
// filtering.
var ErrInvalidPlan = errors.New("planner output contains no usable steps")

// Field limits applied during sanitization.
const (
	MaxWorkflowNameLen = 200
	MaxDescriptionLen  = 500
	MaxPurposeLen      = 240
	MaxHintKeyLen      = 100
	MaxHintValueLen    = 200
	MaxMissingFieldLen = 120
	MaxQuestionLen     = 240
	MaxNoteMessageLen  = 280
	MaxNoteFieldLen    = 120
	MaxSteps           = 20
	MaxMissingInputs   = 10
	MaxNotes           = 12
)

const (
	defaultWorkflowName = "Untitled automation"
	defaultDescription  = "Automation generated from a chat request"
	defaultPurpose      = "Unspecified step"
)

// Sanitizer clamps planner output against the block catalog.
type Sanitizer struct {
	catalog *blocks.Catalog
	logger  *slog.Logger
}

// New creates a sanitizer bound to the given catalog.
func New(catalog *blocks.Catalog, logger *slog.Logger) *Sanitizer {
	return &Sanitizer{
		catalog: catalog,
		logger:  logger.With("module", "sanitizer"),
	}
}

// Sanitize clamps an arbitrary decoded JSON value into a plan. It
// fails only when, after dropping every malformed or unresolvable
// step, no step remains.
func (s *Sanitizer) Sanitize(raw any) (*models.Plan, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidPlan
	}

	// The planner emits either a flat object or a two-section shape.
	// When the sections are absent the whole object stands in for both.
	workflowSection := sectionOrSelf(root, "workflowSection", "workflow_section")
	notesSection := sectionOrSelf(root, "notesSection", "notes_section")

	plan := &models.Plan{
		WorkflowName: stringOrDefault(workflowSection, defaultWorkflowName, MaxWorkflowNameLen,
			"workflowName", "workflow_name", "name"),
		Description: stringOrDefault(workflowSection, defaultDescription, MaxDescriptionLen,
			"description"),
	}

	plan.Steps = s.sanitizeSteps(anySlice(workflowSection, "steps"))
	if len(plan.Steps) == 0 {
		return nil, ErrInvalidPlan
	}

	plan.MissingInputs = s.sanitizeMissingInputs(anySlice(notesSection, "missingInputs", "missing_inputs"))
	plan.Notes = s.sanitizeNotes(anySlice(notesSection, "notes"))

	return plan, nil
}

func (s *Sanitizer) sanitizeSteps(raw []any) []models.Step {
	steps := make([]models.Step, 0, len(raw))

	for _, candidate := range raw {
		if len(steps) == MaxSteps {
			break
		}

		obj, ok := candidate.(map[string]any)
		if !ok {
			continue
		}

		blockID, ok := firstString(obj, "blockId", "block_id", "block")
		if !ok {
			continue
		}

		def, ok := s.catalog.Resolve(blockID)
		if !ok {
			s.logger.Debug("Dropping step with unknown block", "block_id", blockID)

			continue
		}

		purpose := truncate(strings.TrimSpace(stringValue(obj, "purpose")), MaxPurposeLen)
		if purpose == "" {
			purpose = defaultPurpose
		}

		steps = append(steps, models.Step{
			BlockID:     def.ID,
			Purpose:     purpose,
			ConfigHints: sanitizeHints(obj["configHints"], obj["config_hints"], obj["config"]),
		})
	}

	return steps
}

// sanitizeHints keeps only plain string-to-string pairs. Nested
// structures and non-string values drop the offending key, not the map.
func sanitizeHints(candidates ...any) map[string]string {
	var raw map[string]any

	for _, candidate := range candidates {
		if m, ok := candidate.(map[string]any); ok {
			raw = m

			break
		}
	}

	if len(raw) == 0 {
		return nil
	}

	hints := make(map[string]string, len(raw))

	for key, value := range raw {
		str, ok := value.(string)
		if !ok {
			continue
		}

		key = truncate(strings.TrimSpace(key), MaxHintKeyLen)
		if key == "" {
			continue
		}

		hints[key] = truncate(str, MaxHintValueLen)
	}

	if len(hints) == 0 {
		return nil
	}

	return hints
}

func (s *Sanitizer) sanitizeMissingInputs(raw []any) []models.MissingInput {
	inputs := make([]models.MissingInput, 0, len(raw))

	for _, candidate := range raw {
		if len(inputs) == MaxMissingInputs {
			break
		}

		obj, ok := candidate.(map[string]any)
		if !ok {
			continue
		}

		field := strings.TrimSpace(stringValue(obj, "field"))
		question := strings.TrimSpace(stringValue(obj, "question"))

		if field == "" || question == "" {
			continue
		}

		inputs = append(inputs, models.MissingInput{
			Field:    truncate(field, MaxMissingFieldLen),
			Question: truncate(question, MaxQuestionLen),
		})
	}

	if len(inputs) == 0 {
		return nil
	}

	return inputs
}

func (s *Sanitizer) sanitizeNotes(raw []any) []models.Note {
	notes := make([]models.Note, 0, len(raw))

	for _, candidate := range raw {
		if len(notes) == MaxNotes {
			break
		}

		obj, ok := candidate.(map[string]any)
		if !ok {
			continue
		}

		noteType := models.NoteType(strings.TrimSpace(stringValue(obj, "type")))
		message := strings.TrimSpace(stringValue(obj, "message"))

		if !models.IsValidNoteType(noteType) || message == "" {
			continue
		}

		notes = append(notes, models.Note{
			Type:    noteType,
			Message: truncate(message, MaxNoteMessageLen),
			Field:   truncate(strings.TrimSpace(stringValue(obj, "field")), MaxNoteFieldLen),
		})
	}

	if len(notes) == 0 {
		return nil
	}

	return notes
}

func sectionOrSelf(root map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if section, ok := root[key].(map[string]any); ok {
			return section
		}
	}

	return root
}

func anySlice(obj map[string]any, keys ...string) []any {
	for _, key := range keys {
		if slice, ok := obj[key].([]any); ok {
			return slice
		}
	}

	return nil
}

func firstString(obj map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := obj[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}

func stringValue(obj map[string]any, key string) string {
	value, _ := obj[key].(string)

	return value
}

func stringOrDefault(obj map[string]any, fallback string, maxLen int, keys ...string) string {
	value, ok := firstString(obj, keys...)
	if !ok {
		return fallback
	}

	return truncate(value, maxLen)
}

// truncate limits s to maxLen characters, never splitting a rune.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)

	return string(runes[:maxLen])
}
