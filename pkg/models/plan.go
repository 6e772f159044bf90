// Package models defines the core domain models for plan-driven workflow automation.
package models

// NoteType classifies an advisory note attached to a plan.
type NoteType string

const (
	NoteTypeMissingData NoteType = "missing_data"
	NoteTypeAssumption  NoteType = "assumption"
	NoteTypeRisk        NoteType = "risk"
	NoteTypePreference  NoteType = "preference"
	NoteTypeOther       NoteType = "other"
)

// KnownNoteTypes lists every accepted note type.
var KnownNoteTypes = []NoteType{
	NoteTypeMissingData,
	NoteTypeAssumption,
	NoteTypeRisk,
	NoteTypePreference,
	NoteTypeOther,
}

// IsValidNoteType reports whether t is one of the fixed note types.
func IsValidNoteType(t NoteType) bool {
	for _, known := range KnownNoteTypes {
		if t == known {
			return true
		}
	}

	return false
}

// Step is one planner-proposed action before compilation.
type Step struct {
	BlockID     string            `json:"block_id"    validate:"required"`
	Purpose     string            `json:"purpose"`
	ConfigHints map[string]string `json:"config_hints,omitempty"`
}

// MissingInput is a field the planner could not resolve. A plan that
// still carries missing inputs cannot be executed.
type MissingInput struct {
	Field    string `json:"field"    validate:"required"`
	Question string `json:"question" validate:"required"`
}

// Note is advisory planner output. It never affects compilation.
type Note struct {
	Type    NoteType `json:"type"    validate:"required"`
	Message string   `json:"message" validate:"required"`
	Field   string   `json:"field,omitempty"`
}

// Plan is the sanitized, trusted representation of what the user wants
// to automate. Only the sanitizer constructs plans from untrusted data.
type Plan struct {
	WorkflowName  string         `json:"workflow_name" validate:"required,max=200"`
	Description   string         `json:"description"   validate:"max=500"`
	Steps         []Step         `json:"steps"         validate:"required,min=1,max=20"`
	MissingInputs []MissingInput `json:"missing_inputs,omitempty" validate:"max=10"`
	Notes         []Note         `json:"notes,omitempty"          validate:"max=12"`
}

// HasMissingInputs reports whether the plan still has unresolved fields.
func (p *Plan) HasMissingInputs() bool {
	return len(p.MissingInputs) > 0
}

// MissingFields returns the unresolved field names in order.
func (p *Plan) MissingFields() []string {
	fields := make([]string, 0, len(p.MissingInputs))
	for _, mi := range p.MissingInputs {
		fields = append(fields, mi.Field)
	}

	return fields
}
