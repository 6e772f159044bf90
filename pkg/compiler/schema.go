package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/chainpilot/chainpilot/pkg/models"
)

// workflowSchema is the backend's workflow payload contract. The
// compiled graph is checked against it before leaving the compiler so
// a contract mismatch fails here, not at the backend.
const workflowSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "nodes", "edges", "trigger_node_id"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "trigger_node_id": {"type": "string", "minLength": 1},
    "category": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "is_public": {"type": "boolean"},
    "nodes": {
      "type": "array",
      "minItems": 2,
      "items": {
        "type": "object",
        "required": ["id", "type", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "config": {"type": "object"}
        }
      }
    },
    "edges": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "source_node_id", "target_node_id"]
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(workflowSchema)

func validateWorkflowSchema(workflow *models.Workflow) error {
	payload, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGraph, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidGraph, result.Errors()[0].String())
	}

	return nil
}
