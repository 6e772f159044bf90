package models

// Backend node types understood by the workflow execution backend.
const (
	NodeTypeManualTrigger   = "trigger:manual"
	NodeTypeScheduleTrigger = "trigger:schedule"
	NodeTypePriceFeed       = "price_feed"
	NodeTypeConditional     = "conditional"
	NodeTypeSwap            = "token_swap"
	NodeTypeNotification    = "notification"
)

// IsTriggerType reports whether nodeType is a graph entry point type.
func IsTriggerType(nodeType string) bool {
	return nodeType == NodeTypeManualTrigger || nodeType == NodeTypeScheduleTrigger
}

// Position is a layout hint for workflow editors. It carries no
// execution semantics.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is one executable unit in a compiled workflow.
type Node struct {
	ID          string         `json:"id"          validate:"required"`
	Type        string         `json:"type"        validate:"required"`
	Name        string         `json:"name"        validate:"required,min=1"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	Position    Position       `json:"position"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Edge connects two nodes. Handles and the condition/data mapping are
// opaque branch selectors for the backend; both stay empty in the
// linear case.
type Edge struct {
	ID           string         `json:"id"             validate:"required"`
	SourceNodeID string         `json:"source_node_id" validate:"required"`
	TargetNodeID string         `json:"target_node_id" validate:"required"`
	SourceHandle *string        `json:"source_handle,omitempty"`
	TargetHandle *string        `json:"target_handle,omitempty"`
	Condition    map[string]any `json:"condition,omitempty"`
	DataMapping  map[string]any `json:"data_mapping,omitempty"`
}

// Workflow is the execution-ready graph form of a plan.
type Workflow struct {
	Name          string   `json:"name"            validate:"required"`
	Description   string   `json:"description"`
	Nodes         []*Node  `json:"nodes"           validate:"required,min=2"`
	Edges         []*Edge  `json:"edges"           validate:"required,min=1"`
	TriggerNodeID string   `json:"trigger_node_id" validate:"required"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags,omitempty"`
	IsPublic      bool     `json:"is_public"`
}

// TriggerNode returns the node referenced by TriggerNodeID, or nil.
func (w *Workflow) TriggerNode() *Node {
	for _, node := range w.Nodes {
		if node.ID == w.TriggerNodeID {
			return node
		}
	}

	return nil
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}
