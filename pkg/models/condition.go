package models

// Comparison operators in canonical symbolic form.
const (
	OperatorLT  = "<"
	OperatorLTE = "<="
	OperatorGT  = ">"
	OperatorGTE = ">="
	OperatorEQ  = "=="
	OperatorNEQ = "!="
)

// Condition is the structured form of a conditional node's comparison.
// An all-empty condition is valid and means "no condition".
type Condition struct {
	LeftPath   string `json:"left_path"`
	Operator   string `json:"operator"`
	RightValue string `json:"right_value"`
}

// IsEmpty reports whether no condition was parsed.
func (c Condition) IsEmpty() bool {
	return c.LeftPath == "" && c.Operator == "" && c.RightValue == ""
}
