package compiler

import (
	"strings"

	"github.com/chainpilot/chainpilot/pkg/models"
)

// conditionOperators is precedence-ordered: two-character operators
// must be tried before their one-character prefixes, and the bare "="
// alias comes last.
var conditionOperators = []struct {
	literal   string
	canonical string
}{
	{"<=", models.OperatorLTE},
	{">=", models.OperatorGTE},
	{"==", models.OperatorEQ},
	{"!=", models.OperatorNEQ},
	{"<", models.OperatorLT},
	{">", models.OperatorGT},
	{"=", models.OperatorEQ},
}

// ParseCondition turns a human-readable comparison ("ETH/USD < 1750")
// into a structured condition. When the left side is an asset pair it
// is replaced with the price feed's standard output key so the
// condition evaluates against the preceding feed node at runtime. An
// unparseable string yields an empty condition, never an error.
func ParseCondition(raw string) models.Condition {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Condition{}
	}

	for _, op := range conditionOperators {
		idx := strings.Index(raw, op.literal)
		if idx < 0 {
			continue
		}

		left := strings.TrimSpace(raw[:idx])
		right := strings.TrimSpace(raw[idx+len(op.literal):])

		if left == "" || right == "" {
			return models.Condition{}
		}

		if IsPairSymbol(left) {
			left = PriceOutputKey
		}

		return models.Condition{
			LeftPath:   left,
			Operator:   op.canonical,
			RightValue: right,
		}
	}

	return models.Condition{}
}
