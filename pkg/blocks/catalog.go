// Package blocks holds the static registry of supported action kinds
// and their execution-backend type tags.
package blocks

import (
	"strings"

	"github.com/chainpilot/chainpilot/pkg/models"
)

// Planner-facing block identifiers.
const (
	BlockSchedule    = "schedule"
	BlockPriceFeed   = "price_feed"
	BlockCondition   = "condition"
	BlockUniswapSwap = "uniswap_swap"
	BlockOneinchSwap = "oneinch_swap"
	BlockNotify      = "notify"
)

// Definition describes one supported block. Several block ids may map
// to the same backend type; one id never maps to more than one.
type Definition struct {
	ID          string `json:"id"`
	BackendType string `json:"backend_type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Catalog is the fixed, process-wide block registry.
type Catalog struct {
	definitions map[string]Definition
	aliases     map[string]string
	order       []string
}

// NewCatalog builds the registry with the built-in block set.
func NewCatalog() *Catalog {
	c := &Catalog{
		definitions: make(map[string]Definition),
		aliases:     make(map[string]string),
	}

	c.register(Definition{
		ID:          BlockSchedule,
		BackendType: models.NodeTypeScheduleTrigger,
		Label:       "Schedule",
		Description: "Re-run the automation on a recurring schedule",
	})
	c.register(Definition{
		ID:          BlockPriceFeed,
		BackendType: models.NodeTypePriceFeed,
		Label:       "Price Feed",
		Description: "Read an on-chain price oracle",
	})
	c.register(Definition{
		ID:          BlockCondition,
		BackendType: models.NodeTypeConditional,
		Label:       "Condition",
		Description: "Continue only when a comparison holds",
	})
	c.register(Definition{
		ID:          BlockUniswapSwap,
		BackendType: models.NodeTypeSwap,
		Label:       "Uniswap Swap",
		Description: "Swap tokens through Uniswap",
	})
	c.register(Definition{
		ID:          BlockOneinchSwap,
		BackendType: models.NodeTypeSwap,
		Label:       "1inch Swap",
		Description: "Swap tokens through the 1inch aggregator",
	})
	c.register(Definition{
		ID:          BlockNotify,
		BackendType: models.NodeTypeNotification,
		Label:       "Notify",
		Description: "Send a message to the user",
	})

	// Planner models rarely emit exact ids; the alias table catches the
	// usual paraphrases. A bare "swap" resolves to the default provider.
	c.alias("swap", BlockUniswapSwap)
	c.alias("uniswap", BlockUniswapSwap)
	c.alias("token_swap", BlockUniswapSwap)
	c.alias("oneinch", BlockOneinchSwap)
	c.alias("1inch", BlockOneinchSwap)
	c.alias("price", BlockPriceFeed)
	c.alias("oracle", BlockPriceFeed)
	c.alias("price_oracle", BlockPriceFeed)
	c.alias("price_check", BlockPriceFeed)
	c.alias("if", BlockCondition)
	c.alias("conditional", BlockCondition)
	c.alias("compare", BlockCondition)
	c.alias("notification", BlockNotify)
	c.alias("telegram", BlockNotify)
	c.alias("alert", BlockNotify)
	c.alias("message", BlockNotify)
	c.alias("timer", BlockSchedule)
	c.alias("cron", BlockSchedule)
	c.alias("scheduled", BlockSchedule)
	c.alias("schedule_trigger", BlockSchedule)
	c.alias("interval", BlockSchedule)

	return c
}

func (c *Catalog) register(def Definition) {
	c.definitions[def.ID] = def
	c.order = append(c.order, def.ID)
}

func (c *Catalog) alias(from, to string) {
	c.aliases[from] = to
}

// Lookup returns the definition for an exact block id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	def, ok := c.definitions[id]

	return def, ok
}

// Resolve maps a raw planner-supplied identifier to a definition:
// exact match first, then a normalized form consulted against the
// alias table.
func (c *Catalog) Resolve(raw string) (Definition, bool) {
	if def, ok := c.definitions[raw]; ok {
		return def, true
	}

	normalized := Normalize(raw)
	if def, ok := c.definitions[normalized]; ok {
		return def, true
	}

	if target, ok := c.aliases[normalized]; ok {
		return c.definitions[target], true
	}

	return Definition{}, false
}

// List returns all definitions in registration order.
func (c *Catalog) List() []Definition {
	defs := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		defs = append(defs, c.definitions[id])
	}

	return defs
}

// Normalize lowercases an identifier and folds hyphens and spaces to
// underscores.
func Normalize(id string) string {
	normalized := strings.ToLower(strings.TrimSpace(id))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	return normalized
}
