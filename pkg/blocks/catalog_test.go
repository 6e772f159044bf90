package blocks

import (
	"testing"

	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()

	def, ok := catalog.Lookup(BlockPriceFeed)
	require.True(t, ok)
	assert.Equal(t, BlockPriceFeed, def.ID)
	assert.Equal(t, models.NodeTypePriceFeed, def.BackendType)

	_, ok = catalog.Lookup("price")
	assert.False(t, ok, "Lookup must not consult the alias table")
}

func TestCatalogResolveAliases(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()

	tests := []struct {
		raw  string
		want string
	}{
		{"price_feed", BlockPriceFeed},
		{"price", BlockPriceFeed},
		{"oracle", BlockPriceFeed},
		{"Price-Feed", BlockPriceFeed},
		{"PRICE FEED", BlockPriceFeed},
		{"swap", BlockUniswapSwap},
		{"uniswap", BlockUniswapSwap},
		{"token_swap", BlockUniswapSwap},
		{"1inch", BlockOneinchSwap},
		{"oneinch", BlockOneinchSwap},
		{"if", BlockCondition},
		{"conditional", BlockCondition},
		{"telegram", BlockNotify},
		{"notification", BlockNotify},
		{"timer", BlockSchedule},
		{"cron", BlockSchedule},
		{"Schedule_Trigger", BlockSchedule},
	}

	for _, tc := range tests {
		def, ok := catalog.Resolve(tc.raw)
		require.True(t, ok, "expected %q to resolve", tc.raw)
		assert.Equal(t, tc.want, def.ID, "raw id %q", tc.raw)
	}
}

func TestCatalogResolveUnknown(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog()

	for _, raw := range []string{"", "teleport", "swap!", "notify_me_maybe"} {
		_, ok := catalog.Resolve(raw)
		assert.False(t, ok, "raw id %q must not resolve", raw)
	}
}

func TestCatalogListOrder(t *testing.T) {
	t.Parallel()

	defs := NewCatalog().List()

	require.Len(t, defs, 6)
	assert.Equal(t, BlockSchedule, defs[0].ID)
	assert.Equal(t, BlockNotify, defs[5].ID)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "price_feed", Normalize("  Price-Feed "))
	assert.Equal(t, "token_swap", Normalize("Token Swap"))
	assert.Equal(t, "notify", Normalize("notify"))
}
