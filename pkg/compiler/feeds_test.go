package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"", ChainEthereum},
		{"eth", ChainEthereum},
		{"Mainnet", ChainEthereum},
		{"Arbitrum One", ChainArbitrum},
		{"arb", ChainArbitrum},
		{"matic", ChainPolygon},
		{"base", ChainBase},
		{"eth-sepolia", ChainSepolia},
		{"optimism", "OPTIMISM"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeChain(tc.raw), "raw: %q", tc.raw)
	}
}

func TestNormalizePair(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ETH/USD", NormalizePair("eth/usd"))
	assert.Equal(t, "ETH/USD", NormalizePair("ETH"))
	assert.Equal(t, "BTC/USD", NormalizePair(" btc "))
	assert.Equal(t, "ETH/USD", NormalizePair("ETH / USD"))
	assert.Equal(t, "", NormalizePair(""))
}

func TestIsPairSymbol(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPairSymbol("ETH/USD"))
	assert.True(t, IsPairSymbol(" btc/usd "))
	assert.False(t, IsPairSymbol("price"))
	assert.False(t, IsPairSymbol("ETH/USD/EXTRA"))
	assert.False(t, IsPairSymbol("E/USD"))
}

func TestResolveFeed(t *testing.T) {
	t.Parallel()

	pair, address, ok := ResolveFeed("ethereum", "ETH")
	require.True(t, ok)
	assert.Equal(t, "ETH/USD", pair)
	assert.Equal(t, "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419", address)

	pair, address, ok = ResolveFeed("arbitrum", "btc/usd")
	require.True(t, ok)
	assert.Equal(t, "BTC/USD", pair)
	assert.NotEmpty(t, address)
}

func TestResolveFeedWrappedPrefixHeuristic(t *testing.T) {
	t.Parallel()

	pair, address, ok := ResolveFeed("ethereum", "WBTC")
	require.True(t, ok, "WBTC should fall back to the BTC/USD feed")
	assert.Equal(t, "BTC/USD", pair)
	assert.NotEmpty(t, address)
}

func TestResolveFeedUnknown(t *testing.T) {
	t.Parallel()

	_, _, ok := ResolveFeed("ethereum", "DOGE")
	assert.False(t, ok)

	_, _, ok = ResolveFeed("sepolia", "ETH")
	assert.False(t, ok, "no feeds registered for sepolia")
}
