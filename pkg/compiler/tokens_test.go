package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveToken(t *testing.T) {
	t.Parallel()

	token, ok := ResolveToken("ethereum", "usdc")
	require.True(t, ok)
	assert.Equal(t, "USDC", token.Symbol)
	assert.Equal(t, 6, token.Decimals)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", token.Address)

	token, ok = ResolveToken("base", "ETH")
	require.True(t, ok)
	assert.Equal(t, "0x4200000000000000000000000000000000000006", token.Address)
}

func TestResolveTokenRawAddress(t *testing.T) {
	t.Parallel()

	raw := "0x6b175474e89094c44da98b954eedeac495271d0f"

	token, ok := ResolveToken("ethereum", raw)
	require.True(t, ok)
	assert.Equal(t, "0x6B175474E89094C44Da98b954EedeAC495271d0F", token.Address, "address is checksummed")
	assert.Equal(t, 18, token.Decimals)
}

func TestResolveTokenUnknown(t *testing.T) {
	t.Parallel()

	_, ok := ResolveToken("ethereum", "SHIBAWOW")
	assert.False(t, ok)

	_, ok = ResolveToken("sepolia", "USDC")
	assert.False(t, ok, "no tokens registered for sepolia")
}

func TestZeroAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x0000000000000000000000000000000000000000", ZeroAddress)
}
