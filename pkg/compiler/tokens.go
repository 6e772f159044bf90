package compiler

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token describes one ERC-20 token on a specific chain.
type Token struct {
	Symbol   string
	Address  string
	Decimals int
}

// ZeroAddress is the fallback for symbols the table does not know.
// Compilation records a warning instead of failing; the backend's own
// validation decides what to do with it.
var ZeroAddress = common.Address{}.Hex()

// tokenRegistry maps canonical chain -> symbol -> token. Addresses are
// the canonical deployments.
var tokenRegistry = map[string]map[string]Token{
	ChainEthereum: {
		"WETH": {Symbol: "WETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Decimals: 18},
		"ETH":  {Symbol: "ETH", Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Decimals: 18},
		"USDC": {Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6},
		"USDT": {Symbol: "USDT", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Decimals: 6},
		"DAI":  {Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Decimals: 18},
		"WBTC": {Symbol: "WBTC", Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Decimals: 8},
	},
	ChainArbitrum: {
		"WETH": {Symbol: "WETH", Address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", Decimals: 18},
		"ETH":  {Symbol: "ETH", Address: "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", Decimals: 18},
		"USDC": {Symbol: "USDC", Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", Decimals: 6},
		"ARB":  {Symbol: "ARB", Address: "0x912CE59144191C1204E64559FE8253a0e49E6548", Decimals: 18},
	},
	ChainBase: {
		"WETH": {Symbol: "WETH", Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
		"ETH":  {Symbol: "ETH", Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
		"USDC": {Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
	},
	ChainPolygon: {
		"WETH":  {Symbol: "WETH", Address: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", Decimals: 18},
		"MATIC": {Symbol: "MATIC", Address: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", Decimals: 18},
		"USDC":  {Symbol: "USDC", Address: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", Decimals: 6},
	},
}

// ResolveToken looks a symbol up in the per-chain token table. A raw
// hex address is accepted directly (checksummed, 18 decimals assumed).
func ResolveToken(chain, symbol string) (Token, bool) {
	symbol = strings.TrimSpace(symbol)

	if common.IsHexAddress(symbol) {
		return Token{
			Symbol:   symbol,
			Address:  common.HexToAddress(symbol).Hex(),
			Decimals: 18,
		}, true
	}

	tokens, ok := tokenRegistry[NormalizeChain(chain)]
	if !ok {
		return Token{}, false
	}

	token, ok := tokens[strings.ToUpper(symbol)]

	return token, ok
}
