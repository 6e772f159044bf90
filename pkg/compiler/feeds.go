package compiler

import (
	"regexp"
	"strings"
)

// Price feed providers supported by the backend.
const (
	ProviderChainlink = "chainlink"
	ProviderPyth      = "pyth"
)

// PriceOutputKey is the standard output key every price feed node
// publishes its result under. Downstream conditions reference it.
const PriceOutputKey = "price"

// DefaultStalenessSeconds bounds how old a feed answer may be before
// the backend treats it as stale.
const DefaultStalenessSeconds = 3600

// defaultFeedAddress is the Chainlink ETH/USD aggregator on mainnet,
// used as a last resort when no feed resolves.
const defaultFeedAddress = "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419"

// feedRegistry maps canonical chain -> pair -> aggregator address.
// Addresses are the public Chainlink aggregators.
var feedRegistry = map[string]map[string]string{
	ChainEthereum: {
		"ETH/USD":  "0x5f4eC3Df9cbd43714FE2740f5E3616155c5b8419",
		"BTC/USD":  "0xF4030086522a5bEEa4988F8cA5B36dbC97BeE88c",
		"USDC/USD": "0x8fFfFfd4AfB6115b954Bd326cbe7B4BA576818f6",
		"DAI/USD":  "0xAed0c38402a5d19df6E4c03F4E2DceD6e29c1ee9",
		"LINK/USD": "0x2c1d072e956AFFC0D435Cb7AC38EF18d24d9127c",
	},
	ChainArbitrum: {
		"ETH/USD": "0x639Fe6ab55C921f74e7fac1ee960C0B6293ba612",
		"BTC/USD": "0x6ce185860a4963106506C203335A2910413708e9",
	},
	ChainBase: {
		"ETH/USD": "0x71041dddad3595F9CEd3DcCFBe3D1F4b0a16Bb70",
	},
	ChainPolygon: {
		"ETH/USD":   "0xF9680D99D6C9589e2a93a78A04A279e509205945",
		"MATIC/USD": "0xAB594600376Ec9fD91F8e885dADF0CE036862dE0",
	},
}

var pairPattern = regexp.MustCompile(`^[A-Za-z]{2,10}/[A-Za-z]{2,10}$`)

// IsPairSymbol reports whether s looks like an asset/currency pair
// such as "ETH/USD".
func IsPairSymbol(s string) bool {
	return pairPattern.MatchString(strings.TrimSpace(s))
}

// NormalizePair uppercases a pair hint and expands a bare asset symbol
// to an asset/USD pair.
func NormalizePair(raw string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	if cleaned == "" {
		return ""
	}

	if !strings.Contains(cleaned, "/") {
		cleaned += "/USD"
	}

	return cleaned
}

// ResolveFeed looks up a feed address for a chain and pair hint. The
// exact table is consulted first, then the pair heuristic; the boolean
// reports whether the lookup succeeded (callers fall back to
// defaultFeedAddress with a warning otherwise).
func ResolveFeed(chain, hint string) (pair string, address string, ok bool) {
	chain = NormalizeChain(chain)
	pair = NormalizePair(hint)

	feeds, chainKnown := feedRegistry[chain]
	if !chainKnown {
		return pair, "", false
	}

	if address, found := feeds[pair]; found {
		return pair, address, true
	}

	// Pair heuristic: the asset may carry a wrapped prefix or a
	// non-USD quote the registry keys plainly.
	if asset, _, found := strings.Cut(pair, "/"); found {
		retry := strings.TrimPrefix(asset, "W") + "/USD"
		if address, found := feeds[retry]; found {
			return retry, address, true
		}
	}

	return pair, "", false
}
