package compiler

import "strings"

// Canonical chain identifiers.
const (
	ChainEthereum = "ETHEREUM"
	ChainArbitrum = "ARBITRUM"
	ChainPolygon  = "POLYGON"
	ChainBase     = "BASE"
	ChainSepolia  = "SEPOLIA"
)

// DefaultChain is assumed when a step carries no chain hint.
const DefaultChain = ChainEthereum

var chainAliases = map[string]string{
	"eth":          ChainEthereum,
	"ether":        ChainEthereum,
	"ethereum":     ChainEthereum,
	"mainnet":      ChainEthereum,
	"eth_mainnet":  ChainEthereum,
	"arb":          ChainArbitrum,
	"arbitrum":     ChainArbitrum,
	"arbitrum_one": ChainArbitrum,
	"polygon":      ChainPolygon,
	"matic":        ChainPolygon,
	"base":         ChainBase,
	"sepolia":      ChainSepolia,
	"eth_sepolia":  ChainSepolia,
}

// NormalizeChain folds a free-form chain hint to its canonical
// uppercase form. Unknown hints are uppercased as-is so the backend
// sees a consistent shape either way.
func NormalizeChain(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")

	if cleaned == "" {
		return DefaultChain
	}

	if canonical, ok := chainAliases[cleaned]; ok {
		return canonical
	}

	return strings.ToUpper(cleaned)
}
