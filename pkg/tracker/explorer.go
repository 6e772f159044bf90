package tracker

import (
	"strings"

	"github.com/chainpilot/chainpilot/pkg/compiler"
	"github.com/chainpilot/chainpilot/pkg/models"
)

// explorerURLs maps canonical chains to their transaction explorers.
var explorerURLs = map[string]string{
	compiler.ChainEthereum: "https://etherscan.io/tx/",
	compiler.ChainArbitrum: "https://arbiscan.io/tx/",
	compiler.ChainPolygon:  "https://polygonscan.com/tx/",
	compiler.ChainBase:     "https://basescan.org/tx/",
	compiler.ChainSepolia:  "https://sepolia.etherscan.io/tx/",
}

const genericExplorerURL = "https://blockscan.com/tx/"

// ExplorerTxURL links a transaction hash to the chain's explorer,
// with a cross-chain explorer as the generic fallback.
func ExplorerTxURL(chain, txHash string) string {
	if base, ok := explorerURLs[compiler.NormalizeChain(chain)]; ok {
		return base + txHash
	}

	return genericExplorerURL + txHash
}

var txHashKeys = []string{"tx_hash", "transaction_hash", "txHash"}

// transactionLinks collects explorer links for any on-chain
// transaction references found in per-node output data.
func transactionLinks(execution *models.Execution) []string {
	var links []string

	for _, node := range execution.NodeExecutions {
		if node.OutputData == nil {
			continue
		}

		chain, _ := node.OutputData["chain"].(string)

		for _, key := range txHashKeys {
			hash, ok := node.OutputData[key].(string)
			if !ok || strings.TrimSpace(hash) == "" {
				continue
			}

			links = append(links, ExplorerTxURL(chain, hash))

			break
		}
	}

	return links
}
