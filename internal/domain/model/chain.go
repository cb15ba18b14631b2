package model

import (
	"math/big"

	"github.com/yukia3e/gas-fee-resolver/internal/config"
)

const (
	BlockchainDecimalMainnet         = 1
	BlockchainDecimalSepolia         = 11155111
	BlockchainDecimalOptimism        = 10
	BlockchainDecimalOptimismTestnet = 420
	BlockchainDecimalOptimismSepolia = 11155420
	BlockchainDecimalHardhatLocal    = 1337
)

func GetChainID() *big.Int {
	if id, ok := config.GetChainID(); ok {
		return new(big.Int).SetUint64(id)
	}
	if config.IsProduction() {
		return big.NewInt(BlockchainDecimalMainnet)
	}
	if config.IsStaging() || config.IsDevelopment() {
		return big.NewInt(BlockchainDecimalSepolia)
	}

	return big.NewInt(BlockchainDecimalHardhatLocal)
}

// IsRollupChain reports whether transactions on the chain pay a separate L1 data fee.
func IsRollupChain(chainID *big.Int) bool {
	if chainID == nil || !chainID.IsUint64() {
		return false
	}
	switch chainID.Uint64() {
	case BlockchainDecimalOptimism, BlockchainDecimalOptimismTestnet, BlockchainDecimalOptimismSepolia:
		return true
	}
	return false
}
