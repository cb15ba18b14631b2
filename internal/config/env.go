package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultGasLimit     = 21000
	DefaultFeeMode      = "legacy"
	DefaultEstimateTier = "medium"
)

func GetEnvironment() string {
	return os.Getenv("APP_ENV")
}

func IsLocal() bool {
	return GetEnvironment() == "local"
}

func IsDevelopment() bool {
	return GetEnvironment() == "local" || GetEnvironment() == "development"
}

func IsStaging() bool {
	return GetEnvironment() == "staging"
}

func IsProduction() bool {
	return GetEnvironment() == "production"
}

func MustGetEstimatesFilePath() string {
	path := os.Getenv("ESTIMATES_FILE_PATH")
	if path == "" {
		panic("ESTIMATES_FILE_PATH is not set")
	}

	return path
}

func GetTransactionFilePath() string {
	return os.Getenv("TRANSACTION_FILE_PATH")
}

func GetFeeMode() string {
	feeMode := os.Getenv("FEE_MODE")
	if feeMode == "" {
		return DefaultFeeMode
	}
	return feeMode
}

func GetEstimateTier() string {
	tier := os.Getenv("ESTIMATE_TIER")
	if tier == "" {
		return DefaultEstimateTier
	}
	return tier
}

func GetGasLimit() uint64 {
	gasLimitStr := os.Getenv("GAS_LIMIT")
	if gasLimitStr == "" {
		return DefaultGasLimit
	}
	gasLimit, err := strconv.ParseUint(gasLimitStr, 10, 64)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("config.GetGasLimit: failed to parse gas limit: %v", err.Error()))
		return DefaultGasLimit
	}
	return gasLimit
}

// GetChainID returns CHAIN_ID when it is set to a valid decimal number.
func GetChainID() (uint64, bool) {
	chainIDStr := os.Getenv("CHAIN_ID")
	if chainIDStr == "" {
		return 0, false
	}
	chainID, err := strconv.ParseUint(chainIDStr, 10, 64)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("config.GetChainID: failed to parse chain id: %v", err.Error()))
		return 0, false
	}
	return chainID, true
}

func IsRollupNetwork() bool {
	return os.Getenv("NETWORK_TYPE") == "rollup"
}

func GetLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if IsProduction() {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("config.GetLogLevel: failed to parse log level: %v", err.Error()))
		return zerolog.InfoLevel
	}
	return level
}
