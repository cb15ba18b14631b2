package model

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

type UserFeeLevel string

const (
	UserFeeLevelUnset         UserFeeLevel = ""
	UserFeeLevelLow           UserFeeLevel = UserFeeLevel(TierLow)
	UserFeeLevelMedium        UserFeeLevel = UserFeeLevel(TierMedium)
	UserFeeLevelHigh          UserFeeLevel = UserFeeLevel(TierHigh)
	UserFeeLevelCustom        UserFeeLevel = "custom"
	UserFeeLevelDappSuggested UserFeeLevel = "dappSuggested"
)

// GasFields are the gas values a transaction declares, all hex wei. Empty means absent.
type GasFields struct {
	GasPrice             string
	MaxFeePerGas         string
	MaxPriorityFeePerGas string
}

func (g GasFields) HasGasPrice() bool {
	return g.GasPrice != ""
}

func (g GasFields) HasFeeMarket() bool {
	return g.MaxFeePerGas != "" && g.MaxPriorityFeePerGas != ""
}

type RawTransaction struct {
	GasLimit string // hex
	Value    string // hex wei
	GasFields

	UserFeeLevel  UserFeeLevel
	DappSuggested bool
	// DappSuggestedGasFees holds the gas values the dapp supplied when the transaction was created.
	DappSuggestedGasFees *GasFields
}

// IsLegacy reports whether the transaction declares a gas price and no fee market caps.
func (tx RawTransaction) IsLegacy() bool {
	return tx.MaxFeePerGas == "" && tx.MaxPriorityFeePerGas == ""
}

// RawTransactionFromEth copies the gas fields of an unsigned or signed go-ethereum transaction.
func RawTransactionFromEth(tx *types.Transaction, level UserFeeLevel) RawTransaction {
	raw := RawTransaction{
		GasLimit:     hexutil.EncodeUint64(tx.Gas()),
		UserFeeLevel: level,
	}
	if tx.Value() != nil {
		raw.Value = hexutil.EncodeBig(tx.Value())
	}

	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		raw.GasPrice = hexutil.EncodeBig(tx.GasPrice())
	default:
		raw.MaxFeePerGas = hexutil.EncodeBig(tx.GasFeeCap())
		raw.MaxPriorityFeePerGas = hexutil.EncodeBig(tx.GasTipCap())
	}

	return raw
}
