// Package ethtx builds unsigned go-ethereum transactions from resolved gas params.
package ethtx

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/unit"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "ethtx"

type UnsignedTransactionRequest struct {
	ChainID  *big.Int        // destination chain ID, model.GetChainID() when nil
	Nonce    uint64          // nonce of sender account
	To       *common.Address // nil means contract creation
	Data     []byte          // contract invocation input data
	Value    *big.Int        // wei amount
	GasLimit string          // hex
	Params   model.EffectiveGasParams
}

// BuildUnsignedTransaction returns a LegacyTx or a DynamicFeeTx depending on the params' mode.
func BuildUnsignedTransaction(req UnsignedTransactionRequest) (*types.Transaction, error) {
	funcName := util.FuncName()

	gasLimit, err := unit.HexToWei(req.GasLimit)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to parse gas limit: %w", err))
	}
	if !gasLimit.IsUint64() {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: gas limit %s", model.ErrNegativeOrOverflowInput, req.GasLimit))
	}

	chainID := req.ChainID
	if chainID == nil {
		chainID = model.GetChainID()
	}
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	var tx *types.Transaction
	switch req.Params.Mode {
	case model.FeeModeLegacy:
		gasPrice, err := weiOf("gas price", req.Params.GasPrice)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		// LegacyTx
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    req.Nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit.Uint64(),
			To:       req.To,
			Value:    value,
			Data:     req.Data,
		})

	case model.FeeModeFeeMarket:
		gasFeeCap, err := weiOf("max fee per gas", req.Params.MaxFeePerGas)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		gasTipCap, err := weiOf("max priority fee per gas", req.Params.MaxPriorityFeePerGas)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		if gasTipCap.Cmp(gasFeeCap) > 0 {
			return nil, util.WrapErrorForLog(packageName, funcName, model.ErrPriorityFeeAboveMaxFee)
		}
		// DynamicFeeTx
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     req.Nonce,
			GasTipCap: gasTipCap,
			GasFeeCap: gasFeeCap,
			Gas:       gasLimit.Uint64(),
			To:        req.To,
			Value:     value,
			Data:      req.Data,
		})

	default:
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: %q", model.ErrUnknownFeeMode, req.Params.Mode))
	}

	log.Debug().
		Uint8("type", tx.Type()).
		Str("chainID", chainID.String()).
		Uint64("gas", tx.Gas()).
		Msg(util.WrapLogMessage(packageName, funcName, "built unsigned transaction"))

	return tx, nil
}

func weiOf(name string, v *model.GasValue) (*big.Int, error) {
	if v == nil {
		return nil, fmt.Errorf("%s is missing", name)
	}
	wei, err := unit.HexToWei(v.HexWei)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return wei, nil
}
