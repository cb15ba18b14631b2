// Package aggregator turns effective gas parameters into minimum, maximum and estimated costs.
package aggregator

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/unit"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "aggregator"

// ComputeTotals multiplies the gas limit by the effective prices. For fee market params the
// estimate uses base fee + priority fee, kept between the minimum and the maximum. A layer-2
// settlement fee, when given, is added to every figure.
func ComputeTotals(gasLimit string, params model.EffectiveGasParams, layer2Fee *string) (*model.FeeTotals, error) {
	funcName := util.FuncName()

	limit, err := parseAmount("gas limit", gasLimit)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, err)
	}

	var minPrice, maxPrice, estimatePrice *big.Int
	switch params.Mode {
	case model.FeeModeLegacy:
		if params.GasPrice == nil {
			return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: gas price is missing", model.ErrNegativeOrOverflowInput))
		}
		gasPrice, err := parseAmount("gas price", params.GasPrice.HexWei)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		minPrice, maxPrice, estimatePrice = gasPrice, gasPrice, gasPrice

	case model.FeeModeFeeMarket:
		if params.MaxFeePerGas == nil || params.MaxPriorityFeePerGas == nil {
			return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: max fee or max priority fee is missing", model.ErrNegativeOrOverflowInput))
		}
		if maxPrice, err = parseAmount("max fee per gas", params.MaxFeePerGas.HexWei); err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		if minPrice, err = parseAmount("max priority fee per gas", params.MaxPriorityFeePerGas.HexWei); err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		if minPrice.Cmp(maxPrice) > 0 {
			return nil, util.WrapErrorForLog(packageName, funcName, model.ErrPriorityFeeAboveMaxFee)
		}

		estimatePrice = maxPrice
		if params.BaseFeePerGas != nil {
			baseFee, err := parseAmount("base fee per gas", params.BaseFeePerGas.HexWei)
			if err != nil {
				return nil, util.WrapErrorForLog(packageName, funcName, err)
			}
			estimatePrice = new(big.Int).Add(baseFee, minPrice)
		}

	default:
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: %q", model.ErrUnknownFeeMode, params.Mode))
	}

	minimum := new(big.Int).Mul(limit, minPrice)
	maximum := new(big.Int).Mul(limit, maxPrice)
	estimated := clamp(new(big.Int).Mul(limit, estimatePrice), minimum, maximum)

	totals := &model.FeeTotals{}
	if layer2Fee != nil {
		l2, err := parseAmount("layer 2 fee", *layer2Fee)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		minimum.Add(minimum, l2)
		maximum.Add(maximum, l2)
		estimated.Add(estimated, l2)
		totals.Layer2HexWei = util.Pointer(hexutil.EncodeBig(l2))
	}

	// maximum is the largest figure; a total the network cannot represent is rejected
	if _, overflow := uint256.FromBig(maximum); overflow {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: maximum total exceeds 256 bits", model.ErrNegativeOrOverflowInput))
	}

	totals.MinimumHexWei = hexutil.EncodeBig(minimum)
	totals.MaximumHexWei = hexutil.EncodeBig(maximum)
	totals.EstimatedHexWei = hexutil.EncodeBig(estimated)
	return totals, nil
}

// TransactionTotal is the transaction value plus the maximum fee. An empty value counts as zero.
func TransactionTotal(valueHex string, totals model.FeeTotals) (string, error) {
	if valueHex == "" {
		valueHex = "0x0"
	}
	total, err := unit.AddHexWei(valueHex, totals.MaximumHexWei)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), fmt.Errorf("%w: %w", model.ErrNegativeOrOverflowInput, err))
	}
	return total, nil
}

// IsBalanceSufficient reports whether balance covers amount plus gasTotal.
func IsBalanceSufficient(amountHex, gasTotalHex, balanceHex string) (bool, error) {
	funcName := util.FuncName()

	if amountHex == "" {
		amountHex = "0x0"
	}
	required, err := unit.AddHexWei(amountHex, gasTotalHex)
	if err != nil {
		return false, util.WrapErrorForLog(packageName, funcName, err)
	}
	requiredWei, err := unit.HexToWei(required)
	if err != nil {
		return false, util.WrapErrorForLog(packageName, funcName, err)
	}
	balance, err := unit.HexToWei(balanceHex)
	if err != nil {
		return false, util.WrapErrorForLog(packageName, funcName, err)
	}
	return balance.Cmp(requiredWei) >= 0, nil
}

func parseAmount(name, hex string) (*big.Int, error) {
	v, err := unit.HexToWei(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrNegativeOrOverflowInput, name, err)
	}
	return v, nil
}

func clamp(v, lo, hi *big.Int) *big.Int {
	if v.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	if v.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	return v
}
