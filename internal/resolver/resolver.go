// Package resolver decides which gas parameters are in effect for a pending transaction.
//
// Precedence, first match wins:
//  1. a manual override entered by the user
//  2. the transaction's own values, when the user chose "custom" or a dapp suggested them
//  3. the requested tier of the active estimate set
package resolver

import (
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/unit"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "resolver"

// Resolve computes the effective gas parameters for req. It has no side effects.
func Resolve(req model.ResolveRequest) (*model.EffectiveGasParams, error) {
	funcName := util.FuncName()

	if req.Mode != model.FeeModeLegacy && req.Mode != model.FeeModeFeeMarket {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: %q", model.ErrUnknownFeeMode, req.Mode))
	}
	if req.Estimates != nil && req.Estimates.Mode() != req.Mode {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: requested %s, estimates are %s", model.ErrIncompatibleEstimateMode, req.Mode, req.Estimates.Mode()))
	}

	var (
		params *model.EffectiveGasParams
		err    error
	)
	switch {
	case req.Override.ManuallySet:
		params, err = fromOverride(req.Mode, req.Override)
	case declares(req.Mode, req.Transaction) && prefersTransaction(req.Transaction, req.Estimates):
		params, err = fromTransaction(req.Mode, req.Transaction)
	default:
		params, err = fromEstimates(req.Mode, req.Estimates, req.Tier)
	}
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, err)
	}

	if params.Mode == model.FeeModeFeeMarket {
		if err := checkPriorityFee(params); err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		if set, ok := req.Estimates.(*model.FeeMarketEstimateSet); ok && set != nil && set.EstimatedBaseFee != "" {
			baseFee, err := gasValueFromDecGwei(set.EstimatedBaseFee)
			if err != nil {
				return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("base fee: %w", err))
			}
			params.BaseFeePerGas = baseFee
		}
	}

	log.Debug().
		Str("mode", string(params.Mode)).
		Str("source", string(params.Source)).
		Str("tier", string(req.Tier)).
		Msg(util.WrapLogMessage(packageName, funcName, "resolved gas params"))

	return params, nil
}

// LegacyGasPrice resolves a single gas price whatever the active estimate set is. When no
// legacy estimate applies it reports model.ZeroGasValue instead of failing.
func LegacyGasPrice(tx model.RawTransaction, estimates model.EstimateSet, tier model.Tier, override model.OverrideState) (model.GasValue, error) {
	if _, ok := estimates.(*model.LegacyEstimateSet); !ok {
		estimates = nil
	}

	params, err := Resolve(model.ResolveRequest{
		Mode:        model.FeeModeLegacy,
		Transaction: tx,
		Estimates:   estimates,
		Tier:        tier,
		Override:    override,
	})
	if err != nil {
		return model.GasValue{}, util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return *params.GasPrice, nil
}

// IsDappSuggested reports whether the transaction's declared gas values came from the dapp
// rather than from an estimate the user picked.
func IsDappSuggested(tx model.RawTransaction, estimates model.EstimateSet) bool {
	if tx.DappSuggested || tx.UserFeeLevel == model.UserFeeLevelDappSuggested {
		return true
	}
	if tx.DappSuggestedGasFees != nil && sameGasFields(tx.GasFields, *tx.DappSuggestedGasFees) {
		return true
	}
	// a named tier or "custom" means the user already chose
	if tx.UserFeeLevel != model.UserFeeLevelUnset {
		return false
	}
	if !tx.HasGasPrice() && !tx.HasFeeMarket() {
		return false
	}
	return !matchesAnyTier(tx.GasFields, estimates)
}

func prefersTransaction(tx model.RawTransaction, estimates model.EstimateSet) bool {
	return tx.UserFeeLevel == model.UserFeeLevelCustom || IsDappSuggested(tx, estimates)
}

func declares(mode model.FeeMode, tx model.RawTransaction) bool {
	if mode == model.FeeModeLegacy {
		return tx.HasGasPrice()
	}
	return tx.HasFeeMarket() || tx.HasGasPrice()
}

func fromOverride(mode model.FeeMode, override model.OverrideState) (*model.EffectiveGasParams, error) {
	value, err := gasValueFromDecGwei(override.Value)
	if err != nil {
		return nil, fmt.Errorf("manual value: %w", err)
	}

	if mode == model.FeeModeLegacy {
		return &model.EffectiveGasParams{Mode: mode, Source: model.ParamSourceManual, GasPrice: value}, nil
	}

	// a single manual value caps both fees, as a legacy gas price does on a fee market network
	priority := value
	if override.PriorityValue != "" {
		if priority, err = gasValueFromDecGwei(override.PriorityValue); err != nil {
			return nil, fmt.Errorf("manual priority value: %w", err)
		}
	}
	return &model.EffectiveGasParams{
		Mode:                 mode,
		Source:               model.ParamSourceManual,
		MaxFeePerGas:         value,
		MaxPriorityFeePerGas: priority,
	}, nil
}

func fromTransaction(mode model.FeeMode, tx model.RawTransaction) (*model.EffectiveGasParams, error) {
	if mode == model.FeeModeLegacy {
		gasPrice, err := gasValueFromHexWei(tx.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("transaction gas price: %w", err)
		}
		return &model.EffectiveGasParams{Mode: mode, Source: model.ParamSourceTransaction, GasPrice: gasPrice}, nil
	}

	if !tx.HasFeeMarket() {
		gasPrice, err := gasValueFromHexWei(tx.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("transaction gas price: %w", err)
		}
		return &model.EffectiveGasParams{
			Mode:                 mode,
			Source:               model.ParamSourceTransaction,
			MaxFeePerGas:         gasPrice,
			MaxPriorityFeePerGas: gasPrice,
		}, nil
	}

	maxFee, err := gasValueFromHexWei(tx.MaxFeePerGas)
	if err != nil {
		return nil, fmt.Errorf("transaction max fee per gas: %w", err)
	}
	priority, err := gasValueFromHexWei(tx.MaxPriorityFeePerGas)
	if err != nil {
		return nil, fmt.Errorf("transaction max priority fee per gas: %w", err)
	}
	return &model.EffectiveGasParams{
		Mode:                 mode,
		Source:               model.ParamSourceTransaction,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: priority,
	}, nil
}

func fromEstimates(mode model.FeeMode, estimates model.EstimateSet, requested model.Tier) (*model.EffectiveGasParams, error) {
	if _, err := model.ParseTier(string(requested)); err != nil {
		return nil, err
	}

	switch set := estimates.(type) {
	case *model.FeeMarketEstimateSet:
		if set.IsEmpty() {
			return nil, fmt.Errorf("%w: fee market estimate set is empty", model.ErrEstimatesUnavailable)
		}
		tier, _ := pickTier(requested, func(t model.Tier) bool {
			_, ok := set.Tiers[t]
			return ok
		})
		estimate := set.Tiers[tier]

		maxFee, err := gasValueFromDecGwei(estimate.MaxFeePerGas)
		if err != nil {
			return nil, fmt.Errorf("tier %s max fee per gas: %w", tier, err)
		}
		priority, err := gasValueFromDecGwei(estimate.MaxPriorityFeePerGas)
		if err != nil {
			return nil, fmt.Errorf("tier %s max priority fee per gas: %w", tier, err)
		}
		return &model.EffectiveGasParams{
			Mode:                 mode,
			Source:               model.ParamSourceEstimate,
			MaxFeePerGas:         maxFee,
			MaxPriorityFeePerGas: priority,
		}, nil

	case *model.LegacyEstimateSet:
		if set.IsEmpty() {
			return zeroLegacy(), nil
		}
		tier, _ := pickTier(requested, func(t model.Tier) bool {
			_, ok := set.Tiers[t]
			return ok
		})

		gasPrice, err := gasValueFromDecGwei(set.Tiers[tier])
		if err != nil {
			return nil, fmt.Errorf("tier %s gas price: %w", tier, err)
		}
		return &model.EffectiveGasParams{Mode: mode, Source: model.ParamSourceEstimate, GasPrice: gasPrice}, nil

	case nil:
		if mode == model.FeeModeFeeMarket {
			return nil, fmt.Errorf("%w: no fee market estimates", model.ErrEstimatesUnavailable)
		}
		return zeroLegacy(), nil
	}

	return nil, fmt.Errorf("%w: %T", model.ErrUnrecognizedEstimateShape, estimates)
}

// pickTier falls back to medium, then to any other tier, when the requested one is missing.
func pickTier(requested model.Tier, has func(model.Tier) bool) (model.Tier, bool) {
	for _, t := range []model.Tier{requested, model.TierMedium, model.TierHigh, model.TierLow} {
		if has(t) {
			return t, true
		}
	}
	return "", false
}

func zeroLegacy() *model.EffectiveGasParams {
	zero := model.ZeroGasValue
	return &model.EffectiveGasParams{Mode: model.FeeModeLegacy, Source: model.ParamSourceNone, GasPrice: &zero}
}

func checkPriorityFee(params *model.EffectiveGasParams) error {
	maxFee, err := unit.HexToWei(params.MaxFeePerGas.HexWei)
	if err != nil {
		return err
	}
	priority, err := unit.HexToWei(params.MaxPriorityFeePerGas.HexWei)
	if err != nil {
		return err
	}
	if priority.Cmp(maxFee) > 0 {
		return fmt.Errorf("%w: %s > %s gwei", model.ErrPriorityFeeAboveMaxFee, params.MaxPriorityFeePerGas.DecGwei, params.MaxFeePerGas.DecGwei)
	}
	return nil
}

func matchesAnyTier(fields model.GasFields, estimates model.EstimateSet) bool {
	switch set := estimates.(type) {
	case *model.LegacyEstimateSet:
		if set == nil || !fields.HasGasPrice() {
			return false
		}
		for _, gasPrice := range set.Tiers {
			if equalHexDec(fields.GasPrice, gasPrice) {
				return true
			}
		}
	case *model.FeeMarketEstimateSet:
		if set == nil || !fields.HasFeeMarket() {
			return false
		}
		for _, estimate := range set.Tiers {
			if equalHexDec(fields.MaxFeePerGas, estimate.MaxFeePerGas) &&
				equalHexDec(fields.MaxPriorityFeePerGas, estimate.MaxPriorityFeePerGas) {
				return true
			}
		}
	}
	return false
}

func sameGasFields(a, b model.GasFields) bool {
	if a.HasFeeMarket() && b.HasFeeMarket() {
		return equalHex(a.MaxFeePerGas, b.MaxFeePerGas) && equalHex(a.MaxPriorityFeePerGas, b.MaxPriorityFeePerGas)
	}
	if a.HasGasPrice() && b.HasGasPrice() {
		return equalHex(a.GasPrice, b.GasPrice)
	}
	return false
}

func equalHex(a, b string) bool {
	x, err := unit.HexToWei(a)
	if err != nil {
		return false
	}
	y, err := unit.HexToWei(b)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}

func equalHexDec(hex, decGwei string) bool {
	x, err := unit.HexToWei(hex)
	if err != nil {
		return false
	}
	y, err := unit.DecGweiToWei(decGwei)
	if err != nil {
		return false
	}
	return x.Cmp(y) == 0
}

func gasValueFromDecGwei(dec string) (*model.GasValue, error) {
	wei, err := unit.DecGweiToWei(dec)
	if err != nil {
		return nil, err
	}
	return gasValueFromWei(wei)
}

func gasValueFromHexWei(hex string) (*model.GasValue, error) {
	wei, err := unit.HexToWei(hex)
	if err != nil {
		return nil, err
	}
	return gasValueFromWei(wei)
}

func gasValueFromWei(wei *big.Int) (*model.GasValue, error) {
	hex, err := unit.WeiToHex(wei)
	if err != nil {
		return nil, err
	}
	return &model.GasValue{DecGwei: unit.WeiToDecGwei(wei), HexWei: hex}, nil
}
