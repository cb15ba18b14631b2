package model

import "fmt"

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Tiers lists the known tiers from least to most aggressive.
var Tiers = []Tier{TierLow, TierMedium, TierHigh}

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierLow, TierMedium, TierHigh:
		return Tier(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

type FeeMode string

const (
	FeeModeLegacy    FeeMode = "legacy"
	FeeModeFeeMarket FeeMode = "feeMarket"
)

func ParseFeeMode(s string) (FeeMode, error) {
	switch s {
	case "legacy":
		return FeeModeLegacy, nil
	case "feeMarket", "fee-market", "eip1559":
		return FeeModeFeeMarket, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeeMode, s)
}

// ParamSource records which rule produced an EffectiveGasParams.
type ParamSource string

const (
	ParamSourceManual      ParamSource = "manual"
	ParamSourceTransaction ParamSource = "transaction"
	ParamSourceEstimate    ParamSource = "estimate"
	ParamSourceNone        ParamSource = "none"
)

// GasValue holds one amount as decimal GWEI for display and hex wei for submission.
type GasValue struct {
	DecGwei string
	HexWei  string
}

// ZeroGasValue is reported when no legacy estimate is available.
var ZeroGasValue = GasValue{DecGwei: "0", HexWei: "0x0"}

type EffectiveGasParams struct {
	Mode   FeeMode
	Source ParamSource

	// legacy
	GasPrice *GasValue

	// fee market
	MaxFeePerGas         *GasValue
	MaxPriorityFeePerGas *GasValue
	BaseFeePerGas        *GasValue // observed base fee of the active estimate set, if known
}

// IsCustom reports whether the params came from the user or the dapp rather than an estimate.
func (p EffectiveGasParams) IsCustom() bool {
	return p.Source == ParamSourceManual || p.Source == ParamSourceTransaction
}

type FeeTotals struct {
	MinimumHexWei   string
	MaximumHexWei   string
	EstimatedHexWei string
	Layer2HexWei    *string
}

// OverrideState is a snapshot of a user's manual gas entry.
type OverrideState struct {
	ManuallySet bool
	// Value is the gas price (legacy) or max fee per gas (fee market) in decimal GWEI.
	Value string
	// PriorityValue is the max priority fee per gas in decimal GWEI. Empty means Value is used.
	PriorityValue string
}

type ResolveRequest struct {
	Mode        FeeMode
	Transaction RawTransaction
	Estimates   EstimateSet
	Tier        Tier
	Override    OverrideState
}
