package model

// EstimateSet is either *LegacyEstimateSet or *FeeMarketEstimateSet.
type EstimateSet interface {
	Mode() FeeMode
	IsEmpty() bool
	isEstimateSet()
}

// LegacyEstimateSet maps tiers to a gas price in decimal GWEI.
type LegacyEstimateSet struct {
	Tiers map[Tier]string
}

func (*LegacyEstimateSet) Mode() FeeMode { return FeeModeLegacy }
func (s *LegacyEstimateSet) IsEmpty() bool { return s == nil || len(s.Tiers) == 0 }
func (*LegacyEstimateSet) isEstimateSet() {}

type FeeMarketTierEstimate struct {
	MaxFeePerGas         string
	MaxPriorityFeePerGas string
}

// FeeMarketEstimateSet maps tiers to fee caps in decimal GWEI, plus the observed base fee.
type FeeMarketEstimateSet struct {
	Tiers            map[Tier]FeeMarketTierEstimate
	EstimatedBaseFee string
}

func (*FeeMarketEstimateSet) Mode() FeeMode { return FeeModeFeeMarket }
func (s *FeeMarketEstimateSet) IsEmpty() bool { return s == nil || len(s.Tiers) == 0 }
func (*FeeMarketEstimateSet) isEstimateSet() {}
