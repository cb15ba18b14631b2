package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
)

func legacyEstimates() *model.LegacyEstimateSet {
	return &model.LegacyEstimateSet{Tiers: map[model.Tier]string{
		model.TierLow:    "10",
		model.TierMedium: "20",
		model.TierHigh:   "30",
	}}
}

func feeMarketEstimates() *model.FeeMarketEstimateSet {
	return &model.FeeMarketEstimateSet{
		Tiers: map[model.Tier]model.FeeMarketTierEstimate{
			model.TierLow:    {MaxFeePerGas: "40", MaxPriorityFeePerGas: "1"},
			model.TierMedium: {MaxFeePerGas: "50", MaxPriorityFeePerGas: "2"},
			model.TierHigh:   {MaxFeePerGas: "60", MaxPriorityFeePerGas: "3"},
		},
		EstimatedBaseFee: "30",
	}
}

func gwei(dec, hex string) *model.GasValue {
	return &model.GasValue{DecGwei: dec, HexWei: hex}
}

func TestResolver_LegacyGasPrice(t *testing.T) {
	tests := []struct {
		name      string
		tx        model.RawTransaction
		estimates model.EstimateSet
		tier      model.Tier
		want      string
	}{
		{
			name: "custom transaction returns its own gas price",
			tx: model.RawTransaction{
				UserFeeLevel: model.UserFeeLevelCustom,
				GasFields:    model.GasFields{GasPrice: "0x5028"},
			},
			tier: model.TierMedium,
			want: "0.00002052",
		},
		{
			name: "named user fee level uses the requested tier",
			tx: model.RawTransaction{
				UserFeeLevel: model.UserFeeLevelHigh,
				GasFields:    model.GasFields{GasPrice: "0x5028"},
			},
			estimates: legacyEstimates(),
			tier:      model.TierHigh,
			want:      "30",
		},
		{
			name:      "no gas price returns the requested tier",
			estimates: legacyEstimates(),
			tier:      model.TierMedium,
			want:      "20",
		},
		{
			name:      "high tier",
			estimates: legacyEstimates(),
			tier:      model.TierHigh,
			want:      "30",
		},
		{
			name:      "fee market estimates report zero",
			estimates: feeMarketEstimates(),
			tier:      model.TierMedium,
			want:      "0",
		},
		{
			name:      "empty legacy set reports zero",
			estimates: &model.LegacyEstimateSet{},
			tier:      model.TierMedium,
			want:      "0",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LegacyGasPrice(tt.tx, tt.estimates, tt.tier, model.OverrideState{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.DecGwei)
		})
	}
}

func TestResolver_ManualOverride(t *testing.T) {
	override := NewOverrideState()

	got, err := LegacyGasPrice(model.RawTransaction{}, legacyEstimates(), model.TierMedium, override.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "20", got.DecGwei)

	override.SetManualValue("100")

	got, err = LegacyGasPrice(model.RawTransaction{}, legacyEstimates(), model.TierMedium, override.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, model.GasValue{DecGwei: "100", HexWei: "0x174876e800"}, got)

	// the tier no longer matters while the override is set
	got, err = LegacyGasPrice(model.RawTransaction{}, legacyEstimates(), model.TierHigh, override.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "100", got.DecGwei)

	override.Clear()

	got, err = LegacyGasPrice(model.RawTransaction{}, legacyEstimates(), model.TierHigh, override.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "30", got.DecGwei)
}

func TestResolver_OverridePrecedence(t *testing.T) {
	override := model.OverrideState{ManuallySet: true, Value: "7"}
	txs := []model.RawTransaction{
		{},
		{UserFeeLevel: model.UserFeeLevelCustom, GasFields: model.GasFields{GasPrice: "0x5028"}},
		{DappSuggested: true, GasFields: model.GasFields{GasPrice: "0x1"}},
	}

	for _, tx := range txs {
		for _, tier := range append(model.Tiers, model.Tier("bogus")) {
			params, err := Resolve(model.ResolveRequest{
				Mode:        model.FeeModeLegacy,
				Transaction: tx,
				Estimates:   legacyEstimates(),
				Tier:        tier,
				Override:    override,
			})
			require.NoError(t, err)
			assert.Equal(t, "7", params.GasPrice.DecGwei)
			assert.Equal(t, model.ParamSourceManual, params.Source)
		}
	}
}

func TestResolver_CustomPrecedence(t *testing.T) {
	tx := model.RawTransaction{
		UserFeeLevel: model.UserFeeLevelCustom,
		GasFields:    model.GasFields{GasPrice: "0x4a817c800"},
	}

	for _, tier := range model.Tiers {
		params, err := Resolve(model.ResolveRequest{
			Mode:        model.FeeModeLegacy,
			Transaction: tx,
			Estimates:   legacyEstimates(),
			Tier:        tier,
		})
		require.NoError(t, err)
		assert.Equal(t, gwei("20", "0x4a817c800"), params.GasPrice)
		assert.Equal(t, model.ParamSourceTransaction, params.Source)
		assert.True(t, params.IsCustom())
	}
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		req     model.ResolveRequest
		want    *model.EffectiveGasParams
		wantErr error
	}{
		{
			name: "fee market tier",
			req: model.ResolveRequest{
				Mode:      model.FeeModeFeeMarket,
				Estimates: feeMarketEstimates(),
				Tier:      model.TierHigh,
			},
			want: &model.EffectiveGasParams{
				Mode:                 model.FeeModeFeeMarket,
				Source:               model.ParamSourceEstimate,
				MaxFeePerGas:         gwei("60", "0xdf8475800"),
				MaxPriorityFeePerGas: gwei("3", "0xb2d05e00"),
				BaseFeePerGas:        gwei("30", "0x6fc23ac00"),
			},
		},
		{
			name: "fee market custom transaction",
			req: model.ResolveRequest{
				Mode: model.FeeModeFeeMarket,
				Transaction: model.RawTransaction{
					UserFeeLevel: model.UserFeeLevelCustom,
					GasFields:    model.GasFields{MaxFeePerGas: "0x174876e800", MaxPriorityFeePerGas: "0x3b9aca00"},
				},
				Estimates: feeMarketEstimates(),
				Tier:      model.TierLow,
			},
			want: &model.EffectiveGasParams{
				Mode:                 model.FeeModeFeeMarket,
				Source:               model.ParamSourceTransaction,
				MaxFeePerGas:         gwei("100", "0x174876e800"),
				MaxPriorityFeePerGas: gwei("1", "0x3b9aca00"),
				BaseFeePerGas:        gwei("30", "0x6fc23ac00"),
			},
		},
		{
			name: "fee market with legacy gas price declared by the dapp",
			req: model.ResolveRequest{
				Mode:        model.FeeModeFeeMarket,
				Transaction: model.RawTransaction{GasFields: model.GasFields{GasPrice: "0x4a817c800"}},
				Estimates:   feeMarketEstimates(),
				Tier:        model.TierMedium,
			},
			want: &model.EffectiveGasParams{
				Mode:                 model.FeeModeFeeMarket,
				Source:               model.ParamSourceTransaction,
				MaxFeePerGas:         gwei("20", "0x4a817c800"),
				MaxPriorityFeePerGas: gwei("20", "0x4a817c800"),
				BaseFeePerGas:        gwei("30", "0x6fc23ac00"),
			},
		},
		{
			name: "fee market manual pair",
			req: model.ResolveRequest{
				Mode:      model.FeeModeFeeMarket,
				Estimates: feeMarketEstimates(),
				Tier:      model.TierMedium,
				Override:  model.OverrideState{ManuallySet: true, Value: "80", PriorityValue: "5"},
			},
			want: &model.EffectiveGasParams{
				Mode:                 model.FeeModeFeeMarket,
				Source:               model.ParamSourceManual,
				MaxFeePerGas:         gwei("80", "0x12a05f2000"),
				MaxPriorityFeePerGas: gwei("5", "0x12a05f200"),
				BaseFeePerGas:        gwei("30", "0x6fc23ac00"),
			},
		},
		{
			name: "missing legacy tier falls back to medium",
			req: model.ResolveRequest{
				Mode:      model.FeeModeLegacy,
				Estimates: &model.LegacyEstimateSet{Tiers: map[model.Tier]string{model.TierMedium: "20"}},
				Tier:      model.TierHigh,
			},
			want: &model.EffectiveGasParams{
				Mode:     model.FeeModeLegacy,
				Source:   model.ParamSourceEstimate,
				GasPrice: gwei("20", "0x4a817c800"),
			},
		},
		{
			name: "missing legacy tier and medium falls back to another tier",
			req: model.ResolveRequest{
				Mode:      model.FeeModeLegacy,
				Estimates: &model.LegacyEstimateSet{Tiers: map[model.Tier]string{model.TierLow: "10"}},
				Tier:      model.TierHigh,
			},
			want: &model.EffectiveGasParams{
				Mode:     model.FeeModeLegacy,
				Source:   model.ParamSourceEstimate,
				GasPrice: gwei("10", "0x2540be400"),
			},
		},
		{
			name: "no legacy estimates",
			req: model.ResolveRequest{
				Mode: model.FeeModeLegacy,
				Tier: model.TierMedium,
			},
			want: &model.EffectiveGasParams{
				Mode:     model.FeeModeLegacy,
				Source:   model.ParamSourceNone,
				GasPrice: gwei("0", "0x0"),
			},
		},
		{
			name: "error - legacy request against fee market estimates",
			req: model.ResolveRequest{
				Mode:      model.FeeModeLegacy,
				Estimates: feeMarketEstimates(),
				Tier:      model.TierMedium,
			},
			wantErr: model.ErrIncompatibleEstimateMode,
		},
		{
			name: "error - fee market request against legacy estimates",
			req: model.ResolveRequest{
				Mode:      model.FeeModeFeeMarket,
				Estimates: legacyEstimates(),
				Tier:      model.TierMedium,
				Override:  model.OverrideState{ManuallySet: true, Value: "1"},
			},
			wantErr: model.ErrIncompatibleEstimateMode,
		},
		{
			name: "error - empty fee market set",
			req: model.ResolveRequest{
				Mode:      model.FeeModeFeeMarket,
				Estimates: &model.FeeMarketEstimateSet{EstimatedBaseFee: "30"},
				Tier:      model.TierMedium,
			},
			wantErr: model.ErrEstimatesUnavailable,
		},
		{
			name: "error - no fee market estimates",
			req: model.ResolveRequest{
				Mode: model.FeeModeFeeMarket,
				Tier: model.TierMedium,
			},
			wantErr: model.ErrEstimatesUnavailable,
		},
		{
			name: "error - unknown tier",
			req: model.ResolveRequest{
				Mode:      model.FeeModeLegacy,
				Estimates: legacyEstimates(),
				Tier:      model.Tier("turbo"),
			},
			wantErr: model.ErrUnknownTier,
		},
		{
			name: "error - unknown mode",
			req: model.ResolveRequest{
				Mode: model.FeeMode("eip4844"),
				Tier: model.TierMedium,
			},
			wantErr: model.ErrUnknownFeeMode,
		},
		{
			name: "error - priority fee above max fee",
			req: model.ResolveRequest{
				Mode:      model.FeeModeFeeMarket,
				Estimates: feeMarketEstimates(),
				Tier:      model.TierMedium,
				Override:  model.OverrideState{ManuallySet: true, Value: "10", PriorityValue: "11"},
			},
			wantErr: model.ErrPriorityFeeAboveMaxFee,
		},
		{
			name: "error - malformed manual value",
			req: model.ResolveRequest{
				Mode:     model.FeeModeLegacy,
				Tier:     model.TierMedium,
				Override: model.OverrideState{ManuallySet: true, Value: "-5"},
			},
			wantErr: model.ErrMalformedNumericInput,
		},
		{
			name: "error - malformed declared gas price",
			req: model.ResolveRequest{
				Mode: model.FeeModeLegacy,
				Transaction: model.RawTransaction{
					UserFeeLevel: model.UserFeeLevelCustom,
					GasFields:    model.GasFields{GasPrice: "0xnothex"},
				},
				Tier: model.TierMedium,
			},
			wantErr: model.ErrMalformedNumericInput,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolver_Resolve_Idempotent(t *testing.T) {
	req := model.ResolveRequest{
		Mode:      model.FeeModeFeeMarket,
		Estimates: feeMarketEstimates(),
		Tier:      model.TierMedium,
	}

	first, err := Resolve(req)
	require.NoError(t, err)
	second, err := Resolve(req)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(first, second))
}

func TestResolver_IsDappSuggested(t *testing.T) {
	tests := []struct {
		name      string
		tx        model.RawTransaction
		estimates model.EstimateSet
		want      bool
	}{
		{
			name: "explicit flag",
			tx:   model.RawTransaction{DappSuggested: true},
			want: true,
		},
		{
			name: "dapp suggested fee level",
			tx:   model.RawTransaction{UserFeeLevel: model.UserFeeLevelDappSuggested},
			want: true,
		},
		{
			name: "declared values equal the dapp suggested gas fees",
			tx: model.RawTransaction{
				UserFeeLevel:         model.UserFeeLevelMedium,
				GasFields:            model.GasFields{GasPrice: "0x5028"},
				DappSuggestedGasFees: &model.GasFields{GasPrice: "0x05028"},
			},
			estimates: legacyEstimates(),
			want:      true,
		},
		{
			name:      "unset level with a gas price no tier produces",
			tx:        model.RawTransaction{GasFields: model.GasFields{GasPrice: "0x5028"}},
			estimates: legacyEstimates(),
			want:      true,
		},
		{
			name:      "unset level with a gas price equal to a tier",
			tx:        model.RawTransaction{GasFields: model.GasFields{GasPrice: "0x4a817c800"}},
			estimates: legacyEstimates(),
			want:      false,
		},
		{
			name: "unset level with a fee market pair equal to a tier",
			tx: model.RawTransaction{GasFields: model.GasFields{
				MaxFeePerGas:         "0xba43b7400",
				MaxPriorityFeePerGas: "0x77359400",
			}},
			estimates: feeMarketEstimates(),
			want:      false,
		},
		{
			name:      "named level is the user's choice",
			tx:        model.RawTransaction{UserFeeLevel: model.UserFeeLevelLow, GasFields: model.GasFields{GasPrice: "0x5028"}},
			estimates: legacyEstimates(),
			want:      false,
		},
		{
			name:      "nothing declared",
			estimates: legacyEstimates(),
			want:      false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsDappSuggested(tt.tx, tt.estimates))
		})
	}
}
