// Package estimate normalizes raw gas estimate payloads into a model.EstimateSet.
package estimate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/unit"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "estimate"

type tierAlias struct {
	key  string
	tier model.Tier
}

// Canonical names come first so they win over gas station aliases.
var tierAliases = []tierAlias{
	{"low", model.TierLow},
	{"medium", model.TierMedium},
	{"high", model.TierHigh},
	{"safeLow", model.TierLow},
	{"standard", model.TierMedium},
	{"average", model.TierMedium},
	{"fast", model.TierHigh},
}

var (
	baseFeeKeys     = []string{"estimatedBaseFee", "baseFee"}
	maxFeeKeys      = []string{"suggestedMaxFeePerGas", "maxFeePerGas", "maxFee"}
	maxPriorityKeys = []string{"suggestedMaxPriorityFeePerGas", "maxPriorityFeePerGas", "maxPriorityFee"}
	gasPriceKeys    = []string{"gasPrice"}
)

// Normalize detects the payload shape and converts it to an estimate set.
//
//	{"estimatedBaseFee": ..., "medium": {"suggestedMaxFeePerGas": ..., ...}}  fee market
//	{"estimatedBaseFee": ..., "standard": {"maxFee": ..., "maxPriorityFee": ...}}  fee market (gas station v2)
//	{"low": "10", "medium": "20", "high": "30"}  legacy
//	{"gasPrice": "25"}  legacy, medium only
//
// All amounts are decimal GWEI, given as JSON strings or numbers.
func Normalize(raw []byte) (model.EstimateSet, error) {
	funcName := util.FuncName()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: error decoding payload: %v", model.ErrUnrecognizedEstimateShape, err))
	}

	if baseFeeRaw, ok := lookup(fields, baseFeeKeys); ok {
		set, err := normalizeFeeMarket(fields, baseFeeRaw)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		return set, nil
	}

	if hasTierKey(fields) {
		set, err := normalizeLegacy(fields)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, err)
		}
		return set, nil
	}

	if gasPriceRaw, ok := lookup(fields, gasPriceKeys); ok {
		gasPrice, present, err := decodeDecimal(gasPriceRaw)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("gasPrice: %w", err))
		}
		set := &model.LegacyEstimateSet{Tiers: map[model.Tier]string{}}
		if present {
			set.Tiers[model.TierMedium] = gasPrice
		}
		return set, nil
	}

	return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: no base fee, tier or gasPrice field", model.ErrUnrecognizedEstimateShape))
}

func normalizeLegacy(fields map[string]json.RawMessage) (*model.LegacyEstimateSet, error) {
	set := &model.LegacyEstimateSet{Tiers: map[model.Tier]string{}}

	for _, alias := range tierAliases {
		raw, ok := fields[alias.key]
		if !ok {
			continue
		}
		if _, exists := set.Tiers[alias.tier]; exists {
			continue
		}
		if isObject(raw) {
			return nil, fmt.Errorf("%w: tier %q is an object but no base fee is present", model.ErrUnrecognizedEstimateShape, alias.key)
		}

		gasPrice, present, err := decodeDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", alias.key, err)
		}
		if present {
			set.Tiers[alias.tier] = gasPrice
		}
	}

	return set, nil
}

func normalizeFeeMarket(fields map[string]json.RawMessage, baseFeeRaw json.RawMessage) (*model.FeeMarketEstimateSet, error) {
	baseFee, _, err := decodeDecimal(baseFeeRaw)
	if err != nil {
		return nil, fmt.Errorf("base fee: %w", err)
	}
	set := &model.FeeMarketEstimateSet{
		Tiers:            map[model.Tier]model.FeeMarketTierEstimate{},
		EstimatedBaseFee: baseFee,
	}

	for _, alias := range tierAliases {
		raw, ok := fields[alias.key]
		if !ok || isNull(raw) {
			continue
		}
		if _, exists := set.Tiers[alias.tier]; exists {
			continue
		}

		var tierFields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &tierFields); err != nil {
			return nil, fmt.Errorf("%w: tier %q is not an object", model.ErrUnrecognizedEstimateShape, alias.key)
		}

		maxFeeRaw, okMax := lookup(tierFields, maxFeeKeys)
		priorityRaw, okPriority := lookup(tierFields, maxPriorityKeys)
		if !okMax || !okPriority {
			return nil, fmt.Errorf("%w: tier %q lacks max fee or max priority fee", model.ErrUnrecognizedEstimateShape, alias.key)
		}

		maxFee, _, err := decodeDecimal(maxFeeRaw)
		if err != nil {
			return nil, fmt.Errorf("tier %q max fee: %w", alias.key, err)
		}
		priority, _, err := decodeDecimal(priorityRaw)
		if err != nil {
			return nil, fmt.Errorf("tier %q max priority fee: %w", alias.key, err)
		}

		set.Tiers[alias.tier] = model.FeeMarketTierEstimate{
			MaxFeePerGas:         maxFee,
			MaxPriorityFeePerGas: priority,
		}
	}

	return set, nil
}

// decodeDecimal reads a JSON string or number holding decimal GWEI and returns it in canonical form.
// A JSON null is reported as not present.
func decodeDecimal(raw json.RawMessage) (string, bool, error) {
	if isNull(raw) {
		return "", false, nil
	}

	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return "", false, fmt.Errorf("%w: %v", model.ErrMalformedNumericInput, err)
	}

	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = x
	default:
		return "", false, fmt.Errorf("%w: %s", model.ErrMalformedNumericInput, string(raw))
	}

	canonical, err := unit.CanonicalDecGwei(s)
	if err != nil {
		return "", false, err
	}
	return canonical, true, nil
}

func lookup(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw, true
		}
	}
	return nil, false
}

func hasTierKey(fields map[string]json.RawMessage) bool {
	for _, alias := range tierAliases {
		if _, ok := fields[alias.key]; ok {
			return true
		}
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
