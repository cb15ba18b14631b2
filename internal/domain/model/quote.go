package model

type QuoteRequest struct {
	// Mode is taken from the transaction's declared fields when empty.
	Mode     FeeMode
	Tier     Tier
	Override OverrideState
	// Layer2Fee is the L1 data fee in hex wei on rollup networks.
	Layer2Fee *string
	// Balance is the sender's balance in hex wei. The balance check is skipped when nil.
	Balance *string
}

type FeeQuote struct {
	GasLimit string // hex, as used for the totals
	Value    string // hex wei
	Params   EffectiveGasParams
	Totals   FeeTotals
	// TransactionTotalHexWei is the transaction value plus the maximum fee.
	TransactionTotalHexWei string
	IsDappSuggested        bool
	// InsufficientBalance is set when the balance does not cover the value plus the maximum fee.
	InsufficientBalance bool
}
