package repository

import (
	"context"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
)

// EstimateSource supplies raw gas estimate payloads. Fetching and refresh cadence belong to the implementation.
type EstimateSource interface {
	FetchRawEstimates(ctx context.Context) ([]byte, error)
}

// TransactionSource supplies the pending transaction under confirmation.
type TransactionSource interface {
	LoadTransaction(ctx context.Context) (*model.RawTransaction, error)
}

// FeeQuoter resolves gas parameters and fee totals for a pending transaction.
type FeeQuoter interface {
	Quote(ctx context.Context, req model.QuoteRequest) (*model.FeeQuote, error)
}
