// Package quote wires the transaction and estimate sources to the resolver and the aggregator.
package quote

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog/log"

	"github.com/yukia3e/gas-fee-resolver/internal/aggregator"
	"github.com/yukia3e/gas-fee-resolver/internal/config"
	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/domain/repository"
	"github.com/yukia3e/gas-fee-resolver/internal/estimate"
	"github.com/yukia3e/gas-fee-resolver/internal/resolver"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "quote"

type quoter struct {
	estimateSource repository.EstimateSource
	txSource       repository.TransactionSource
}

func New(estimateSource repository.EstimateSource, txSource repository.TransactionSource) repository.FeeQuoter {
	return &quoter{
		estimateSource: estimateSource,
		txSource:       txSource,
	}
}

func (q *quoter) Quote(ctx context.Context, req model.QuoteRequest) (*model.FeeQuote, error) {
	funcName := util.FuncName()

	tx, err := q.txSource.LoadTransaction(ctx)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to load transaction: %w", err))
	}

	estimates, err := q.fetchEstimates(ctx)
	if err != nil {
		// resolution continues without estimates; fee market mode fails below
		log.Error().Msg(util.WrapLogMessage(packageName, funcName, fmt.Sprintf("failed to get estimates: %v", err)))
	}

	mode := req.Mode
	if mode == "" {
		mode = model.FeeModeFeeMarket
		if tx.IsLegacy() {
			mode = model.FeeModeLegacy
		}
	}

	params, err := resolver.Resolve(model.ResolveRequest{
		Mode:        mode,
		Transaction: *tx,
		Estimates:   estimates,
		Tier:        req.Tier,
		Override:    req.Override,
	})
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to resolve gas params: %w", err))
	}

	gasLimit := tx.GasLimit
	if gasLimit == "" {
		gasLimit = hexutil.EncodeUint64(config.GetGasLimit())
	}

	totals, err := aggregator.ComputeTotals(gasLimit, *params, req.Layer2Fee)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to compute totals: %w", err))
	}

	total, err := aggregator.TransactionTotal(tx.Value, *totals)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to compute transaction total: %w", err))
	}

	quote := &model.FeeQuote{
		GasLimit:               gasLimit,
		Value:                  tx.Value,
		Params:                 *params,
		Totals:                 *totals,
		TransactionTotalHexWei: total,
		IsDappSuggested:        resolver.IsDappSuggested(*tx, estimates),
	}

	if req.Balance != nil {
		sufficient, err := aggregator.IsBalanceSufficient(tx.Value, totals.MaximumHexWei, *req.Balance)
		if err != nil {
			return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("failed to check balance: %w", err))
		}
		quote.InsufficientBalance = !sufficient
	}

	log.Info().
		Str("source", string(params.Source)).
		Str("maximum", totals.MaximumHexWei).
		Str("estimated", totals.EstimatedHexWei).
		Bool("dappSuggested", quote.IsDappSuggested).
		Bool("insufficientBalance", quote.InsufficientBalance).
		Msg(util.WrapLogMessage(packageName, funcName, "success"))

	return quote, nil
}

func (q *quoter) fetchEstimates(ctx context.Context) (model.EstimateSet, error) {
	raw, err := q.estimateSource.FetchRawEstimates(ctx)
	if err != nil {
		return nil, err
	}
	return estimate.Normalize(raw)
}
