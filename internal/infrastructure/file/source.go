package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/domain/repository"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "file"

type estimateSource struct {
	path string
}

// NewEstimateSource reads raw estimate payloads from a JSON file on every fetch.
func NewEstimateSource(path string) repository.EstimateSource {
	return &estimateSource{
		path: path,
	}
}

func (s *estimateSource) FetchRawEstimates(ctx context.Context) ([]byte, error) {
	funcName := util.FuncName()

	if err := ctx.Err(); err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, err)
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("error reading estimates: %w", err))
	}
	return b, nil
}

type transactionSource struct {
	path string
}

// NewTransactionSource reads the pending transaction from a JSON file.
func NewTransactionSource(path string) repository.TransactionSource {
	return &transactionSource{
		path: path,
	}
}

type (
	TransactionMeta struct {
		UserFeeLevel         string     `json:"userFeeLevel"`
		DappSuggested        bool       `json:"dappSuggested"`
		TxParams             *TxParams  `json:"txParams"`
		DappSuggestedGasFees *GasParams `json:"dappSuggestedGasFees"`
		// OriginalGasEstimate is the gas limit estimated when the transaction was created, in hex.
		OriginalGasEstimate string `json:"originalGasEstimate"`
		// RawTransaction is a signed or unsigned RLP encoded transaction, used instead of txParams.
		RawTransaction hexutil.Bytes `json:"rawTransaction"`
	}

	TxParams struct {
		Gas   string `json:"gas"`
		Value string `json:"value"`
		GasParams
	}

	GasParams struct {
		GasPrice             string `json:"gasPrice"`
		MaxFeePerGas         string `json:"maxFeePerGas"`
		MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	}
)

func (s *transactionSource) LoadTransaction(ctx context.Context) (*model.RawTransaction, error) {
	funcName := util.FuncName()

	if err := ctx.Err(); err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, err)
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("error reading transaction: %w", err))
	}

	var meta TransactionMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, fmt.Errorf("error decoding transaction: %w", err))
	}

	tx, err := meta.toRawTransaction()
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, funcName, err)
	}
	return tx, nil
}

func (m TransactionMeta) toRawTransaction() (*model.RawTransaction, error) {
	level := model.UserFeeLevel(m.UserFeeLevel)

	var tx model.RawTransaction
	switch {
	case len(m.RawTransaction) > 0:
		var ethTx types.Transaction
		if err := ethTx.UnmarshalBinary(m.RawTransaction); err != nil {
			return nil, fmt.Errorf("error decoding raw transaction: %w", err)
		}
		tx = model.RawTransactionFromEth(&ethTx, level)
	case m.TxParams != nil:
		tx = model.RawTransaction{
			GasLimit:     m.TxParams.Gas,
			Value:        m.TxParams.Value,
			GasFields:    m.TxParams.GasParams.toGasFields(),
			UserFeeLevel: level,
		}
	default:
		return nil, fmt.Errorf("transaction has neither txParams nor rawTransaction")
	}

	if tx.GasLimit == "" {
		tx.GasLimit = m.OriginalGasEstimate
	}
	tx.DappSuggested = m.DappSuggested
	if m.DappSuggestedGasFees != nil {
		tx.DappSuggestedGasFees = util.Pointer(m.DappSuggestedGasFees.toGasFields())
	}
	return &tx, nil
}

func (p GasParams) toGasFields() model.GasFields {
	return model.GasFields{
		GasPrice:             p.GasPrice,
		MaxFeePerGas:         p.MaxFeePerGas,
		MaxPriorityFeePerGas: p.MaxPriorityFeePerGas,
	}
}
