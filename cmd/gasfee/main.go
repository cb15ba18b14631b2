package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yukia3e/gas-fee-resolver/internal/config"
	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/infrastructure/ethtx"
	"github.com/yukia3e/gas-fee-resolver/internal/infrastructure/file"
	"github.com/yukia3e/gas-fee-resolver/internal/infrastructure/quote"
	"github.com/yukia3e/gas-fee-resolver/internal/resolver"
	"github.com/yukia3e/gas-fee-resolver/internal/unit"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const packageName = "main"

var (
	estimatesPath string
	txPath        string
	feeMode       string
	tier          string
	manualValue   string
	manualTip     string
	layer2Fee     string
	fiatRate      string
	balance       string
	to            string
	nonce         uint64
)

var rootCmd = &cobra.Command{
	Use:   "gasfee",
	Short: "Resolve gas parameters and fee totals for a pending transaction",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Warn().Msg(util.WrapLogMessage(packageName, "PersistentPreRun", fmt.Sprintf(".env file not loaded: %v", err)))
		}
		util.SetupLogger(config.GetLogLevel(), config.IsLocal())
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Resolve the effective gas params of a transaction and print its fee totals",
	RunE:  runQuote,
}

var convertCmd = &cobra.Command{
	Use:   "convert [gwei]",
	Short: "Convert a decimal GWEI amount to hex wei",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hex, err := unit.DecGweiToHexWei(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hex)
		return nil
	},
}

func init() {
	quoteCmd.Flags().StringVar(&estimatesPath, "estimates", "", "estimates JSON file (default $ESTIMATES_FILE_PATH)")
	quoteCmd.Flags().StringVar(&txPath, "tx", "", "transaction JSON file (default $TRANSACTION_FILE_PATH)")
	quoteCmd.Flags().StringVar(&feeMode, "mode", "", "fee mode: legacy, feeMarket or auto (default $FEE_MODE)")
	quoteCmd.Flags().StringVar(&tier, "tier", "", "estimate tier: low, medium or high (default $ESTIMATE_TIER)")
	quoteCmd.Flags().StringVar(&manualValue, "gas-price", "", "manual gas price or max fee per gas in GWEI")
	quoteCmd.Flags().StringVar(&manualTip, "priority-fee", "", "manual max priority fee per gas in GWEI")
	quoteCmd.Flags().StringVar(&layer2Fee, "l1-fee", "", "L1 data fee in hex wei, applied on rollup networks")
	quoteCmd.Flags().StringVar(&fiatRate, "fiat-rate", "", "ETH conversion rate for fiat display")
	quoteCmd.Flags().StringVar(&balance, "balance", "", "sender balance in hex wei; reports whether it covers value plus maximum fee")
	quoteCmd.Flags().StringVar(&to, "to", "", "recipient; prints the unsigned transaction when set")
	quoteCmd.Flags().Uint64Var(&nonce, "nonce", 0, "sender nonce for the unsigned transaction")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runQuote(cmd *cobra.Command, args []string) error {
	funcName := util.FuncName()
	ctx := cmd.Context()

	if estimatesPath == "" {
		estimatesPath = config.MustGetEstimatesFilePath()
	}
	if txPath == "" {
		txPath = config.GetTransactionFilePath()
	}
	if feeMode == "" {
		feeMode = config.GetFeeMode()
	}
	if tier == "" {
		tier = config.GetEstimateTier()
	}

	recipient, err := parseRecipient(to)
	if err != nil {
		return util.WrapErrorForLog(packageName, funcName, err)
	}

	var mode model.FeeMode
	if feeMode != "auto" {
		if mode, err = model.ParseFeeMode(feeMode); err != nil {
			return util.WrapErrorForLog(packageName, funcName, err)
		}
	}

	req := newQuoteRequest(mode, quoteFlags{
		tier:        tier,
		manualValue: manualValue,
		manualTip:   manualTip,
		layer2Fee:   layer2Fee,
		balance:     balance,
	})

	q := quote.New(file.NewEstimateSource(estimatesPath), file.NewTransactionSource(txPath))
	result, err := q.Quote(ctx, req)
	if err != nil {
		log.Error().Msg(util.WrapLogMessage(packageName, funcName, fmt.Sprintf("failed to quote: %v", err)))
		return err
	}

	printQuote(result)

	if recipient != nil {
		if err := printUnsignedTransaction(result, recipient); err != nil {
			log.Error().Msg(util.WrapLogMessage(packageName, funcName, fmt.Sprintf("failed to build transaction: %v", err)))
			return err
		}
	}
	return nil
}

type quoteFlags struct {
	tier        string
	manualValue string
	manualTip   string
	layer2Fee   string
	balance     string
}

// newQuoteRequest builds the request from the quote flags. Flags that cannot apply are logged and dropped.
func newQuoteRequest(mode model.FeeMode, f quoteFlags) model.QuoteRequest {
	funcName := util.FuncName()

	override := resolver.NewOverrideState()
	switch {
	case f.manualValue != "" && f.manualTip != "":
		override.SetManualFeeMarketValues(f.manualValue, f.manualTip)
	case f.manualValue != "":
		override.SetManualValue(f.manualValue)
	case f.manualTip != "":
		log.Warn().Msg(util.WrapLogMessage(packageName, funcName, "--priority-fee is ignored without --gas-price"))
	}

	req := model.QuoteRequest{
		Mode:     mode,
		Tier:     model.Tier(f.tier),
		Override: override.Snapshot(),
	}
	if f.layer2Fee != "" {
		if config.IsRollupNetwork() || model.IsRollupChain(model.GetChainID()) {
			req.Layer2Fee = util.Pointer(f.layer2Fee)
		} else {
			log.Warn().Msg(util.WrapLogMessage(packageName, funcName, "--l1-fee is ignored on a network that is not a rollup"))
		}
	}
	if f.balance != "" {
		req.Balance = util.Pointer(f.balance)
	}
	return req
}

// parseRecipient returns nil when no recipient is given.
func parseRecipient(s string) (*common.Address, error) {
	if s == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("invalid recipient address: %q", s)
	}
	return util.Pointer(common.HexToAddress(s)), nil
}

func printQuote(q *model.FeeQuote) {
	p := q.Params
	fmt.Printf("mode:           %s\n", p.Mode)
	fmt.Printf("source:         %s (custom: %t, dapp suggested: %t)\n", p.Source, p.IsCustom(), q.IsDappSuggested)
	if p.GasPrice != nil {
		fmt.Printf("gas price:      %s gwei (%s)\n", p.GasPrice.DecGwei, p.GasPrice.HexWei)
	}
	if p.MaxFeePerGas != nil {
		fmt.Printf("max fee:        %s gwei (%s)\n", p.MaxFeePerGas.DecGwei, p.MaxFeePerGas.HexWei)
		fmt.Printf("priority fee:   %s gwei (%s)\n", p.MaxPriorityFeePerGas.DecGwei, p.MaxPriorityFeePerGas.HexWei)
	}
	if p.BaseFeePerGas != nil {
		fmt.Printf("base fee:       %s gwei\n", p.BaseFeePerGas.DecGwei)
	}

	printAmount("minimum", q.Totals.MinimumHexWei)
	printAmount("estimated", q.Totals.EstimatedHexWei)
	printAmount("maximum", q.Totals.MaximumHexWei)
	if q.Totals.Layer2HexWei != nil {
		printAmount("l1 data fee", *q.Totals.Layer2HexWei)
	}
	printAmount("total", q.TransactionTotalHexWei)
	if balance != "" {
		fmt.Printf("balance:        sufficient: %t\n", !q.InsufficientBalance)
	}
}

func printAmount(label, hex string) {
	eth, err := unit.HexWeiToDecEth(hex)
	if err != nil {
		eth = "?"
	}
	line := fmt.Sprintf("%-15s %s ETH (%s)", label+":", eth, hex)
	if fiatRate != "" {
		if fiat, err := unit.HexWeiToFiat(hex, fiatRate, 2); err == nil {
			line += " ~ " + fiat
		}
	}
	fmt.Println(line)
}

func printUnsignedTransaction(q *model.FeeQuote, recipient *common.Address) error {
	txReq := ethtx.UnsignedTransactionRequest{
		Nonce:    nonce,
		To:       recipient,
		GasLimit: q.GasLimit,
		Params:   q.Params,
	}
	if q.Value != "" {
		value, err := unit.HexToWei(q.Value)
		if err != nil {
			return err
		}
		txReq.Value = value
	}

	tx, err := ethtx.BuildUnsignedTransaction(txReq)
	if err != nil {
		return err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("unsigned tx:    0x%x\n", raw)
	return nil
}
