// Package unit converts between hex wei, decimal wei, GWEI, ETH and fiat display strings.
// All arithmetic is done on math/big values; no value passes through a float.
package unit

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"

	"github.com/yukia3e/gas-fee-resolver/internal/domain/model"
	"github.com/yukia3e/gas-fee-resolver/internal/util"
)

const (
	packageName = "unit"

	gweiDecimals  = 9
	etherDecimals = 18
)

var (
	gweiFactor  = big.NewInt(params.GWei)
	etherFactor = big.NewInt(params.Ether)

	// exponent is bounded so that inputs like "1e999999999" cannot exhaust memory
	decimalPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE][+-]?\d{1,3})?$`)
)

// HexToWei parses a hex wei amount. The 0x prefix is optional and leading zeros are allowed.
func HexToWei(hex string) (*big.Int, error) {
	s := hex
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" || strings.ContainsAny(s, "+-_") {
		return nil, malformed(util.FuncName(), hex)
	}

	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, malformed(util.FuncName(), hex)
	}
	return v, nil
}

// WeiToHex renders a non-negative wei amount as a 0x-prefixed hex quantity.
func WeiToHex(wei *big.Int) (string, error) {
	if wei == nil || wei.Sign() < 0 {
		return "", malformed(util.FuncName(), fmt.Sprint(wei))
	}
	return hexutil.EncodeBig(wei), nil
}

// ParseDecimal parses a non-negative decimal string such as "20", "0.5" or "1.6e-8".
func ParseDecimal(dec string) (*big.Rat, error) {
	if !decimalPattern.MatchString(dec) {
		return nil, malformed(util.FuncName(), dec)
	}

	r, ok := new(big.Rat).SetString(dec)
	if !ok {
		return nil, malformed(util.FuncName(), dec)
	}
	return r, nil
}

// DecGweiToWei multiplies a decimal GWEI amount by 10^9. Fractional wei is floored.
func DecGweiToWei(dec string) (*big.Int, error) {
	r, err := ParseDecimal(dec)
	if err != nil {
		return nil, util.WrapErrorForLog(packageName, util.FuncName(), err)
	}

	r.Mul(r, new(big.Rat).SetInt(gweiFactor))
	// r is non-negative, so truncation is floor
	return new(big.Int).Quo(r.Num(), r.Denom()), nil
}

func WeiToDecGwei(wei *big.Int) string {
	return formatUnits(wei, gweiFactor, gweiDecimals)
}

func HexWeiToDecGwei(hex string) (string, error) {
	wei, err := HexToWei(hex)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return WeiToDecGwei(wei), nil
}

func DecGweiToHexWei(dec string) (string, error) {
	wei, err := DecGweiToWei(dec)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return hexutil.EncodeBig(wei), nil
}

// CanonicalDecGwei rewrites a decimal GWEI amount at wei precision, e.g. "20.50" becomes "20.5".
func CanonicalDecGwei(dec string) (string, error) {
	wei, err := DecGweiToWei(dec)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return WeiToDecGwei(wei), nil
}

func AddHexWei(a, b string) (string, error) {
	x, err := HexToWei(a)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	y, err := HexToWei(b)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return hexutil.EncodeBig(new(big.Int).Add(x, y)), nil
}

func HexWeiToDecEth(hex string) (string, error) {
	wei, err := HexToWei(hex)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, util.FuncName(), err)
	}
	return formatUnits(wei, etherFactor, etherDecimals), nil
}

// HexWeiToFiat converts a wei amount to fiat using an ETH conversion rate, rounded half away
// from zero to the given number of decimals for display.
func HexWeiToFiat(hex string, conversionRate string, decimals int) (string, error) {
	funcName := util.FuncName()

	wei, err := HexToWei(hex)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, funcName, err)
	}
	rate, err := ParseDecimal(conversionRate)
	if err != nil {
		return "", util.WrapErrorForLog(packageName, funcName, fmt.Errorf("invalid conversion rate: %w", err))
	}
	if decimals < 0 {
		decimals = 0
	}

	fiat := new(big.Rat).SetFrac(wei, etherFactor)
	fiat.Mul(fiat, rate)
	return fiat.FloatString(decimals), nil
}

func formatUnits(v *big.Int, factor *big.Int, decimals int) string {
	q, r := new(big.Int).QuoRem(v, factor, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}

	frac := r.String()
	frac = strings.Repeat("0", decimals-len(frac)) + frac
	return q.String() + "." + strings.TrimRight(frac, "0")
}

func malformed(funcName string, input string) error {
	return util.WrapErrorForLog(packageName, funcName, fmt.Errorf("%w: %q", model.ErrMalformedNumericInput, input))
}
