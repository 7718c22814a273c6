// Package utils
package utils

import (
	"errors"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of the native currency.
const EtherDecimals = 18

var (
	errEmptyAmount = errors.New("empty amount")
	errBadAmount   = errors.New("amount must be a plain decimal number")

	// ErrTooManyDecimals is returned for amounts finer than one wei.
	ErrTooManyDecimals = errors.New("amount has more than 18 decimal places")
)

// Plain decimals only, no sign or exponent.
var amountRe = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// maxAmountLen bounds the typed amount well above any uint256 wei value.
const maxAmountLen = 100

// ParseDecimal parses the amount exactly as typed, without going through float.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}
	if len(s) > maxAmountLen || !amountRe.MatchString(s) {
		return decimal.Zero, errBadAmount
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > EtherDecimals {
		return decimal.Zero, ErrTooManyDecimals
	}
	return decimal.NewFromString(s)
}

// EtherToWei converts a decimal ether amount to wei.
func EtherToWei(s string) (*big.Int, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return nil, err
	}
	return d.Shift(EtherDecimals).BigInt(), nil
}

// FormatEther renders a wei amount with a fixed number of decimals.
func FormatEther(wei string, places int32) string {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromBigInt(v, -EtherDecimals).StringFixed(places)
}

// Percentage returns collected/target*100 rounded to the nearest integer.
func Percentage(target, collected string) int64 {
	t, ok := new(big.Int).SetString(target, 10)
	if !ok || t.Sign() <= 0 {
		return 0
	}
	c, ok := new(big.Int).SetString(collected, 10)
	if !ok {
		return 0
	}
	p := decimal.NewFromBigInt(c, 0).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromBigInt(t, 0))
	return p.Round(0).IntPart()
}
