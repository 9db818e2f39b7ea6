package domain

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/holiman/uint256"
)

const etherSuffix = "ether"

// ParseAmount parses a wei amount. A value with an "ether" suffix, such as
// "1.5ether", is converted from ether.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if v, ok := strings.CutSuffix(s, etherSuffix); ok {
		return ParseEther(strings.TrimSpace(v))
	}
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return amount, nil
}

// ParseEther converts a decimal ether value into wei. LegacyDec keeps 18
// fractional digits, so its scaled integer is the wei amount.
func ParseEther(s string) (*uint256.Int, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if dec.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	amount, overflow := uint256.FromBig(dec.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	return amount, nil
}

// MustParseEther is ParseEther that panics, for constants and tests.
func MustParseEther(s string) *uint256.Int {
	amount, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return amount
}

// FormatEther renders a wei amount as ether.
func FormatEther(wei *uint256.Int) string {
	return sdkmath.LegacyNewDecFromBigIntWithPrec(wei.ToBig(), sdkmath.LegacyPrecision).String()
}
