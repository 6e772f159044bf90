package compiler

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var errInvalidAmount = errors.New("invalid decimal amount")

// ToBaseUnits converts a human decimal amount string ("1.5") into its
// fixed-point integer representation for the given token decimals.
// Fractional digits beyond the token's precision are truncated, never
// rounded.
func ToBaseUnits(amount string, decimals int) (string, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, ",", "")

	if amount == "" || strings.HasPrefix(amount, "-") {
		return "", fmt.Errorf("%w: %q", errInvalidAmount, amount)
	}

	whole, fraction, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}

	if len(fraction) > decimals {
		fraction = fraction[:decimals]
	}

	fraction += strings.Repeat("0", decimals-len(fraction))

	combined := strings.TrimLeft(whole+fraction, "0")
	if combined == "" {
		combined = "0"
	}

	value, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return "", fmt.Errorf("%w: %q", errInvalidAmount, amount)
	}

	return value.String(), nil
}
