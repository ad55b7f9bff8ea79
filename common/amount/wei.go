package amount

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ToWei converts a coin denominated value into its base unit integer.
// Values with more than FractionalCount fractional digits are rejected.
func ToWei(d decimal.Decimal) (*big.Int, error) {
	if d.Sign() < 0 {
		return nil, errors.Wrapf(ErrNegativeAmount, "%s", d.String())
	}
	w := d.Shift(FractionalCount)
	if !w.IsInteger() {
		return nil, errors.Wrapf(ErrInvalidAmountFormat, "%s has more than %d fractional digits", d.String(), FractionalCount)
	}
	return w.BigInt(), nil
}

// FromWei converts a base unit integer back into coin units
func FromWei(bi *big.Int) decimal.Decimal {
	return FromUnits(bi, FractionalCount)
}

// FromUnits converts a base unit integer of a token with the decimals into
// token units
func FromUnits(bi *big.Int, decimals uint8) decimal.Decimal {
	if bi == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(bi, -int32(decimals))
}
