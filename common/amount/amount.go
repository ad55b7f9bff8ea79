package amount

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FractionalCount represent the number of under the float point
const FractionalCount = 18

// Amount is the precision float value based on the big.Int
type Amount struct {
	*big.Int
}

// Decimal returns the amount in coin units
func (am *Amount) Decimal() decimal.Decimal {
	return FromWei(am.Int)
}

// String returns the float string of the amount
func (am *Amount) String() string {
	return am.Decimal().String()
}

// ParseAmount parse the amount from the float string
func ParseAmount(str string) (*Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(str))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmountFormat, "%q", str)
	}
	bi, err := ToWei(d)
	if err != nil {
		return nil, err
	}
	return &Amount{Int: bi}, nil
}
