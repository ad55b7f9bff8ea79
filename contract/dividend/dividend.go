// Package dividend holds the clients of the dividend checkpoint modules of a
// security token.
//
// A dividend is identified by its position in the array the module stores.
// Dividends are never removed or reordered, so the deposit event of a
// dividend carries the same index as its position.
package dividend

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/meverselabs/stoclient/common/amount"
	"github.com/meverselabs/stoclient/common/util"
	"github.com/meverselabs/stoclient/contract"
)

// Dividend is a dividend record of a checkpoint module. Currency is nil
// until it is resolved.
type Dividend struct {
	Index         int
	CheckpointID  *big.Int
	Created       time.Time
	Maturity      time.Time
	Expiry        time.Time
	Amount        *big.Int
	ClaimedAmount *big.Int
	TotalSupply   *big.Int
	TotalWithheld *big.Int
	Reclaimed     bool
	Name          string
	Currency      *string
	// Token is the funding token found with the currency, zero otherwise
	Token common.Address
}

// WithCurrency returns a copy of the dividend with the currency set
func (d Dividend) WithCurrency(symbol string) Dividend {
	d.Currency = &symbol
	return d
}

// CurrencyOr returns the currency or def when it is not resolved
func (d Dividend) CurrencyOr(def string) string {
	if d.Currency == nil {
		return def
	}
	return *d.Currency
}

// NewDividend is the input of CreateDividend
type NewDividend struct {
	Maturity time.Time
	Expiry   time.Time
	// Token funds the dividend, the native coin variant ignores it
	Token        common.Address
	Amount       decimal.Decimal
	CheckpointID uint64
	Name         string
	// Excluded selects the exclusions entry point whenever it is not nil,
	// an empty list included. The list is sent as is.
	Excluded []common.Address
}

type encodedDividend struct {
	maturity     *big.Int
	expiry       *big.Int
	amount       *big.Int
	checkpointID *big.Int
	name         [32]byte
}

func (p NewDividend) encode() (*encodedDividend, error) {
	if p.Maturity.Unix() < 0 || p.Expiry.Unix() < 0 {
		return nil, errors.Wrapf(contract.ErrInvalidArgument, "dates before the epoch: maturity %s, expiry %s",
			p.Maturity.UTC().Format(time.RFC3339), p.Expiry.UTC().Format(time.RFC3339))
	}
	amountInWei, err := amount.ToWei(p.Amount)
	if err != nil {
		return nil, err
	}
	name, err := util.StringToBytes32(p.Name)
	if err != nil {
		return nil, err
	}
	return &encodedDividend{
		maturity:     util.ToUnixTimestamp(p.Maturity),
		expiry:       util.ToUnixTimestamp(p.Expiry),
		amount:       amountInWei,
		checkpointID: new(big.Int).SetUint64(p.CheckpointID),
		name:         name,
	}, nil
}

// DepositEvent is the ERC20DividendDeposited event
type DepositEvent struct {
	Depositor     common.Address
	CheckpointId  *big.Int
	Created       *big.Int
	Maturity      *big.Int
	Expiry        *big.Int
	Token         common.Address
	Amount        *big.Int
	TotalSupply   *big.Int
	DividendIndex *big.Int
	Name          [32]byte
	Raw           types.Log
}
