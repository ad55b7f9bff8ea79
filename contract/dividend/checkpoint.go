package dividend

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/meverselabs/stoclient/common/util"
	"github.com/meverselabs/stoclient/contract"
)

// errors
var (
	ErrInconsistentData = errors.New("inconsistent dividend data")
)

// CurrencyResolver attaches the funding currency to the dividends read from
// the module. It returns a slice of the same length and order.
type CurrencyResolver func(ctx context.Context, dividends []Dividend) ([]Dividend, error)

// Checkpoint is the part shared by every dividend checkpoint module. How the
// funding currency is found depends on the module, so it is plugged in as a
// CurrencyResolver.
type Checkpoint struct {
	*contract.Contract
	resolve CurrencyResolver
}

// NewCheckpoint returns the Checkpoint of the contract. resolve may be nil,
// which leaves every currency unresolved.
func NewCheckpoint(c *contract.Contract, resolve CurrencyResolver) *Checkpoint {
	return &Checkpoint{
		Contract: c,
		resolve:  resolve,
	}
}

// Dividends returns the dividends of the module in index order with the
// currencies the module's resolver could find
func (cp *Checkpoint) Dividends(ctx context.Context) ([]Dividend, error) {
	ds, err := cp.BaseDividends(ctx)
	if err != nil {
		return nil, err
	}
	if cp.resolve == nil {
		return ds, nil
	}
	resolved, err := cp.resolve(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(ds) {
		return nil, errors.Wrapf(ErrInconsistentData, "resolver returned %d of %d dividends", len(resolved), len(ds))
	}
	return resolved, nil
}

// BaseDividends returns the dividends of the module in index order, without
// currencies
func (cp *Checkpoint) BaseDividends(ctx context.Context) ([]Dividend, error) {
	out, err := cp.Call(ctx, "getDividendsData")
	if err != nil {
		return nil, err
	}
	createds := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	maturitys := *abi.ConvertType(out[1], new([]*big.Int)).(*[]*big.Int)
	expirys := *abi.ConvertType(out[2], new([]*big.Int)).(*[]*big.Int)
	amounts := *abi.ConvertType(out[3], new([]*big.Int)).(*[]*big.Int)
	claimedAmounts := *abi.ConvertType(out[4], new([]*big.Int)).(*[]*big.Int)
	names := *abi.ConvertType(out[5], new([][32]byte)).(*[][32]byte)

	n := len(createds)
	for _, l := range []int{len(maturitys), len(expirys), len(amounts), len(claimedAmounts), len(names)} {
		if l != n {
			return nil, errors.Wrapf(ErrInconsistentData, "getDividendsData returned arrays of %d and %d", n, l)
		}
	}

	ds := make([]Dividend, n)
	for i := range ds {
		ds[i] = Dividend{
			Index:         i,
			Created:       util.FromUnixTimestamp(createds[i]),
			Maturity:      util.FromUnixTimestamp(maturitys[i]),
			Expiry:        util.FromUnixTimestamp(expirys[i]),
			Amount:        amounts[i],
			ClaimedAmount: claimedAmounts[i],
			Name:          util.Bytes32ToString(names[i]),
		}
	}

	err = cp.Context().ForEach(ctx, n, func(ctx context.Context, i int) error {
		out, err := cp.Call(ctx, "dividends", big.NewInt(int64(i)))
		if err != nil {
			return err
		}
		ds[i].CheckpointID = *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
		ds[i].TotalSupply = *abi.ConvertType(out[6], new(*big.Int)).(**big.Int)
		ds[i].Reclaimed = *abi.ConvertType(out[7], new(bool)).(*bool)
		ds[i].TotalWithheld = *abi.ConvertType(out[8], new(*big.Int)).(**big.Int)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ReclaimDividend sends the unclaimed funds of an expired dividend back to the issuer
func (cp *Checkpoint) ReclaimDividend(ctx context.Context, index int) (*types.Transaction, error) {
	return cp.Transact(ctx, "reclaimDividend", big.NewInt(int64(index)))
}

// WithdrawWithholding withdraws the tax withheld from the dividend
func (cp *Checkpoint) WithdrawWithholding(ctx context.Context, index int) (*types.Transaction, error) {
	return cp.Transact(ctx, "withdrawWithholding", big.NewInt(int64(index)))
}

// PushDividendPayment pays the dividend to iterations holders starting at the start-th holder
func (cp *Checkpoint) PushDividendPayment(ctx context.Context, index int, start int, iterations int) (*types.Transaction, error) {
	return cp.Transact(ctx, "pushDividendPayment", big.NewInt(int64(index)), big.NewInt(int64(start)), big.NewInt(int64(iterations)))
}
