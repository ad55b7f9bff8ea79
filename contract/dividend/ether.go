package dividend

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
)

// EtherCheckpoint is the client of a dividend module funded by the native coin
type EtherCheckpoint struct {
	*Checkpoint
}

// NewEtherCheckpoint returns the EtherCheckpoint of the address
func NewEtherCheckpoint(address common.Address, cctx *contract.Context) (*EtherCheckpoint, error) {
	c, err := contract.New(address, abis.EtherDividendCheckpoint, cctx)
	if err != nil {
		return nil, err
	}
	cp := &EtherCheckpoint{}
	cp.Checkpoint = NewCheckpoint(c, cp.resolveCurrencies)
	return cp, nil
}

// CreateDividend creates a dividend at the checkpoint paying p.Amount of the
// native coin with the transaction. p.Token is ignored.
func (c *EtherCheckpoint) CreateDividend(ctx context.Context, p NewDividend) (*types.Transaction, error) {
	e, err := p.encode()
	if err != nil {
		return nil, err
	}
	if p.Excluded != nil {
		return c.TransactValue(ctx, e.amount, "createDividendWithCheckpointAndExclusions",
			e.maturity, e.expiry, e.checkpointID, p.Excluded, e.name)
	}
	return c.TransactValue(ctx, e.amount, "createDividendWithCheckpoint",
		e.maturity, e.expiry, e.checkpointID, e.name)
}

func (c *EtherCheckpoint) resolveCurrencies(ctx context.Context, ds []Dividend) ([]Dividend, error) {
	symbol := c.Context().NativeSymbol
	if len(symbol) == 0 {
		symbol = contract.DefaultNativeSymbol
	}
	out := make([]Dividend, len(ds))
	for i, d := range ds {
		out[i] = d.WithCurrency(symbol)
	}
	return out, nil
}
