package dividend

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
	"github.com/meverselabs/stoclient/contract/token"
)

// EventERC20DividendDeposited is emitted once for every created ERC20 dividend
const EventERC20DividendDeposited = "ERC20DividendDeposited"

// ERC20Checkpoint is the client of a dividend module funded by ERC20 tokens
type ERC20Checkpoint struct {
	*Checkpoint
	symbols *token.SymbolCache
}

// Option configures an ERC20Checkpoint
type Option func(*ERC20Checkpoint)

// WithSymbolCache shares the symbol cache between currency resolutions
func WithSymbolCache(sc *token.SymbolCache) Option {
	return func(c *ERC20Checkpoint) {
		c.symbols = sc
	}
}

// NewERC20Checkpoint returns the ERC20Checkpoint of the address
func NewERC20Checkpoint(address common.Address, cctx *contract.Context, opts ...Option) (*ERC20Checkpoint, error) {
	c, err := contract.New(address, abis.ERC20DividendCheckpoint, cctx)
	if err != nil {
		return nil, err
	}
	cp := &ERC20Checkpoint{}
	for _, opt := range opts {
		opt(cp)
	}
	cp.Checkpoint = NewCheckpoint(c, cp.resolveCurrencies)
	return cp, nil
}

// CreateDividend creates a dividend funded by p.Token at the checkpoint and
// returns the pending transaction
func (c *ERC20Checkpoint) CreateDividend(ctx context.Context, p NewDividend) (*types.Transaction, error) {
	e, err := p.encode()
	if err != nil {
		return nil, err
	}
	if p.Excluded != nil {
		return c.Transact(ctx, "createDividendWithCheckpointAndExclusions",
			e.maturity, e.expiry, p.Token, e.amount, e.checkpointID, p.Excluded, e.name)
	}
	return c.Transact(ctx, "createDividendWithCheckpoint",
		e.maturity, e.expiry, p.Token, e.amount, e.checkpointID, e.name)
}

// DepositEvents returns the deposit events of the module in the range
func (c *ERC20Checkpoint) DepositEvents(ctx context.Context, r contract.BlockRange) ([]DepositEvent, error) {
	logs, err := c.PastEvents(ctx, EventERC20DividendDeposited, r)
	if err != nil {
		return nil, err
	}
	events := make([]DepositEvent, len(logs))
	for i, l := range logs {
		if err := c.UnpackLog(&events[i], EventERC20DividendDeposited, l); err != nil {
			return nil, err
		}
		events[i].Raw = l
	}
	return events, nil
}

// resolveCurrencies reads the funding token of every dividend from its
// deposit event. The module does not store the token with the dividend.
func (c *ERC20Checkpoint) resolveCurrencies(ctx context.Context, ds []Dividend) ([]Dividend, error) {
	events, err := c.DepositEvents(ctx, contract.FullRange)
	if err != nil {
		return nil, err
	}

	funding := map[uint64]common.Address{}
	for _, ev := range events {
		if ev.DividendIndex == nil || !ev.DividendIndex.IsUint64() {
			continue
		}
		idx := ev.DividendIndex.Uint64()
		if _, has := funding[idx]; !has {
			funding[idx] = ev.Token
		}
	}

	out := make([]Dividend, len(ds))
	copy(out, ds)
	cctx := c.Context()
	err = cctx.ForEach(ctx, len(ds), func(ctx context.Context, i int) error {
		tokenAddr, has := funding[uint64(i)]
		if !has {
			return nil
		}
		symbol, err := c.symbols.Symbol(ctx, tokenAddr, cctx)
		if err != nil {
			return err
		}
		out[i] = ds[i].WithCurrency(symbol)
		out[i].Token = tokenAddr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
