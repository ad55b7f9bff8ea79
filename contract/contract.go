// Package contract is the generic client of a deployed contract: an address
// and an abi bound to the shared execution Context.
package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/meverselabs/stoclient/service/metrics"
)

// Client is the read, write and event surface of a deployed contract
type Client interface {
	Address() common.Address
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, method string, args ...interface{}) (*types.Transaction, error)
	PastEvents(ctx context.Context, event string, r BlockRange) ([]types.Log, error)
	UnpackLog(out interface{}, event string, log types.Log) error
}

var _ Client = (*Contract)(nil)

// Contract binds an abi to the address of a deployed contract
type Contract struct {
	address common.Address
	abi     abi.ABI
	ctx     *Context
	bound   *bind.BoundContract
}

// New returns the Contract of the address
func New(address common.Address, parsed abi.ABI, cctx *Context) (*Contract, error) {
	if cctx == nil || cctx.Backend == nil {
		return nil, errors.WithStack(ErrNoBackend)
	}
	if address == (common.Address{}) {
		return nil, errors.Wrap(ErrInvalidContract, "zero address")
	}
	return &Contract{
		address: address,
		abi:     parsed,
		ctx:     cctx,
		bound:   bind.NewBoundContract(address, parsed, cctx.Backend, cctx.Backend, cctx.Backend),
	}, nil
}

// Address returns the address of the contract
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the abi of the contract
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Context returns the shared execution context
func (c *Contract) Context() *Context {
	return c.ctx
}

// Call executes the view method and returns its decoded outputs
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if err := c.checkInput(method, args); err != nil {
		return nil, err
	}

	start := time.Now()
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx, From: c.ctx.From()}, &out, method, args...)
	err = c.wrap(method, err)
	c.ctx.Metrics.Observe(metrics.KindCall, method, start, err)
	c.log().Debug("call", zap.String("method", method), zap.Duration("duration", time.Since(start)), zap.Error(err))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transact sends a transaction of the method signed by the context account
func (c *Contract) Transact(ctx context.Context, method string, args ...interface{}) (*types.Transaction, error) {
	return c.TransactValue(ctx, nil, method, args...)
}

// TransactValue sends a transaction of the method carrying value wei
func (c *Contract) TransactValue(ctx context.Context, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	if err := c.checkInput(method, args); err != nil {
		return nil, err
	}
	if c.ctx.Auth == nil {
		return nil, errors.WithStack(ErrNoSigner)
	}

	start := time.Now()
	code, err := c.ctx.Backend.CodeAt(ctx, c.address, nil)
	if err != nil {
		return nil, c.wrap(method, err)
	}
	if len(code) == 0 {
		return nil, errors.Wrapf(ErrInvalidContract, "no contract code at %s", c.address.Hex())
	}

	opts := *c.ctx.Auth
	opts.Context = ctx
	if value != nil {
		opts.Value = value
	}
	tx, err := c.bound.Transact(&opts, method, args...)
	err = c.wrap(method, err)
	c.ctx.Metrics.Observe(metrics.KindTransact, method, start, err)
	if err != nil {
		c.log().Debug("transact", zap.String("method", method), zap.Error(err))
		return nil, err
	}
	c.log().Debug("transact", zap.String("method", method), zap.String("tx", tx.Hash().Hex()), zap.Duration("duration", time.Since(start)))
	return tx, nil
}

// Wait blocks until the transaction is mined and returns its receipt. A
// reverted transaction returns ErrTransactionFailed with the receipt.
func (c *Contract) Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	method := c.methodOf(tx)
	start := time.Now()
	receipt, err := bind.WaitMined(ctx, c.ctx.Backend, tx)
	if err != nil {
		// WaitMined only gives up when ctx is done
		c.ctx.Metrics.Observe(metrics.KindReceipt, method, start, err)
		return nil, errors.WithStack(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		err = &TransactionError{
			Contract: c.address,
			Method:   method,
			Err:      errors.Errorf("transaction %s failed in block %v", tx.Hash().Hex(), receipt.BlockNumber),
		}
		c.ctx.Metrics.Observe(metrics.KindReceipt, method, start, err)
		return receipt, err
	}
	c.ctx.Metrics.Observe(metrics.KindReceipt, method, start, nil)
	c.log().Debug("mined", zap.String("method", method), zap.String("tx", tx.Hash().Hex()), zap.Uint64("gas", receipt.GasUsed))
	return receipt, nil
}

func (c *Contract) checkInput(method string, args []interface{}) error {
	if _, has := c.abi.Methods[method]; !has {
		return errors.Wrapf(ErrInvalidContract, "method %s is not in the abi of %s", method, c.address.Hex())
	}
	if _, err := c.abi.Pack(method, args...); err != nil {
		return errors.Wrapf(ErrInvalidArgument, "%s: %v", method, err)
	}
	return nil
}

func (c *Contract) methodOf(tx *types.Transaction) string {
	data := tx.Data()
	if len(data) < 4 {
		return ""
	}
	m, err := c.abi.MethodById(data[:4])
	if err != nil {
		return ""
	}
	return m.Name
}

func (c *Contract) wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bind.ErrNoCode) {
		return errors.Wrapf(ErrInvalidContract, "no contract code at %s", c.address.Hex())
	}
	return &TransactionError{
		Contract: c.address,
		Method:   method,
		Reason:   revertReason(err),
		Err:      err,
	}
}

func (c *Contract) log() *zap.Logger {
	return c.ctx.logger().With(zap.String("contract", c.address.Hex()))
}
