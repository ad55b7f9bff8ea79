package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
)

// ERC20 is the client of a fungible token contract
type ERC20 struct {
	*contract.Contract
}

// NewERC20 returns the ERC20 client of the address
func NewERC20(address common.Address, cctx *contract.Context) (*ERC20, error) {
	c, err := contract.New(address, abis.ERC20, cctx)
	if err != nil {
		return nil, err
	}
	return &ERC20{Contract: c}, nil
}

// Symbol returns the ticker of the token
func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	return t.callString(ctx, "symbol")
}

// Name returns the name of the token
func (t *ERC20) Name(ctx context.Context) (string, error) {
	return t.callString(ctx, "name")
}

// Decimals returns the number of the fractional digits of the token
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	return *abi.ConvertType(out[0], new(uint8)).(*uint8), nil
}

// TotalSupply returns the total supply in base units
func (t *ERC20) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.callBig(ctx, "totalSupply")
}

// BalanceOf returns the balance of the owner in base units
func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callBig(ctx, "balanceOf", owner)
}

func (t *ERC20) callString(ctx context.Context, method string) (string, error) {
	out, err := t.Call(ctx, method)
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("%s returned %T", method, out[0])
	}
	return s, nil
}

func (t *ERC20) callBig(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := t.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}
