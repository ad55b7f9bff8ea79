package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/meverselabs/stoclient/common/util"
	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
)

// ModuleFactory is the client of the factory contract a module is deployed from
type ModuleFactory struct {
	*contract.Contract
}

// NewModuleFactory returns the ModuleFactory of the address
func NewModuleFactory(address common.Address, cctx *contract.Context) (*ModuleFactory, error) {
	c, err := contract.New(address, abis.ModuleFactory, cctx)
	if err != nil {
		return nil, err
	}
	return &ModuleFactory{Contract: c}, nil
}

// Name returns the declared name of the module
func (f *ModuleFactory) Name(ctx context.Context) (string, error) {
	out, err := f.Call(ctx, "name")
	if err != nil {
		return "", err
	}
	return util.Bytes32ToString(*abi.ConvertType(out[0], new([32]byte)).(*[32]byte)), nil
}

// Title returns the display title of the module
func (f *ModuleFactory) Title(ctx context.Context) (string, error) {
	return f.callString(ctx, "title")
}

// Version returns the version of the module
func (f *ModuleFactory) Version(ctx context.Context) (string, error) {
	return f.callString(ctx, "version")
}

// Types returns the module types the factory can build
func (f *ModuleFactory) Types(ctx context.Context) ([]ModuleType, error) {
	out, err := f.Call(ctx, "getTypes")
	if err != nil {
		return nil, err
	}
	codes := *abi.ConvertType(out[0], new([]uint8)).(*[]uint8)
	types := make([]ModuleType, len(codes))
	for i, c := range codes {
		types[i] = ModuleType(c)
	}
	return types, nil
}

func (f *ModuleFactory) callString(ctx context.Context, method string) (string, error) {
	out, err := f.Call(ctx, method)
	if err != nil {
		return "", err
	}
	s, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("%s returned %T", method, out[0])
	}
	return s, nil
}
