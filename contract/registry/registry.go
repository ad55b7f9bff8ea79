// Package registry holds the client of the module registry, which tracks the
// modules attached to security tokens.
package registry

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/abis"
)

// ModuleRegistry is the client of the module registry contract
type ModuleRegistry struct {
	*contract.Contract
}

// NewModuleRegistry returns the ModuleRegistry of the address
func NewModuleRegistry(address common.Address, cctx *contract.Context) (*ModuleRegistry, error) {
	c, err := contract.New(address, abis.ModuleRegistry, cctx)
	if err != nil {
		return nil, err
	}
	return &ModuleRegistry{Contract: c}, nil
}

// ModulesByTypeAndToken returns the modules of the type registered against
// the token, in the order the registry keeps them
func (r *ModuleRegistry) ModulesByTypeAndToken(ctx context.Context, t ModuleType, token common.Address) ([]common.Address, error) {
	return r.addresses(ctx, "getModulesByTypeAndToken", uint8(t), token)
}

// ModulesByType returns every module of the type
func (r *ModuleRegistry) ModulesByType(ctx context.Context, t ModuleType) ([]common.Address, error) {
	return r.addresses(ctx, "getModulesByType", uint8(t))
}

// ModuleFactoryAddress returns the first module of the type registered
// against the token whose factory declares the name.
// The names are read concurrently but the result is the one a sequential
// search in registry order would give: a read error of a candidate after
// the first match is ignored.
func (r *ModuleRegistry) ModuleFactoryAddress(ctx context.Context, name string, t ModuleType, token common.Address) (common.Address, error) {
	candidates, err := r.ModulesByTypeAndToken(ctx, t, token)
	if err != nil {
		return common.Address{}, err
	}

	type result struct {
		name string
		err  error
	}
	results := make([]result, len(candidates))
	cctx := r.Context()
	// per candidate errors are kept so the scan below can order them
	_ = cctx.ForEach(ctx, len(candidates), func(ctx context.Context, i int) error {
		f, err := NewModuleFactory(candidates[i], cctx)
		if err == nil {
			results[i].name, err = f.Name(ctx)
		}
		results[i].err = err
		return nil
	})

	for i, res := range results {
		if res.err != nil {
			return common.Address{}, res.err
		}
		if res.name == name {
			return candidates[i], nil
		}
	}
	return common.Address{}, &ModuleFactoryNotFoundError{Name: name}
}

func (r *ModuleRegistry) addresses(ctx context.Context, method string, args ...interface{}) ([]common.Address, error) {
	out, err := r.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}
