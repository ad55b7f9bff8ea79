package token

import (
	"context"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum/common"

	"github.com/meverselabs/stoclient/contract"
)

// SymbolCache keeps the symbols of the recently read tokens. Token symbols
// are fixed at deployment, so entries never expire.
type SymbolCache struct {
	cache gcache.Cache
}

// NewSymbolCache returns a SymbolCache holding up to size tokens
func NewSymbolCache(size int) *SymbolCache {
	return &SymbolCache{
		cache: gcache.New(size).LRU().Build(),
	}
}

// Symbol returns the symbol of the token, reading it from the chain on a miss.
// A nil SymbolCache always reads from the chain.
func (sc *SymbolCache) Symbol(ctx context.Context, address common.Address, cctx *contract.Context) (string, error) {
	if sc != nil {
		if v, err := sc.cache.Get(address); err == nil {
			return v.(string), nil
		}
	}
	t, err := NewERC20(address, cctx)
	if err != nil {
		return "", err
	}
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return "", err
	}
	if sc != nil {
		_ = sc.cache.Set(address, symbol)
	}
	return symbol, nil
}
