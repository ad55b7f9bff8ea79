package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meverselabs/stoclient/common/rlog"
	"github.com/meverselabs/stoclient/service/metrics"
)

// defaults of the Context
const (
	DefaultConcurrency  = 8
	DefaultNativeSymbol = "ETH"
)

// Backend is the node connection used by the clients, *ethclient.Client
// satisfies it
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Context is the execution context shared by every client. Clients never
// modify it.
type Context struct {
	Backend Backend
	// Auth signs the state mutating transactions, nil makes the context read-only
	Auth         *bind.TransactOpts
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	Concurrency  int
	NativeSymbol string
}

// NewContext returns a Context with the default settings
func NewContext(backend Backend, auth *bind.TransactOpts) *Context {
	return &Context{
		Backend:      backend,
		Auth:         auth,
		Logger:       zap.NewNop(),
		Concurrency:  DefaultConcurrency,
		NativeSymbol: DefaultNativeSymbol,
	}
}

// From returns the address of the signing account
func (c *Context) From() common.Address {
	if c.Auth == nil {
		return common.Address{}
	}
	return c.Auth.From
}

// ForEach calls fn for every index in [0, n) with at most Concurrency calls
// in flight
func (c *Context) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	return ForEach(ctx, n, c.Concurrency, fn)
}

func (c *Context) logger() *zap.Logger {
	return rlog.OrNop(c.Logger)
}

// ForEach calls fn for every index in [0, n) concurrently, with at most limit
// calls in flight when limit is positive. The first error cancels the context
// passed to the remaining calls and is returned. Callers store results by
// index so the output order never depends on the completion order.
func ForEach(ctx context.Context, n int, limit int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
