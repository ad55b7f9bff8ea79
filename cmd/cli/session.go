package main

import (
	"context"
	"math/big"
	"net/http"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meverselabs/stoclient/cmd/closer"
	"github.com/meverselabs/stoclient/cmd/config"
	"github.com/meverselabs/stoclient/common/rlog"
	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/token"
	"github.com/meverselabs/stoclient/service/metrics"
)

// session is the node connection of a command
type session struct {
	cfg     *Config
	logger  *zap.Logger
	cctx    *contract.Context
	symbols *token.SymbolCache
	closer  *closer.Manager
}

// openSession loads the config and connects to the node. signer requires a
// private key for the commands sending transactions.
func openSession(cmd *cobra.Command, f *flags, signer bool) (*session, error) {
	ctx := cmd.Context()
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(f.configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)

	logger, err := rlog.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return nil, err
	}
	cm := closer.NewManager(logger)
	cm.AddError("logger", logger.Sync)

	s, err := connect(ctx, cfg, logger, cm, signer)
	if err != nil {
		cm.CloseAll()
		return nil, err
	}
	return s, nil
}

func connect(ctx context.Context, cfg *Config, logger *zap.Logger, cm *closer.Manager, signer bool) (*session, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.RPCURL)
	}
	cm.Add("rpc", client)

	col, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	if len(cfg.MetricsAddr) > 0 {
		e := metricsServer(prometheus.DefaultGatherer)
		go func() {
			if err := e.Start(cfg.MetricsAddr); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		cm.AddError("metrics", e.Close)
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	var auth *bind.TransactOpts
	if signer {
		if auth, err = newTransactor(ctx, client, cfg); err != nil {
			return nil, err
		}
	}

	cctx := contract.NewContext(client, auth)
	cctx.Logger = logger
	cctx.Metrics = col
	if cfg.Concurrency > 0 {
		cctx.Concurrency = cfg.Concurrency
	}
	if len(cfg.NativeSymbol) > 0 {
		cctx.NativeSymbol = cfg.NativeSymbol
	}

	var symbols *token.SymbolCache
	if cfg.SymbolCacheSize > 0 {
		symbols = token.NewSymbolCache(cfg.SymbolCacheSize)
	}
	return &session{
		cfg:     cfg,
		logger:  logger,
		cctx:    cctx,
		symbols: symbols,
		closer:  cm,
	}, nil
}

// metricsServer serves the metrics of the gatherer on /metrics
func metricsServer(g prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	return e
}

func newTransactor(ctx context.Context, client *ethclient.Client, cfg *Config) (*bind.TransactOpts, error) {
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.Wrapf(contract.ErrNoSigner, "set %s or --key", EnvPrivateKey)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "private key")
	}
	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = client.ChainID(ctx); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	auth.GasLimit = cfg.GasLimit
	return auth, nil
}

// Close closes the connection of the session
func (s *session) Close() {
	s.closer.CloseAll()
}

// registryAddress returns the configured module registry
func (s *session) registryAddress() (common.Address, error) {
	if len(s.cfg.ModuleRegistry) == 0 {
		return common.Address{}, errors.Errorf("module registry is not set, use module_registry or %s", EnvModuleRegistry)
	}
	return parseAddress(s.cfg.ModuleRegistry)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(contract.ErrInvalidArgument, "address %q", s)
	}
	return common.HexToAddress(s), nil
}
