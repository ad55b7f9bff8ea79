package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "stocli",
		Short:         "reads and manages the modules of security tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "path of the config file (toml or yaml)")
	pf.StringVar(&f.rpcURL, "rpc", "", "url of the node to access")
	pf.StringVar(&f.privateKey, "key", "", "hex private key of the signing account")
	pf.Int64Var(&f.chainID, "chain-id", 0, "chain id, read from the node when 0")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serves /metrics on the address while the command runs")

	cmd.AddCommand(dividendsCommand(f))
	cmd.AddCommand(createDividendCommand(f))
	cmd.AddCommand(modulesCommand(f))
	cmd.AddCommand(factoryCommand(f))
	cmd.AddCommand(symbolCommand(f))
	return cmd
}
