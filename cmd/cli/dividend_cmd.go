package main

import (
	"context"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meverselabs/stoclient/common/amount"
	"github.com/meverselabs/stoclient/contract"
	"github.com/meverselabs/stoclient/contract/dividend"
	"github.com/meverselabs/stoclient/contract/token"
)

type checkpointClient interface {
	Dividends(ctx context.Context) ([]dividend.Dividend, error)
	CreateDividend(ctx context.Context, p dividend.NewDividend) (*types.Transaction, error)
	Wait(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

func (s *session) checkpoint(address common.Address, native bool) (checkpointClient, error) {
	if native {
		return dividend.NewEtherCheckpoint(address, s.cctx)
	}
	return dividend.NewERC20Checkpoint(address, s.cctx, dividend.WithSymbolCache(s.symbols))
}

func dividendsCommand(f *flags) *cobra.Command {
	var native bool
	cmd := &cobra.Command{
		Use:   "dividends [checkpoint]",
		Short: "returns the dividends of the checkpoint module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, f, false)
			if err != nil {
				return err
			}
			defer s.Close()

			cp, err := s.checkpoint(address, native)
			if err != nil {
				return err
			}
			ds, err := cp.Dividends(cmd.Context())
			if err != nil {
				return err
			}
			if len(ds) == 0 {
				pterm.Info.Println("no dividends")
				return nil
			}
			decimals, err := tokenDecimals(cmd.Context(), s.cctx, ds)
			if err != nil {
				return err
			}
			return pterm.DefaultTable.WithHasHeader().WithData(dividendTable(ds, decimals)).Render()
		},
	}
	cmd.Flags().BoolVar(&native, "native", false, "the module pays the native coin")
	return cmd
}

// tokenDecimals reads the decimals of the funding tokens of the dividends
func tokenDecimals(ctx context.Context, cctx *contract.Context, ds []dividend.Dividend) (map[common.Address]uint8, error) {
	var tokens []common.Address
	seen := map[common.Address]bool{}
	for _, d := range ds {
		if d.Token != (common.Address{}) && !seen[d.Token] {
			seen[d.Token] = true
			tokens = append(tokens, d.Token)
		}
	}
	decimals := make([]uint8, len(tokens))
	err := cctx.ForEach(ctx, len(tokens), func(ctx context.Context, i int) error {
		t, err := token.NewERC20(tokens[i], cctx)
		if err != nil {
			return err
		}
		decimals[i], err = t.Decimals(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make(map[common.Address]uint8, len(tokens))
	for i, addr := range tokens {
		out[addr] = decimals[i]
	}
	return out, nil
}

// dividendTable formats the amounts with the decimals of their funding
// token, or 18 when the token is unknown
func dividendTable(ds []dividend.Dividend, decimals map[common.Address]uint8) pterm.TableData {
	data := pterm.TableData{
		{"Index", "Name", "Checkpoint", "Created", "Maturity", "Expiry", "Amount", "Claimed", "Currency", "Reclaimed"},
	}
	for _, d := range ds {
		dec, has := decimals[d.Token]
		if !has {
			dec = amount.FractionalCount
		}
		data = append(data, []string{
			strconv.Itoa(d.Index),
			d.Name,
			d.CheckpointID.String(),
			d.Created.Format(time.RFC3339),
			d.Maturity.Format(time.RFC3339),
			d.Expiry.Format(time.RFC3339),
			amount.FromUnits(d.Amount, dec).String(),
			amount.FromUnits(d.ClaimedAmount, dec).String(),
			d.CurrencyOr("-"),
			strconv.FormatBool(d.Reclaimed),
		})
	}
	return data
}

type createDividendArgs struct {
	maturity     string
	expiry       string
	token        string
	amount       string
	checkpointID uint64
	name         string
	exclude      []string
}

// newDividend parses the flags. excluded selects the exclusions entry point
// even when the list is empty.
func (a *createDividendArgs) newDividend(excluded bool) (dividend.NewDividend, error) {
	var p dividend.NewDividend
	var err error
	if p.Maturity, err = time.Parse(time.RFC3339, a.maturity); err != nil {
		return p, errors.Wrap(contract.ErrInvalidArgument, "maturity must be RFC3339")
	}
	if p.Expiry, err = time.Parse(time.RFC3339, a.expiry); err != nil {
		return p, errors.Wrap(contract.ErrInvalidArgument, "expiry must be RFC3339")
	}
	if !p.Maturity.Before(p.Expiry) {
		return p, errors.Wrap(contract.ErrInvalidArgument, "maturity must be before expiry")
	}
	if len(a.token) > 0 {
		if p.Token, err = parseAddress(a.token); err != nil {
			return p, err
		}
	}
	am, err := amount.ParseAmount(a.amount)
	if err != nil {
		return p, err
	}
	p.Amount = am.Decimal()
	p.CheckpointID = a.checkpointID
	p.Name = a.name
	if excluded {
		p.Excluded = make([]common.Address, 0, len(a.exclude))
		for _, s := range a.exclude {
			addr, err := parseAddress(s)
			if err != nil {
				return p, err
			}
			p.Excluded = append(p.Excluded, addr)
		}
	}
	return p, nil
}

func createDividendCommand(f *flags) *cobra.Command {
	var (
		a      createDividendArgs
		native bool
		wait   bool
	)
	cmd := &cobra.Command{
		Use:   "create-dividend [checkpoint]",
		Short: "creates a dividend at a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			p, err := a.newDividend(cmd.Flags().Changed("exclude"))
			if err != nil {
				return err
			}
			if !native && p.Token == (common.Address{}) {
				return errors.Wrap(contract.ErrInvalidArgument, "--token is required")
			}

			s, err := openSession(cmd, f, true)
			if err != nil {
				return err
			}
			defer s.Close()

			cp, err := s.checkpoint(address, native)
			if err != nil {
				return err
			}
			tx, err := cp.CreateDividend(cmd.Context(), p)
			if err != nil {
				return err
			}
			s.logger.Info("dividend submitted", zap.String("tx", tx.Hash().Hex()), zap.Bool("exclusions", p.Excluded != nil))
			pterm.Success.Println("submitted", tx.Hash().Hex())
			if !wait {
				return nil
			}
			receipt, err := cp.Wait(cmd.Context(), tx)
			if err != nil {
				return err
			}
			pterm.Success.Println("mined in block", receipt.BlockNumber.String())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&a.maturity, "maturity", "", "time the dividend can be claimed from (RFC3339)")
	fs.StringVar(&a.expiry, "expiry", "", "time the dividend can be reclaimed from (RFC3339)")
	fs.StringVar(&a.token, "token", "", "token funding the dividend")
	fs.StringVar(&a.amount, "amount", "", "amount in coin units")
	fs.Uint64Var(&a.checkpointID, "checkpoint-id", 0, "checkpoint of the balances, 0 creates a new one")
	fs.StringVar(&a.name, "name", "", "name of the dividend, at most 32 bytes")
	fs.StringSliceVar(&a.exclude, "exclude", nil, "addresses excluded from the dividend, given even empty selects the exclusions entry point")
	fs.BoolVar(&native, "native", false, "the module pays the native coin")
	fs.BoolVar(&wait, "wait", false, "waits for the receipt")
	for _, name := range []string{"maturity", "expiry", "amount", "name"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
