package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func symbolCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "symbol [token]",
		Short: "returns the symbol of the token",
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

			symbol, err := s.symbols.Symbol(cmd.Context(), address, s.cctx)
			if err != nil {
				return err
			}
			pterm.Println(symbol)
			return nil
		},
	}
}
