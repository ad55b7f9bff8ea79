package main

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/meverselabs/stoclient/contract/registry"
)

func modulesCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "modules [type] [token]",
		Short: "returns the modules of the type attached to the token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := registry.ParseModuleType(args[0])
			if err != nil {
				return err
			}
			tokenAddr, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, f, false)
			if err != nil {
				return err
			}
			defer s.Close()

			regAddr, err := s.registryAddress()
			if err != nil {
				return err
			}
			r, err := registry.NewModuleRegistry(regAddr, s.cctx)
			if err != nil {
				return err
			}
			list, err := r.ModulesByTypeAndToken(cmd.Context(), t, tokenAddr)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				pterm.Info.Println("no", t.String(), "modules")
				return nil
			}

			names := make([]string, len(list))
			err = s.cctx.ForEach(cmd.Context(), len(list), func(ctx context.Context, i int) error {
				mf, err := registry.NewModuleFactory(list[i], s.cctx)
				if err != nil {
					return err
				}
				names[i], err = mf.Name(ctx)
				return err
			})
			if err != nil {
				return err
			}

			data := pterm.TableData{{"#", "Address", "Name"}}
			for i, addr := range list {
				data = append(data, []string{strconv.Itoa(i), addr.Hex(), names[i]})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func factoryCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "factory [name] [type] [token]",
		Short: "returns the first module of the type attached to the token with the name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := registry.ParseModuleType(args[1])
			if err != nil {
				return err
			}
			tokenAddr, err := parseAddress(args[2])
			if err != nil {
				return err
			}
			s, err := openSession(cmd, f, false)
			if err != nil {
				return err
			}
			defer s.Close()

			regAddr, err := s.registryAddress()
			if err != nil {
				return err
			}
			r, err := registry.NewModuleRegistry(regAddr, s.cctx)
			if err != nil {
				return err
			}
			addr, err := r.ModuleFactoryAddress(cmd.Context(), args[0], t, tokenAddr)
			if err != nil {
				return err
			}
			pterm.Println(addr.Hex())
			return nil
		},
	}
}
