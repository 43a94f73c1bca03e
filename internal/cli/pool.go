package cli

import (
	"context"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/spf13/cobra"
)

func newPoolCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect two-asset pools",
	}

	var creator string
	create := &cobra.Command{
		Use:   "create ASSET_A ASSET_B",
		Short: "Create a pool for an asset pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(creator)
			if err != nil {
				return err
			}
			assets, err := parseAssets(args)
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				id, err := e.CreatePool(ctx, who, assets[0], assets[1])
				if err != nil {
					return err
				}
				p, err := e.Pool(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, p)
			})
		},
	}
	create.Flags().StringVar(&creator, "creator", "", "creating account (hex id or name)")

	show := &cobra.Command{
		Use:   "show POOL_ID",
		Short: "Show a pool with its reserves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				p, err := e.Pool(ctx, id)
				if err != nil {
					return err
				}
				r, err := e.Reserves(ctx, id)
				if err != nil {
					return err
				}
				k, err := e.KLast(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct {
					amm.Pool
					Reserves amm.Reserves
					KLast    string
				}{p, r, k.Dec()})
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				pools, err := e.Pools(ctx)
				if err != nil {
					return err
				}
				batch, err := e.BatchPools(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct {
					Pools      []amm.Pool
					BatchPools []amm.BatchPool
				}{pools, batch})
			})
		},
	}

	sync := &cobra.Command{
		Use:   "sync POOL_ID",
		Short: "Force cached reserves to match the vault balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				if err := e.Sync(ctx, id); err != nil {
					return err
				}
				r, err := e.Reserves(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, r)
			})
		},
	}

	cmd.AddCommand(create, show, list, sync)
	return cmd
}
