package cli

import (
	"context"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/spf13/cobra"
)

func newLiquidityCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Deposit into and withdraw from two-asset pools",
	}

	var provider, to string
	var minA, minB uint64

	add := &cobra.Command{
		Use:   "add ASSET_A ASSET_B AMOUNT_A AMOUNT_B",
		Short: "Deposit at the pool's current price",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(provider)
			if err != nil {
				return err
			}
			vs, err := parseUints("argument", args)
			if err != nil {
				return err
			}
			params := amm.AddLiquidityParams{
				AssetA:         assetID(vs[0]),
				AssetB:         assetID(vs[1]),
				AmountADesired: vs[2],
				AmountBDesired: vs[3],
				AmountAMin:     minA,
				AmountBMin:     minB,
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				res, err := e.AddLiquidity(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	add.Flags().StringVar(&provider, "provider", "", "depositing account")
	add.Flags().Uint64Var(&minA, "min-a", 0, "minimum amount of asset A taken")
	add.Flags().Uint64Var(&minB, "min-b", 0, "minimum amount of asset B taken")

	remove := &cobra.Command{
		Use:   "remove ASSET_A ASSET_B LIQUIDITY",
		Short: "Burn liquidity tokens for a share of the pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(provider)
			if err != nil {
				return err
			}
			recipient := who
			if to != "" {
				if recipient, err = parseAccount(to); err != nil {
					return err
				}
			}
			vs, err := parseUints("argument", args)
			if err != nil {
				return err
			}
			params := amm.RemoveLiquidityParams{
				AssetA:     assetID(vs[0]),
				AssetB:     assetID(vs[1]),
				Liquidity:  vs[2],
				AmountAMin: minA,
				AmountBMin: minB,
				To:         recipient,
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				amountA, amountB, err := e.RemoveLiquidity(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct{ AmountA, AmountB uint64 }{amountA, amountB})
			})
		},
	}
	remove.Flags().StringVar(&provider, "provider", "", "withdrawing account")
	remove.Flags().StringVar(&to, "to", "", "recipient (defaults to the provider)")
	remove.Flags().Uint64Var(&minA, "min-a", 0, "minimum amount of asset A paid out")
	remove.Flags().Uint64Var(&minB, "min-b", 0, "minimum amount of asset B paid out")

	cmd.AddCommand(add, remove)
	return cmd
}
