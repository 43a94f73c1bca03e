package cli

import (
	"context"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/spf13/cobra"
)

type balanceView struct {
	Account ledger.AccountID
	Balance uint64
	Supply  uint64
}

func newLedgerCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Mint, move and inspect balances",
	}

	var to, from, account string
	var collection uint64

	mint := &cobra.Command{
		Use:   "mint ASSET AMOUNT",
		Short: "Mint a fungible asset to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(to)
			if err != nil {
				return err
			}
			vs, err := parseUints("amount", args)
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				if err := e.Fund(ctx, ledger.AssetID(vs[0]), who, vs[1]); err != nil {
					return err
				}
				return printFungible(ctx, cmd, e, ledger.AssetID(vs[0]), who)
			})
		},
	}
	mint.Flags().StringVar(&to, "to", "", "receiving account")

	mintBatch := &cobra.Command{
		Use:   "mint-batch TOKEN_ID AMOUNT",
		Short: "Mint a token of a collection to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(to)
			if err != nil {
				return err
			}
			vs, err := parseUints("amount", args)
			if err != nil {
				return err
			}
			coll, id := ledger.CollectionID(collection), ledger.TokenID(vs[0])
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				if err := e.FundBatch(ctx, coll, id, who, vs[1]); err != nil {
					return err
				}
				return printBatch(ctx, cmd, e, coll, id, who)
			})
		},
	}
	mintBatch.Flags().StringVar(&to, "to", "", "receiving account")
	mintBatch.Flags().Uint64Var(&collection, "collection", 0, "collection id")

	transfer := &cobra.Command{
		Use:   "transfer ASSET AMOUNT",
		Short: "Move a fungible asset between accounts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseAccount(from)
			if err != nil {
				return err
			}
			dst, err := parseAccount(to)
			if err != nil {
				return err
			}
			vs, err := parseUints("amount", args)
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				if err := e.Transfer(ctx, ledger.AssetID(vs[0]), src, dst, vs[1]); err != nil {
					return err
				}
				return printFungible(ctx, cmd, e, ledger.AssetID(vs[0]), dst)
			})
		},
	}
	transfer.Flags().StringVar(&from, "from", "", "sending account")
	transfer.Flags().StringVar(&to, "to", "", "receiving account")

	balance := &cobra.Command{
		Use:   "balance ASSET",
		Short: "Show an account's balance of a fungible asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(account)
			if err != nil {
				return err
			}
			asset, err := parseUint("asset", args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				return printFungible(ctx, cmd, e, ledger.AssetID(asset), who)
			})
		},
	}
	balance.Flags().StringVar(&account, "account", "", "account to inspect")

	batchBalance := &cobra.Command{
		Use:   "batch-balance TOKEN_ID",
		Short: "Show an account's balance of a collection token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(account)
			if err != nil {
				return err
			}
			id, err := parseUint("token id", args[0])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				return printBatch(ctx, cmd, e, ledger.CollectionID(collection), ledger.TokenID(id), who)
			})
		},
	}
	batchBalance.Flags().StringVar(&account, "account", "", "account to inspect")
	batchBalance.Flags().Uint64Var(&collection, "collection", 0, "collection id")

	cmd.AddCommand(mint, mintBatch, transfer, balance, batchBalance)
	return cmd
}

func printFungible(ctx context.Context, cmd *cobra.Command, e *amm.Engine, asset ledger.AssetID, who ledger.AccountID) error {
	bal, err := e.BalanceOf(ctx, asset, who)
	if err != nil {
		return err
	}
	supply, err := e.TotalSupply(ctx, asset)
	if err != nil {
		return err
	}
	return printJSON(cmd, balanceView{Account: who, Balance: bal, Supply: supply})
}

func printBatch(ctx context.Context, cmd *cobra.Command, e *amm.Engine, coll ledger.CollectionID, id ledger.TokenID, who ledger.AccountID) error {
	bal, err := e.BatchBalanceOf(ctx, coll, id, who)
	if err != nil {
		return err
	}
	supply, err := e.BatchTotalSupply(ctx, coll, id)
	if err != nil {
		return err
	}
	return printJSON(cmd, balanceView{Account: who, Balance: bal, Supply: supply})
}
