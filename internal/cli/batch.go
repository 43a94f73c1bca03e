package cli

import (
	"context"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/spf13/cobra"
)

func newBatchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Batch pools pricing collection tokens against a currency",
	}

	var (
		account, to                         string
		ids, amounts, currencies, minTokens []string
		maxCurrency, minCurrency            uint64
	)

	lists := func() ([]ledger.TokenID, []uint64, error) {
		tokenIDs, err := parseTokenIDs(ids)
		if err != nil {
			return nil, nil, err
		}
		vs, err := parseUints("amount", amounts)
		if err != nil {
			return nil, nil, err
		}
		return tokenIDs, vs, nil
	}
	accounts := func() (ledger.AccountID, ledger.AccountID, error) {
		who, err := parseAccount(account)
		if err != nil {
			return who, who, err
		}
		if to == "" {
			return who, who, nil
		}
		r, err := parseAccount(to)
		return who, r, err
	}

	create := &cobra.Command{
		Use:   "create CURRENCY COLLECTION",
		Short: "Create a batch pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, _, err := accounts()
			if err != nil {
				return err
			}
			vs, err := parseUints("id", args)
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				id, err := e.CreateBatchPool(ctx, who, ledger.AssetID(vs[0]), ledger.CollectionID(vs[1]))
				if err != nil {
					return err
				}
				bp, err := e.BatchPool(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, bp)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add POOL_ID",
		Short: "Deposit tokens with currency; --currencies caps each id's currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			who, _, err := accounts()
			if err != nil {
				return err
			}
			tokenIDs, vs, err := lists()
			if err != nil {
				return err
			}
			maxes, err := parseUints("currency", currencies)
			if err != nil {
				return err
			}
			params := amm.BatchAddParams{PoolID: id, TokenIDs: tokenIDs, TokenAmounts: vs, MaxCurrency: maxes}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				res, err := e.AddLiquidityBatch(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove POOL_ID",
		Short: "Burn per-id liquidity; --amounts are liquidity amounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			who, recipient, err := accounts()
			if err != nil {
				return err
			}
			tokenIDs, liquidity, err := lists()
			if err != nil {
				return err
			}
			minCur, err := parseUints("currency", currencies)
			if err != nil {
				return err
			}
			minTok, err := parseUints("token amount", minTokens)
			if err != nil {
				return err
			}
			// Minimums default to zero for every id
			if len(minCur) == 0 {
				minCur = make([]uint64, len(tokenIDs))
			}
			if len(minTok) == 0 {
				minTok = make([]uint64, len(tokenIDs))
			}
			params := amm.BatchRemoveParams{
				PoolID: id, TokenIDs: tokenIDs, Liquidity: liquidity,
				MinCurrency: minCur, MinTokens: minTok, To: recipient,
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				res, err := e.RemoveLiquidityBatch(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}

	buy := &cobra.Command{
		Use:   "buy POOL_ID",
		Short: "Buy tokens for at most --max-currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			who, recipient, err := accounts()
			if err != nil {
				return err
			}
			tokenIDs, vs, err := lists()
			if err != nil {
				return err
			}
			params := amm.BuyParams{PoolID: id, TokenIDs: tokenIDs, Amounts: vs, MaxCurrency: maxCurrency, To: recipient}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				res, err := e.Buy(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}

	sell := &cobra.Command{
		Use:   "sell POOL_ID",
		Short: "Sell tokens for at least --min-currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			who, recipient, err := accounts()
			if err != nil {
				return err
			}
			tokenIDs, vs, err := lists()
			if err != nil {
				return err
			}
			params := amm.SellParams{PoolID: id, TokenIDs: tokenIDs, Amounts: vs, MinCurrency: minCurrency, To: recipient}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				res, err := e.Sell(ctx, who, params)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}

	reserves := &cobra.Command{
		Use:   "reserves POOL_ID",
		Short: "Show per-id currency, token and liquidity state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			tokenIDs, err := parseTokenIDs(ids)
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				rs, err := e.BatchReserves(ctx, id, tokenIDs)
				if err != nil {
					return err
				}
				return printJSON(cmd, rs)
			})
		},
	}

	for _, c := range []*cobra.Command{create, add, remove, buy, sell} {
		c.Flags().StringVar(&account, "account", "", "acting account")
	}
	for _, c := range []*cobra.Command{remove, buy, sell} {
		c.Flags().StringVar(&to, "to", "", "recipient (defaults to the acting account)")
	}
	for _, c := range []*cobra.Command{add, remove, buy, sell, reserves} {
		c.Flags().StringSliceVar(&ids, "ids", nil, "strictly ascending token ids")
	}
	for _, c := range []*cobra.Command{add, remove, buy, sell} {
		c.Flags().StringSliceVar(&amounts, "amounts", nil, "amount per token id")
	}
	add.Flags().StringSliceVar(&currencies, "currencies", nil, "maximum currency per token id")
	remove.Flags().StringSliceVar(&currencies, "currencies", nil, "minimum currency per token id")
	remove.Flags().StringSliceVar(&minTokens, "min-tokens", nil, "minimum tokens per token id")
	buy.Flags().Uint64Var(&maxCurrency, "max-currency", 0, "maximum total currency spent")
	sell.Flags().Uint64Var(&minCurrency, "min-currency", 0, "minimum total currency received")

	cmd.AddCommand(create, add, remove, buy, sell, reserves)
	return cmd
}
