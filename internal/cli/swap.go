package cli

import (
	"context"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/spf13/cobra"
)

func newSwapCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Trade along a path of pools",
	}

	var sender, to string

	recipient := func() (senderID, toID ledger.AccountID, err error) {
		s, err := parseAccount(sender)
		if err != nil {
			return senderID, toID, err
		}
		r := s
		if to != "" {
			if r, err = parseAccount(to); err != nil {
				return senderID, toID, err
			}
		}
		return s, r, nil
	}

	exactIn := &cobra.Command{
		Use:   "exact-in AMOUNT_IN MIN_OUT ASSET ASSET...",
		Short: "Sell an exact input for at least MIN_OUT",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, r, err := recipient()
			if err != nil {
				return err
			}
			amounts, err := parseUints("amount", args[:2])
			if err != nil {
				return err
			}
			path, err := parseAssets(args[2:])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				out, err := e.SwapExactIn(ctx, s, amounts[0], amounts[1], path, r)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct{ Amounts []uint64 }{out})
			})
		},
	}

	exactOut := &cobra.Command{
		Use:   "exact-out AMOUNT_OUT MAX_IN ASSET ASSET...",
		Short: "Buy an exact output for at most MAX_IN",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, r, err := recipient()
			if err != nil {
				return err
			}
			amounts, err := parseUints("amount", args[:2])
			if err != nil {
				return err
			}
			path, err := parseAssets(args[2:])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				in, err := e.SwapExactOut(ctx, s, amounts[0], amounts[1], path, r)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct{ Amounts []uint64 }{in})
			})
		},
	}

	for _, c := range []*cobra.Command{exactIn, exactOut} {
		c.Flags().StringVar(&sender, "sender", "", "paying account")
		c.Flags().StringVar(&to, "to", "", "recipient (defaults to the sender)")
	}

	cmd.AddCommand(exactIn, exactOut)
	return cmd
}

func newQuoteCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trade without executing it",
	}

	out := &cobra.Command{
		Use:   "out AMOUNT_IN ASSET ASSET...",
		Short: "Outputs of every hop for an exact input",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUint("amount", args[0])
			if err != nil {
				return err
			}
			path, err := parseAssets(args[1:])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				amounts, err := e.GetAmountsOut(ctx, amount, path)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct{ Amounts []uint64 }{amounts})
			})
		},
	}

	in := &cobra.Command{
		Use:   "in AMOUNT_OUT ASSET ASSET...",
		Short: "Inputs of every hop for an exact output",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseUint("amount", args[0])
			if err != nil {
				return err
			}
			path, err := parseAssets(args[1:])
			if err != nil {
				return err
			}
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				amounts, err := e.GetAmountsIn(ctx, amount, path)
				if err != nil {
					return err
				}
				return printJSON(cmd, struct{ Amounts []uint64 }{amounts})
			})
		},
	}

	cmd.AddCommand(out, in)
	return cmd
}
