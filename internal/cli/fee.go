package cli

import (
	"context"
	"fmt"

	"github.com/LeJamon/goAMM/internal/core/amm"
	"github.com/LeJamon/goAMM/internal/core/ledger"
	"github.com/spf13/cobra"
)

func newFeeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Manage the protocol fee recipient",
	}

	var caller string
	var disable bool

	setTo := &cobra.Command{
		Use:   "set-to [RECIPIENT]",
		Short: "Set or clear the protocol fee recipient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := parseAccount(caller)
			if err != nil {
				return err
			}

			var recipient *ledger.AccountID
			switch {
			case disable && len(args) > 0:
				return fmt.Errorf("--disable takes no recipient")
			case !disable && len(args) == 0:
				return fmt.Errorf("recipient is required unless --disable is set")
			case !disable:
				r, err := parseAccount(args[0])
				if err != nil {
					return err
				}
				recipient = &r
			}

			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				if err := e.SetFeeTo(ctx, who, recipient); err != nil {
					return err
				}
				return printFeeTo(ctx, cmd, e)
			})
		},
	}
	setTo.Flags().StringVar(&caller, "caller", "", "account making the change; must be the configured fee setter")
	setTo.Flags().BoolVar(&disable, "disable", false, "turn the protocol fee off")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the protocol fee recipient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withEngine(cmd, func(ctx context.Context, e *amm.Engine) error {
				return printFeeTo(ctx, cmd, e)
			})
		},
	}

	cmd.AddCommand(setTo, show)
	return cmd
}

func printFeeTo(ctx context.Context, cmd *cobra.Command, e *amm.Engine) error {
	to, on, err := e.FeeTo(ctx)
	if err != nil {
		return err
	}
	view := struct {
		Enabled bool
		FeeTo   *ledger.AccountID `json:",omitempty"`
	}{Enabled: on}
	if on {
		view.FeeTo = &to
	}
	return printJSON(cmd, view)
}
