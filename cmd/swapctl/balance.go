package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's swap-coin balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userId, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			bal, err := svc.ledger.GetBalance(ctx, userId)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s: %d swap coins, %d completed trades\n",
				bal.UserId, bal.SwapCoinBalance, bal.CompletedTradeCount)
			return nil
		},
	}
}
