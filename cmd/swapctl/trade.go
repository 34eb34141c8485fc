package main

import (
	"fmt"
	"io"
	"strings"

	"swappay-be/internal/dto"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Inspect and override trade agreements",
	}

	cmd.AddCommand(newTradeStatusCmd())
	cmd.AddCommand(newTradeResetCmd())
	cmd.AddCommand(newTradeListCmd())
	return cmd
}

func parseRoomArg(args []string) (uuid.UUID, error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid chat room id %q", args[0])
	}
	return id, nil
}

func newTradeStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <chat-room-id>",
		Short: "Show the agreement of a chat room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomId, err := parseRoomArg(args)
			if err != nil {
				return err
			}
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			status, err := svc.trade.GetStatus(ctx, roomId)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newTradeResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <chat-room-id>",
		Short: "Clear both acceptances and the transcript (admin override)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomId, err := parseRoomArg(args)
			if err != nil {
				return err
			}
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			status, err := svc.trade.Reset(ctx, roomId)
			if err != nil {
				return err
			}
			okColor.Fprintln(cmd.OutOrStdout(), "Agreement reset")
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newTradeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every agreement",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			all, err := svc.trade.ListAll(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range all {
				fmt.Fprintf(out, "%s  %-12s  %v/%v\n", s.ChatRoomId, s.State, s.User1Accepted, s.User2Accepted)
			}
			fmt.Fprintf(out, "%d agreements\n", len(all))
			return nil
		},
	}
}

func printStatus(out io.Writer, s *dto.TradeStatusResponse) {
	if !s.Exists {
		warnColor.Fprintf(out, "No agreement yet for room %s\n", s.ChatRoomId)
		return
	}
	fmt.Fprintf(out, "Room:       %s\n", s.ChatRoomId)
	fmt.Fprintf(out, "State:      %s\n", s.State)
	fmt.Fprintf(out, "Accepted:   user1=%v user2=%v\n", s.User1Accepted, s.User2Accepted)
	fmt.Fprintf(out, "Transcript: %s\n", strings.Join(s.Transcript, " | "))
	if s.CompletedAt != nil {
		fmt.Fprintf(out, "Completed:  %s\n", s.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if s.RewardWarning != "" {
		errColor.Fprintf(out, "Reward:     %s\n", s.RewardWarning)
	}
}
