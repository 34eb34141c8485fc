package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"swappay-be/internal/config"
	"swappay-be/pkg/events"
	pktNats "swappay-be/pkg/nats"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Marketplace event bus tools",
	}
	cmd.AddCommand(newEventsWatchCmd())
	return cmd
}

func newEventsWatchCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print marketplace events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = sub.Subscribe(ctx, subject, "", func(_ context.Context, evt events.Event) error {
				okColor.Fprintf(out, "%s ", evt.Timestamp().Format("15:04:05"))
				fmt.Fprintf(out, "%s %v\n", evt.EventType(), evt.Payload())
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Watching %s (ctrl-c to stop)\n", subject)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", pktNats.SubjectPrefix+".>", "subject filter")
	return cmd
}
