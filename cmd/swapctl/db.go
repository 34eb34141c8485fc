package main

import (
	"fmt"
	"time"

	"swappay-be/internal/model"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			models := model.All()
			if err := svc.db.AutoMigrate(models...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Migrated %d tables\n", len(models))
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	var retention time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete chat messages older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if retention > 0 {
				svc.cfg.Janitor.MessageRetention = retention
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			deleted, err := svc.sweeper().Sweep(ctx)
			if err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "Deleted %d messages older than %s\n", deleted, svc.cfg.Janitor.MessageRetention)
			return nil
		},
	}

	cmd.Flags().DurationVar(&retention, "retention", 0, "override MESSAGE_RETENTION (e.g. 72h)")
	return cmd
}
