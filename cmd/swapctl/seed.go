package main

import (
	"fmt"

	"swappay-be/internal/entity"
	"swappay-be/internal/repository/specification"

	"github.com/spf13/cobra"
)

// demoUsers is the account set a fresh development database starts with.
var demoUsers = []entity.User{
	{Username: "admin", Email: "admin@swappay.local", Role: entity.UserRoleAdmin},
	{Username: "alice", Email: "alice@swappay.local", Role: entity.UserRoleUser},
	{Username: "bob", Email: "bob@swappay.local", Role: entity.UserRoleUser},
	{Username: "carol", Email: "carol@swappay.local", Role: entity.UserRoleUser},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo accounts (skips existing emails)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()

			out := cmd.OutOrStdout()
			users := svc.uowFactory.NewUnitOfWork(ctx).UserRepository()
			for _, u := range demoUsers {
				existing, err := users.FindOne(ctx, specification.ByEmail{Email: u.Email})
				if err != nil {
					return err
				}
				if existing != nil {
					fmt.Fprintf(out, "User '%s' already exists (%s), skipping...\n", u.Email, existing.Id)
					continue
				}

				user := u
				if err := users.Create(ctx, &user); err != nil {
					return fmt.Errorf("create %s: %w", u.Email, err)
				}
				okColor.Fprintf(out, "Created %s %s (%s)\n", user.Role, user.Email, user.Id)
			}
			return nil
		},
	}
}
