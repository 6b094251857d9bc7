package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/projecthub/internal/auth"
	"github.com/example/projecthub/internal/config"
	"github.com/example/projecthub/internal/store"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, email, password string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a user to the userdata file without going through the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := context.Background()
			users, err := store.Open(ctx, store.NewFilePersister(cfg.UserdataFile))
			if err != nil {
				return err
			}
			svc := auth.Service{Users: users}
			u, err := svc.Register(ctx, auth.Registration{
				Username:        username,
				Email:           email,
				Password:        password,
				PasswordConfirm: password,
				TermsAccepted:   true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created user %q (id=%s)\n", u.Username, u.ID)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
