package cli

import (
	"fmt"

	"github.com/SteveKibs/cake-backend-app/config"
	"github.com/SteveKibs/cake-backend-app/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Run the schema migration and, when admin credentials are given, seed the first admin account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := config.InitDB(cfg.DB)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")

			if username == "" {
				return nil
			}
			created, err := database.EnsureAdmin(db, username, email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", username)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "admin-username", "", "Username of the admin account to seed")
	cmd.Flags().StringVar(&email, "admin-email", "", "Email of the admin account to seed")
	cmd.Flags().StringVar(&password, "admin-password", "", "Password of the admin account to seed")

	return cmd
}
