package migrate

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/product-catalog/cmd/catalog/root"
	"github.com/crucial707/product-catalog/internal/app"
	"github.com/crucial707/product-catalog/internal/db"
)

func init() {
	root.RootCmd.AddCommand(migrateCmd())
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.AddCommand(
		stepCmd("up", "Apply all pending migrations", db.Migrate),
		stepCmd("down", "Roll back every migration", db.MigrateDown),
	)
	return cmd
}

// ==========================
// UP / DOWN
// ==========================
func stepCmd(use, short string, run func(databaseURL string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.OpenApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return runStep(cmd, a, use, run)
		},
	}
}

func runStep(cmd *cobra.Command, a *app.App, use string, run func(string) error) error {
	if a.DB == nil {
		return errors.New("migrations need STORE=postgres")
	}
	if err := run(a.MigrationURL()); err != nil {
		return err
	}
	a.Logger.Info("migrations applied", "direction", use)
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", use)
	return nil
}
