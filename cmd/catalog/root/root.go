package root

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/crucial707/product-catalog/internal/app"
	"github.com/crucial707/product-catalog/internal/config"
	"github.com/crucial707/product-catalog/internal/logging"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:          "catalog",
	Short:        "Product catalog server and admin tools",
	Long:         "Serve the product catalog web app, migrate its database, and manage users and products from the shell.",
	SilenceUsage: true,
}

// Optional helper to return the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}

// OpenApp loads configuration, installs the process logger and opens the
// configured store. Callers must Close the App.
func OpenApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	return app.Open(cfg, logger)
}
