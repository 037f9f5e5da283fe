package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/product-catalog/cmd/catalog/root"
	"github.com/crucial707/product-catalog/internal/db"
	"github.com/crucial707/product-catalog/internal/telemetry"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(serveCmd())
}

func serveCmd() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog web server",
		Long:  "Serve the catalog until SIGINT or SIGTERM, then drain in-flight requests.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, migrateFirst bool) error {
	a, err := root.OpenApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	shutdownTelemetry := telemetry.Setup(ctx, "catalog")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	if migrateFirst && a.DB != nil {
		if err := db.Migrate(a.MigrationURL()); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	cfg := a.Config
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("catalog listening", "addr", server.Addr, "tls", cfg.TLSCertFile != "")
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
