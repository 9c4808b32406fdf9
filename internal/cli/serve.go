package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/platewise/platewise/internal/api"
	"github.com/platewise/platewise/internal/app/accounts"
	"github.com/platewise/platewise/internal/app/catalog"
	"github.com/platewise/platewise/internal/app/orders"
	"github.com/platewise/platewise/internal/daemon"
	"github.com/platewise/platewise/internal/infra/sqlite"
	"github.com/platewise/platewise/internal/notify"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long:  `Start the HTTP API server. Blocks until SIGINT or SIGTERM, then shuts down gracefully.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}
	log := daemon.NewLogger(cfg.Log)

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	dispatcher := notify.NewDispatcher(cfg.SMTP, log)
	srv := api.NewServer(
		accounts.NewService(db, dispatcher, log),
		orders.NewService(db, dispatcher, log),
		catalog.NewService(db, log),
		log,
	)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening", "addr", cfg.API.Addr(), "db", cfg.Database.Path)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
