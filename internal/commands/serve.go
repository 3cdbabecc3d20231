package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cpa005/internal/config"
	"github.com/cleared-dev/cpa005/internal/runlog"
	"github.com/cleared-dev/cpa005/internal/server"
)

func newServeCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	var addr string
	var historyDB string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("history-db") {
				cfg.Server.HistoryDB = historyDB
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&historyDB, "history-db", "", "SQLite database for run history")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log.Printf("Opening run history at %s", cfg.Server.HistoryDB)
	history, err := runlog.OpenSQLite(cfg.Server.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer history.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(cfg, history, log.Default()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		log.Printf("  POST   /convert?convtype=PAD|PDS")
		log.Printf("  GET    /runs")
		log.Printf("  GET    /healthz")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
