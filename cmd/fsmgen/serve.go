package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/fsmgen"
	"github.com/aretw0/fsmgen/internal/cli"
	httpadapter "github.com/aretw0/fsmgen/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves FSM validation, graph export, repair and finding scoring over HTTP,
along with the stored records and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = appCfg.MetricsAddr
		}
		if addr == "" {
			addr = ":8080"
		}

		stack, err := cli.Build(appCfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		opts := []httpadapter.Option{
			httpadapter.WithMetrics(stack.Metrics.Handler()),
			httpadapter.WithVersion(strings.TrimSpace(fsmgen.Version)),
			httpadapter.WithLogger(logger),
		}
		if stack.Store != nil {
			opts = append(opts, httpadapter.WithStore(stack.Store))
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpadapter.NewHandler(opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting HTTP server", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down server", "signal", ctx.Signal())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server exited properly")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (defaults to metrics_addr or :8080)")
}
