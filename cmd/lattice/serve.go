package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lattice"
	httpAdapter "github.com/aretw0/lattice/pkg/adapters/http"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves the stored snapshots over a JSON API, with Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			var (
				metrics *observability.Metrics
				opts    = []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
			)
			if a.cfg.Server.Metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics = observability.NewMetrics(reg)
				opts = append(opts, httpAdapter.WithMetrics(metrics, reg))
			}

			env, err := a.environment(metrics)
			if err != nil {
				return err
			}
			defer env.Close()

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           httpAdapter.NewHandler(env.Manager, lattice.DefaultKinds(), opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting lattice server", "addr", srv.Addr, "store", a.cfg.Store.Driver)
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				a.logger.Info("shutting down", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
					return srv.Close()
				}
				a.logger.Info("lattice server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides server.addr)")
	return cmd
}
