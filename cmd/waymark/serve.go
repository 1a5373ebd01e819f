package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark/internal/presentation/tui"
	"github.com/waymark-ai/waymark/pkg/adapters/httpapi"
	"github.com/waymark-ai/waymark/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Starts the engine as an HTTP server exposing the two-call protocol, the workflow table, health and metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := buildRuntime(cmd)
		if err != nil {
			fmt.Printf("Error initializing waymark: %v\n", err)
			os.Exit(1)
		}
		defer rt.cleanup()

		opts := []httpapi.Option{
			httpapi.WithLogger(rt.logger),
		}
		if rt.config.Server.Metrics {
			opts = append(opts, httpapi.WithMetricsGatherer(rt.registry))
		}
		if rt.config.Server.JWTSecret != "" {
			opts = append(opts, httpapi.WithJWTSecret(rt.config.Server.JWTSecret))
		}

		handler, err := httpapi.NewHandler(cmd.Context(), rt.engine, rt.engine.Workflow(), opts...)
		if err != nil {
			fmt.Printf("Error building HTTP handler: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    rt.config.Server.Address,
			Handler: handler,
		}

		if tui.IsInteractive() {
			tui.PrintBanner()
		}

		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		if w, ok := rt.source.(ports.Watchable); ok {
			events, err := w.Watch(watchCtx)
			if err != nil {
				rt.logger.Warn("Artifact watcher unavailable", "err", err)
			} else {
				go func() {
					for id := range events {
						rt.logger.Debug("Artifact changed", "doc", id)
					}
				}()
			}
		}

		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Waymark server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Waymark server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
