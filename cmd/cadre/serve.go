package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/avells/cadre/pkg/adapters/http"
	"github.com/avells/cadre/pkg/adapters/memory"
	redisAdapter "github.com/avells/cadre/pkg/adapters/redis"
	"github.com/avells/cadre/pkg/metrics"
	"github.com/avells/cadre/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Builds the declared organization and exposes it over a JSON API: workflow listing, run submission, run history, and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")

		org, _, err := loadOrganization(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var store ports.RunStore
		if redisAddr != "" {
			store = redisAdapter.New(redisAddr, "", 0)
			fmt.Printf("Persisting runs to redis at %s\n", redisAddr)
		} else {
			store = memory.NewStore()
		}

		collector := metrics.NewCollector(prometheus.DefaultRegisterer)
		detach := collector.Attach(org.Bus())
		defer detach()

		mux := chi.NewRouter()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Mount("/", httpAdapter.NewHandler(org, httpAdapter.WithStore(store)))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Cadre Server on %s\n", srv.Addr)
			fmt.Printf("Serving organization: %s\n", org.Name())
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
			fmt.Println("Cadre Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for run persistence (empty keeps runs in memory)")
}
