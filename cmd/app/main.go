package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mockserver/internal/adapters/driving/httpadapter"
	"mockserver/internal/config"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mockserver",
		Short: "Serve a JSON document as a REST API",
		Long: `mockserver exposes every top-level array in a JSON document as a REST
collection with search, filtering, sorting and pagination.

Settings come from flags, environment variables (SERVER_ADDR, DATA_FILE, ...)
or a .env file in the working directory, in that order of precedence.

Examples:
  # serve db.json on :3000
  mockserver

  # serve data piped on stdin without touching any file
  cat db.json | mockserver

  # serve the articles endpoint on :3040
  mockserver articles --articles-file data.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newArticlesCmd())

	return rootCmd
}

// setupSignalHandler configures a listener for OS signals to trigger a graceful shutdown.
func setupSignalHandler(cancelFunc context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM) // listen to OS interrupt signal

	// clean shutdown sequence
	go func() {
		<-quit
		log.Println("INFO: Shutdown signal received...")
		cancelFunc()
	}()
}

// middlewares returns the cross-cutting handlers shared by both deployments.
func middlewares(cfg *config.Config) []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{
		httpadapter.CORS(cfg.AllowedOrigins),
	}

	if cfg.EnableDelay {
		log.Printf("INFO: Artificial delay enabled: base=%s random=%s", cfg.BaseDelay, cfg.RandDelay)
		mws = append(mws, httpadapter.Delay(cfg.BaseDelay, cfg.RandDelay))
	}
	return mws
}

// runServer serves handler on addr until appCtx is cancelled.
func runServer(appCtx context.Context, cfg *config.Config, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)

	// start the server
	go func() {
		log.Printf("INFO: Server starting on %s", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// listen for context cancellation or a failed listener
	select {
	case <-appCtx.Done():
		log.Println("INFO: Context cancelled, initiating server shutdown.")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	}

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("INFO: Server exiting gracefully...")
	return nil
}
