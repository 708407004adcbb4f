package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/bucketdav/bucketdav/pkg/config"
	"github.com/bucketdav/bucketdav/pkg/dav"
	"github.com/bucketdav/bucketdav/pkg/store"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Serve the configured bucket over WebDAV",
	Example: "serve --listen 127.0.0.1:8080",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			die("could not parse command flags: %v\n", err)
		}
		listenAddr, err := cmd.Flags().GetString("listen")
		if err != nil {
			die("could not parse command flags: %v\n", err)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			die("could not load configuration: %v\n", err)
		}
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}
		if cfg.Auth.Username == "" || cfg.Auth.Password == "" {
			die("auth.username and auth.password must be configured\n")
		}

		objectStore, err := store.New(ctx, store.Config{
			Backend:   cfg.Storage.Backend,
			Bucket:    cfg.Storage.Bucket,
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			die("could not set up %s storage backend: %v\n", cfg.Storage.Backend, err)
		}

		handler := dav.NewLoggingHandler(dav.NewHandler(objectStore, dav.Credentials{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		}), slog.Default())

		listener, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			die("could not listen on %s: %v\n", cfg.Listen, err)
		}

		ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt) // SIGTERM
		defer cancelFn()

		server := &http.Server{Handler: handler}
		go func() {
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("error running WebDAV server", "error", err)
			}
		}()

		fmt.Printf("WebDAV server listening on %s\n", listener.Addr().String())
		slog.InfoContext(ctx, "WebDAV server started successfully",
			"addr", listener.Addr(), "backend", cfg.Storage.Backend, "bucket", cfg.Storage.Bucket)

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (overrides the config file)")
	serveCmd.Flags().StringP("config", "c", "", "path to the config file (default ~/.bucketdav.yaml)")
	rootCmd.AddCommand(serveCmd)
}
