// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/ollama"
	"github.com/jeranaias/portal-tui/internal/server"
	"github.com/jeranaias/portal-tui/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(env *Env) *cobra.Command {
	var (
		host      string
		port      int
		database  string
		replyMode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development backend",
		Long: `Run a local AI Platform backend with SQLite storage.

Replies come from a canned demo assistant, or from Ollama with
--reply-mode ollama. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := env.Config.Server
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if database != "" {
				cfg.Database = database
			}
			if replyMode != "" {
				cfg.ReplyMode = replyMode
			}

			log, err := logging.New(logging.Options{Mode: env.Config.Log.Mode, Level: env.Config.Log.Level})
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.JWTSecret == config.DefaultJWTSecret {
				log.Warn("using the development JWT secret; set PORTAL_JWT_SECRET outside development")
			}

			store, err := storage.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			replier := server.NewReplier(cfg)
			if oc, ok := replier.(*ollama.Client); ok {
				oc.WithLogger(log)
				checkOllama(cmd.Context(), oc, log)
			}

			srv, err := server.New(cfg, store, replier, log)
			if err != nil {
				return err
			}
			return serveUntilSignal(cmd.Context(), srv, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&host, "host", "", "listen host (default from config)")
	f.IntVar(&port, "port", 0, "listen port (default from config)")
	f.StringVar(&database, "db", "", "SQLite database path, or :memory:")
	f.StringVar(&replyMode, "reply-mode", "", "demo or ollama")
	return cmd
}

// checkOllama warns when the Ollama engine cannot serve replies. Replies
// fail until it can, but the backend still serves auth and history.
func checkOllama(ctx context.Context, oc *ollama.Client, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := oc.CheckModel(ctx); err != nil {
		log.Warn(ollamaWarning(oc, err), "model", oc.Model(), "error", err)
		return
	}
	log.Info("ollama ready", "model", oc.Model())
}

func ollamaWarning(oc *ollama.Client, err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "ollama is not running; start it with `ollama serve`"
	case ollama.IsTimeout(err):
		return "ollama did not answer in time"
	case ollama.IsModelNotFound(err):
		return "ollama model missing; run `ollama pull " + oc.Model() + "`"
	default:
		return "ollama check failed"
	}
}

// serveUntilSignal runs srv until ctx ends or SIGINT/SIGTERM arrives, then
// shuts it down gracefully.
func serveUntilSignal(ctx context.Context, srv *server.Server, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
		return err
	}
	select {
	case err := <-errCh:
		return err
	case <-shutdownCtx.Done():
		return nil
	}
}
