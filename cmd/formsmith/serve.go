package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ajramos/formsmith/internal/api"
	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/db"
	"github.com/ajramos/formsmith/internal/services"
)

type serveOptions struct {
	addr  string
	watch bool
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the theme and submission API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, opts, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address, overriding server.addr")
	cmd.Flags().BoolVar(&opts.watch, "watch", true, "Reload access tokens when the configuration file changes")
	return cmd
}

func runServe(ctx context.Context, flags *rootFlags, opts *serveOptions, logOut io.Writer) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	logger, closer, err := newLogger(cfg.Log, logOut, "server")
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	owners := services.NewOwnerService(db.NewOwnerStore(store))
	themes := services.NewThemeService(owners, db.NewThemeStore(store), logger)
	subs := services.NewSubmissionService(db.NewSubmissionStore(store), themes, logger)

	if len(cfg.Server.Tokens) == 0 {
		logger.Warn().Msg("no access tokens configured, owner endpoints will refuse every request")
	}
	server := api.NewServer(api.Services{Owners: owners, Themes: themes, Submissions: subs}, cfg.Server.TokenMap(), logger)

	if opts.watch {
		watchTokens(ctx, flags, server, logger)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	return serveHTTP(ctx, ln, server, cfg.Server.GetShutdownTimeout(), logger)
}

// watchTokens keeps the server's tokens in step with the configuration file
func watchTokens(ctx context.Context, flags *rootFlags, server *api.Server, logger zerolog.Logger) {
	manager := config.NewManager(logger)
	if err := manager.LoadFromFile(getConfigPath(flags.configPath)); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
		return
	}
	manager.AddWatcher(func(cfg *config.Config) {
		server.SetTokens(cfg.Server.TokenMap())
		logger.Info().Int("tokens", len(cfg.Server.Tokens)).Msg("access tokens reloaded")
	})
	if err := manager.Watch(ctx); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
		return
	}
	context.AfterFunc(ctx, manager.StopWatching)
}

// serveHTTP serves handler on ln until ctx is done, then shuts down gracefully
func serveHTTP(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration, logger zerolog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
