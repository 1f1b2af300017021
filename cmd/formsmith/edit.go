package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/ajramos/formsmith/internal/api"
	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/services"
	"github.com/ajramos/formsmith/internal/session"
	"github.com/ajramos/formsmith/internal/tui"
	"github.com/ajramos/formsmith/pkg/auth"
)

type editOptions struct {
	token     string
	saveToken bool
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the terminal theme editor against a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "Access token, overriding client.token and the token file")
	cmd.Flags().BoolVar(&opts.saveToken, "save-token", false, "Store --token in the token file for later sessions")
	return cmd
}

// editorLogFile is where the editor logs when no file is configured, since
// the terminal belongs to the UI
func editorLogFile(cfg *config.Config) string {
	if cfg.Log.File != "" {
		return cfg.Log.File
	}
	return filepath.Join(config.DefaultDataDir(), "editor.log")
}

func clientTokenSource(cfg *config.Config, opts *editOptions) (oauth2.TokenSource, error) {
	file := auth.NewTokenFile(cfg.Client.TokenFile)
	token := cfg.Client.Token
	if opts.token != "" {
		token = opts.token
		if opts.saveToken {
			if err := file.Save(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}); err != nil {
				return nil, err
			}
		}
	}
	src, err := auth.TokenSource(token, file)
	if err != nil {
		return nil, fmt.Errorf("no access token: use --token or set client.token (%w)", err)
	}
	return src, nil
}

func runEdit(ctx context.Context, flags *rootFlags, opts *editOptions) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logCfg := cfg.Log
	logCfg.File = editorLogFile(cfg)
	logger, closer, err := newLogger(logCfg, nil, "editor")
	if err != nil {
		return err
	}
	defer closer.Close()

	src, err := clientTokenSource(cfg, opts)
	if err != nil {
		return err
	}
	client := api.NewClient(ctx, cfg.Client.BaseURL, src)

	sess, err := session.Open(ctx, client, client,
		session.WithLogger(logger),
		session.WithSavedHold(cfg.Editor.GetSavedHold()),
	)
	if err != nil {
		return fmt.Errorf("could not open editing session at %s: %w", cfg.Client.BaseURL, err)
	}

	app, err := tui.NewApp(ctx, sess, tui.Options{
		Colors:       cfg.Editor.Colors,
		PreviewWidth: cfg.Editor.PreviewWidth,
		Presets:      services.NewPresetService(cfg.Presets.BuiltinDir, cfg.Presets.CustomDir),
		Logger:       logger,
	})
	if err != nil {
		_ = closeSession(sess, cfg.Editor.GetCloseTimeout())
		return err
	}

	runErr := app.Run()
	app.Detach()
	if err := closeSession(sess, cfg.Editor.GetCloseTimeout()); err != nil {
		logger.Error().Err(err).Msg("final save did not complete")
		if runErr == nil {
			return fmt.Errorf("latest changes may not be saved: %w", err)
		}
	}
	return runErr
}

// closeSession flushes the last revision, bounded by timeout
func closeSession(sess *session.Session, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return sess.Close(ctx)
}
