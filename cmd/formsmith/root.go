package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ajramos/formsmith/internal/config"
	"github.com/ajramos/formsmith/internal/logging"
)

// configEnv overrides the default configuration path
const configEnv = config.EnvPrefix + "_CONFIG"

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "formsmith",
		Short:         "Formsmith designs, stores and serves themed contact form widgets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to the configuration file (default: ~/.config/formsmith/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newInitCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newEditCmd(flags))
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newEmbedCmd(flags))
	cmd.AddCommand(newLintCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable FORMSMITH_CONFIG
// 3. Default path ~/.config/formsmith/config.yaml
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv(configEnv); envPath != "" {
		return envPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads and validates the configuration named by the flags
func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(getConfigPath(flags.configPath))
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = strings.ToLower(flags.logLevel)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger for one command from the log settings
func newLogger(cfg config.LogConfig, w io.Writer, component string) (zerolog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Writer:    w,
		Level:     cfg.Level,
		Format:    cfg.Format,
		File:      cfg.File,
		Component: component,
	})
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, closer, nil
}
