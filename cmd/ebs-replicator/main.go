package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raoulx24/ebs-snapshot-replicator/internal/config"
	"github.com/raoulx24/ebs-snapshot-replicator/internal/logging"
)

// app carries the flags shared by every command and the state they load.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg config.Config
	log *log.Logger
}

func main() {
	if err := newRootCommand(&app{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ebs-replicator",
		Short: "Share, copy and expire EBS snapshots across accounts and regions",
		Long: `ebs-replicator shares tagged EBS snapshots with a target account, copies
them into a target region under the target account's KMS key, and deletes the
copies once they outlive the retention window.

Without a sub-command inside AWS Lambda, the handler named by _HANDLER runs.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name, ok := lambdaHandlerFromEnv(); ok {
				return a.runLambda(cmd.Context(), name)
			}
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file (default: read settings from the environment)")
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file loaded before reading settings (default: .env if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format override (text, json, logfmt)")

	root.AddCommand(
		newLambdaCommand(a),
		newShareCommand(a),
		newCopyCommand(a),
		newCleanupCommand(a),
		newServeCommand(a),
	)
	return root
}

// load reads settings, validates them for roles and builds the logger.
// Nothing touches AWS before this succeeds.
func (a *app) load(roles ...config.Role) error {
	if err := a.loadEnvFile(); err != nil {
		return err
	}

	cfg, err := a.readConfig()
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	logger, err := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	if err := cfg.Validate(roles...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.log = logger
	return nil
}

func (a *app) readConfig() (config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	return config.FromEnv(os.LookupEnv)
}

func (a *app) loadEnvFile() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	}

	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking .env: %w", err)
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
