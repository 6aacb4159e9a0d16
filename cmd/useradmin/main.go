// Command useradmin serves the user administration pages and runs
// maintenance tasks against the configured user store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/useradmin/useradmin/internal/config"
	"github.com/useradmin/useradmin/internal/logging"
)

// app holds what every subcommand needs after flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "useradmin",
		Short:         "User administration web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return reportErr(cmd, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return reportErr(cmd, err)
			}

			a.cfg = cfg
			a.logger, a.logCloser = logging.New(logging.Options{
				Level:  cfg.LogLevel,
				Format: cfg.LogFormat,
				File:   cfg.LogFile,
				Output: cmd.OutOrStdout(),
			})
			slog.SetDefault(a.logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newCreateUserCmd(a),
	)

	return root
}

// reportErr prints err to stderr since the root command silences cobra's
// own error output.
func reportErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
	return err
}
