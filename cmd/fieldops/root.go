package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"FieldOps/internal/app"
	"FieldOps/internal/config"
	"FieldOps/internal/logging"
)

// cli carries the lazily built application shared by subcommands.
type cli struct {
	configPath string
	fs         afero.Fs
	app        *app.Application
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(afero.NewOsFs())
}

func newRootCmdWith(fs afero.Fs) *cobra.Command {
	c := &cli{fs: fs}

	rootCmd := &cobra.Command{
		Use:           "fieldops",
		Short:         "Dispatch field agents, log visits and read daily digests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file (default $FIELDOPS_CONFIG or fieldops.yaml)")

	rootCmd.AddCommand(
		newServeCmd(c),
		newMissionCmd(c),
		newIntelCmd(c),
		newLogCmd(c),
		newKPIsCmd(c),
		newDigestCmd(c),
		newActionsCmd(c),
		newPrefsCmd(c),
		newSeedCmd(c),
	)

	return rootCmd
}

func (c *cli) open(ctx context.Context, stderr io.Writer) error {
	var cfg config.Config
	if c.configPath != "" {
		cfg = config.LoadFrom(c.fs, c.configPath)
	} else {
		cfg = config.Load()
	}

	c.logger = logging.NewWithFormat(stderr, cfg.Logging.Level, cfg.Logging.Format)
	application, err := app.New(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	c.app = application
	return nil
}
