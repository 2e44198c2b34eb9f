// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/audpipe"
	"github.com/ik5/audpipe/inspect"
	"github.com/ik5/audpipe/internal/config"
	"github.com/ik5/audpipe/internal/logging"
	"github.com/ik5/audpipe/store"
)

// commandContext carries state shared by the sub-commands once the root
// command has loaded the configuration.
type commandContext struct {
	configFlag  string
	rootFlag    string
	logLevel    string
	logFormat   string
	workersFlag int
	inspectFlag bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "audpipe",
		Short:         "Adjust, resample and transcribe sound files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cc.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cc.configFlag, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	flags.StringVar(&cc.rootFlag, "root", "", "Directory holding the data directory")
	flags.StringVar(&cc.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&cc.logFormat, "log-format", "", "Log format: auto, text or json")
	flags.IntVar(&cc.workersFlag, "workers", 0, "Files processed at once")
	flags.BoolVar(&cc.inspectFlag, "inspect", false, "Print a per-stage summary table to stderr")

	rootCmd.AddCommand(newTranscribeCommand(cc))
	rootCmd.AddCommand(newConvertCommand(cc))

	return rootCmd
}

// setup loads the configuration, applies flag overrides and installs the
// logger.
func (cc *commandContext) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(strings.TrimSpace(cc.configFlag))
	if err != nil {
		return err
	}

	if cc.rootFlag != "" {
		cfg.Root = cc.rootFlag
	}
	if cc.logLevel != "" {
		cfg.Log.Level = cc.logLevel
	}
	if cc.logFormat != "" {
		cfg.Log.Format = cc.logFormat
	}
	if cc.workersFlag != 0 {
		cfg.Workers = cc.workersFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cc.cfg = cfg
	cc.logger = logger

	return nil
}

func (cc *commandContext) openStore() (*store.Store, error) {
	st, err := store.New(cc.cfg.Root,
		store.WithDataDir(cc.cfg.DataDir),
		store.WithResampleOptions(cc.cfg.ResampleOptions()...),
		store.WithLogger(cc.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}

	return st, nil
}

// pipelineOptions returns the options every command shares, plus the
// inspect table when --inspect was given.
func (cc *commandContext) pipelineOptions() ([]audpipe.Option, *inspect.Table) {
	opts := []audpipe.Option{
		audpipe.WithLogger(cc.logger),
		audpipe.WithSampleRate(cc.cfg.Input.SampleRate),
		audpipe.WithOutputSampleRate(cc.cfg.Output.SampleRate),
		audpipe.WithMono(cc.cfg.Input.Mono),
	}

	if !cc.inspectFlag {
		return opts, nil
	}

	tbl := inspect.New()
	return append(opts, audpipe.WithObserver(tbl)), tbl
}
