package main

import (
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/config"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// options holds state shared by all subcommands
type options struct {
	configPath string
	logLevel   string
	settings   *config.Settings
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "flutetuner",
		Short:         "Flute pitch detection and tuning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		analyzeCommand(opts),
		noteCommand(),
	)
	return rootCmd
}

// initialize loads settings and configures the global logger
func (o *options) initialize(cmd *cobra.Command) error {
	settings, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = o.logLevel
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}

	logger := logging.NewWriterLogger(cmd.ErrOrStderr())
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	o.settings = settings
	return nil
}
