// Package cli implements the valet command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/soyeahso/valet/internal/config"
	"github.com/soyeahso/valet/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded by the persistent pre-run
	cfg   config.Config
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "valet",
		Short: "valet — personal AI assistant",
		Long:  "Valet drives conversations with an OpenAI-compatible LLM endpoint,\nwith tool calling, streaming, and persistent chat sessions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}

			cfg, err = config.Load(paths.Config)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := logLevel
			if level == "" {
				level = cfg.Logging.Level
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.valet/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent)")

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
