package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jsphweid/noteblock/config"
	"github.com/jsphweid/noteblock/constants"
	"github.com/jsphweid/noteblock/logging"
)

var (
	configPath string
	cfg        = config.Defaults()
	logger     = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "noteblock",
	Short: "Turns song files into note block schematics",
	Long: `Turns a plain text song into a self-timed note block sequencer and
writes it out as an MCEdit .schematic file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debug().Str("config", configPath).Int("rows", cfg.Rows).Str("out_dir", cfg.OutDir).Msg("loaded config")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.GetConfigPath(), "path to a noteblock.yaml or noteblock.toml")
}

func Execute() {
	logger = logging.ConfigureRuntime()
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
