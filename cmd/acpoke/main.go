package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acpoke/acpoke-bridge/internal/conf"
	"github.com/acpoke/acpoke-bridge/internal/logging"
)

var version = "1.0.0"

var (
	// Global flags
	configPath string
	debug      bool

	cfg    *conf.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "acpoke",
	Short: "QQ poke action for chat bots behind a OneBot adapter",
	Long: `acpoke resolves a loosely named person to a QQ identity, suppresses repeated
pokes of the same person, and delivers the poke through a OneBot v11 HTTP adapter.

It runs as an HTTP API (serve), as an MCP tool server on stdio (mcp), or once
from the command line (poke).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init-config must work without a valid config
		if cmd.Name() == initConfigCmd.Name() {
			return nil
		}

		// Load .env file; a missing one is fine
		_ = godotenv.Load()

		var err error
		cfg, err = conf.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Poke.Debug = true
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Poke.Debug)
		if err != nil {
			return err
		}
		if cfg.Source != "" {
			logger.Debug("config loaded", zap.String("path", cfg.Source))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $ACPOKE_CONFIG or configs/acpoke.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and failure messages in chat")

	rootCmd.AddCommand(serveCmd, mcpCmd, pokeCmd, initConfigCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
