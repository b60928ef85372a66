package main

import (
	"fmt"
	"os"

	"github.com/ikenthis/bmsagent/internal/cli"
	"github.com/ikenthis/bmsagent/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bmsagent",
	Short: "bmsagent turns facility-management requests into BIM viewer actions",
	Long: `bmsagent interprets free-text requests ("¿Cuántas puertas hay?", "aísla las paredes")
into a closed catalog of viewer actions and runs them against a building model.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file loaded before the config")
	rootCmd.PersistentFlags().String("scene", "", "Scene fixture (overrides scene.fixture)")
	rootCmd.PersistentFlags().String("store", "", "Context store: memory, file or redis (overrides store.backend)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// loadConfig reads the config file named by --config, or the defaults,
// and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if scene, _ := cmd.Flags().GetString("scene"); scene != "" {
		cfg.Scene.Fixture = scene
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store.Backend = store
	}
	return cfg, cfg.Validate()
}

// loadStack builds the agent stack for a command. Quiet commands only log
// when --debug is set, so logs never interleave with console output.
func loadStack(cmd *cobra.Command, quiet bool) (*cli.Stack, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.Logging, quiet, debug)
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, logger)
}
