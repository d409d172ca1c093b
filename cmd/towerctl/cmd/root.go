package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"go.pilab.hu/tower"
	"go.pilab.hu/tower/config"
	"go.pilab.hu/tower/log"
	"go.pilab.hu/tower/store"
)

var (
	cfgFile   string
	tenantID  string
	verbose   bool
	appLogger log.Logger
	sdk       *tower.Client
)

var rootCmd = &cobra.Command{
	Use:   "towerctl",
	Short: "towerctl is a CLI tool to interact with the Auth Tower API",
	Long:  `A command-line interface for managing tenants, permissions, roles and access grants in the Auth Tower identity service.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		appLogger = log.NewZerologAdapter(level, true)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if tenantID != "" {
			cfg.TenantID = tenantID
		}

		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		sdk, err = tower.New(*cfg, tower.Options{
			Store:  store.NewFileStore(filepath.Join(home, ".towerctl")),
			Logger: appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize SDK: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tower.yaml plus TOWER_* env vars)")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "tenant id (overrides configured tenant)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
