package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/cli"
	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/version"
	"github.com/example/warden/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "warden",
		Short:   "Warden - supervision engine for batch workflows",
		Version: version.String(),
		Long: `Warden watches active batch workflows for held tasks. A workflow whose
tasks stay held across consecutive polls is terminated and handed off to a
remediation endpoint for analysis.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			wire.SetConfig(cfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.warden/warden.yaml)")

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.WorkflowCmd())
	rootCmd.AddCommand(cli.AnomalyCmd())
	rootCmd.AddCommand(cli.EventsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
