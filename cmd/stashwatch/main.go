package main

import (
	"os"

	"github.com/spf13/cobra"

	"stashwatch/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "stashwatch",
		Short:        "Alert when someone opens a container stocked by a watched player",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the configuration file (.yaml or .toml)")
	root.AddCommand(serveCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
