package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterConfig = `# Players whose stocked containers are watched.
target_players:
  - alice

# Discord-compatible webhook. Can also be set with STASHWATCH_WEBHOOK_URL.
webhook_url: https://discord.com/api/webhooks/ID/TOKEN

lookback: 672h

history:
  dsn: sqlite://plugins/CoreProtect/database.db
  table_prefix: co_

gateway:
  listen: ":8765"
  token: ""

dispatch:
  workers: 2
  queue_size: 256
  timeout: 10s
  rate_per_second: 5

logging:
  level: info
  format: json

telemetry:
  trace_exporter: none
`

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runInit(configPath); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", configPath)
			return nil
		},
	}
}

func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
