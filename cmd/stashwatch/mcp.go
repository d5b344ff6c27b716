package main

import (
	"github.com/spf13/cobra"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"stashwatch/internal/mcp"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve index inspection tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE:  runMCP,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.buildIndex(ctx); err != nil {
		return err
	}

	correlator, err := a.correlator(nil)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&a.index, correlator, a.watch, a.cfg.Lookback, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
