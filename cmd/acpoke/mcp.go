package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acpoke/acpoke-bridge/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server on stdio",
	Long: `Exposes the poke, poke_action_info and recent_pokes tools over MCP stdio.
Logs go to stderr.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcpserver.NewServer(a.poke, a.repos.Action, version, logger.Named("mcp"))
	return server.Run(ctx)
}
