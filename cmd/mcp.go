package cmd

import (
	"github.com/spf13/cobra"

	"github.com/joescharf/feedback/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets MCP clients submit and look up provider feedback. Configure with:

  {
    "mcpServers": {
      "feedback": { "command": "feedback", "args": ["mcp"] }
    }
  }

Available tools: feedback_submit, feedback_list, feedback_get`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}
		return mcp.NewServer(c, buildVersion).ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
