// Package cli implements the agentd command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

// Build-time variables, set from main via SetBuildInfo.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// SetBuildInfo records build metadata injected via ldflags.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		Commit = commit
	}
	if date != "" {
		BuildDate = date
	}
}

var rootCmd = &cobra.Command{
	Use:   "agentd",
	Short: "ERC-8004 agent server",
	Long: `agentd serves an ERC-8004 agent: registration metadata, an A2A
question endpoint, an MCP tool server, and OASF discovery.

Running agentd with no arguments starts the server with defaults.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
