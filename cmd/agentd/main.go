// agentd - ERC-8004 agent server
package main

import (
	"fmt"
	"os"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.SetBuildInfo(Version, Commit, BuildDate)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
