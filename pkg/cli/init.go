package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

const starterRegistration = `{
  "name": "My Agent",
  "description": "Describe what your agent does",
  "image": "https://YOUR-URL/public/agent.png",
  "url": "https://YOUR-URL",
  "capabilities": ["mcp", "a2a"],
  "services": [
    {"name": "MCP", "endpoint": "/mcp"},
    {"name": "A2A", "endpoint": "/a2a/ask"}
  ]
}
`

const starterConfig = `# agentd configuration
port: 3000
registrationPath: registration.json
publicDir: public

log:
  level: info
  format: text

# rateLimit:
#   enabled: true
#   rate: 10
#   burst: 30

# x402:
#   enabled: true
#   network: avalanche
#   recipient: "0xYourWallet"
#   price: 10000
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create starter registration.json and agent.yaml files",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	files := map[string]string{
		"registration.json": starterRegistration,
		"agent.yaml":        starterConfig,
	}
	for name, content := range files {
		if !initForce {
			if _, err := os.Stat(name); err == nil {
				fmt.Printf("  %s already exists, skipping (use --force to overwrite)\n", name)
				continue
			}
		}
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("  created %s\n", name)
	}
	fmt.Println("\nEdit registration.json, then run 'agentd serve'.")
	return nil
}
