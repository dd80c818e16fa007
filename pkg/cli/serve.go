package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/config"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/logging"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/registration"
	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/server"
)

var (
	serveConfigFile   string
	servePort         int
	serveRegistration string
	serveLogLevel     string
	serveLogFormat    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent server (default command)",
	Example: `  # Start with defaults (registration.json, port 3000)
  agentd serve

  # Start with a config file
  agentd serve --config agent.yaml

  # Override the port
  agentd serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to agent.yaml")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP server port (overrides config and PORT)")
	serveCmd.Flags().StringVarP(&serveRegistration, "registration", "r", "", "Path to registration.json")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format (text, json)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigFile)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveRegistration != "" {
		cfg.RegistrationPath = serveRegistration
	}
	if serveLogLevel != "" {
		cfg.Log.Level = serveLogLevel
	}
	if serveLogFormat != "" {
		cfg.Log.Format = serveLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: os.Stderr,
	})

	reg, err := registration.Load(cfg.RegistrationPath)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, reg,
		server.WithLogger(log),
		server.WithVersion(Version),
	)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s v%s\n", reg.Name, Version)
	fmt.Printf("  http://localhost:%d\n\n", cfg.Port)
	fmt.Println("  Endpoints:")
	fmt.Println("  GET  /                        Dashboard")
	fmt.Println("  GET  /api/health              Health check")
	fmt.Println("  GET  /registration.json       ERC-8004 metadata")
	fmt.Println("  GET  /.well-known/agent-card.json  A2A agent card")
	fmt.Println("  POST /mcp                     MCP server")
	fmt.Println("  POST /a2a/ask                 A2A endpoint")
	fmt.Println("  GET  /oasf                    OASF discovery")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return srv.Stop()
	}
}
