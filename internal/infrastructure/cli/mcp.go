package cli

import (
	"fmt"
	"os"
	"strings"

	inframcp "github.com/felixgeelhaar/vitals/internal/infrastructure/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Vitals MCP server",
	Long: `Start the Vitals MCP server exposing the analyze_project_health tool.

Transport and address default to mcp.transport and mcp.addr from the config.`,
	RunE: runMCPCmd,
}

func runMCPCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	transport := strings.ToLower(firstNonEmpty(mcpTransport, cfg.MCP.Transport))
	addr := firstNonEmpty(mcpAddr, cfg.MCP.Addr)

	switch transport {
	case "stdio", "http", "ws", "websocket":
	default:
		return newUsageError(fmt.Sprintf("unsupported transport: %s", transport), "Use --transport stdio, http or ws", nil)
	}

	// Stdout carries the stdio protocol, so logs always go to stderr.
	services, err := loadServices(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	server, err := inframcp.NewServer(services)
	if err != nil {
		return MapError(fmt.Errorf("failed to initialize server: %w", err))
	}
	if os.Getenv("VITALS_SKIP_MCP_START") == "true" {
		return nil
	}

	services.Logger.Info("starting mcp server", "transport", transport, "addr", addr)
	switch transport {
	case "http":
		err = server.ServeHTTP(cmd.Context(), addr)
	case "ws", "websocket":
		err = server.ServeWebSocket(cmd.Context(), addr)
	default:
		err = server.ServeStdio(cmd.Context())
	}
	if err != nil {
		return NewCLIError("mcp server stopped", "", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "", "Transport to use (stdio, http, ws)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", "", "Address for http/ws transports")
	RootCmd.AddCommand(mcpCmd)
}
