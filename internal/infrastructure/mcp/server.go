package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/vitals/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/vitals/pkg/application"
	"github.com/felixgeelhaar/vitals/pkg/domain/health"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

// Server exposes the health analysis as MCP tools.
type Server struct {
	mcpServer *mcp.Server
	health    *application.HealthService
	logger    *slog.Logger
}

var (
	Version     = "0.1.0"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(services *wiring.AppServices) (*Server, error) {
	if services == nil || services.Health == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info := mcp.ServerInfo{
		Name:    "vitals",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Vitals MCP Server"),
			mcp.WithDescription("Vitals scores project health from issue tracker records: risks, insights, recommendations and trends."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/vitals"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Call analyze_project_health with a scope to get a health score, risks and recommendations for a project."),
		),
		health: services.Health,
		logger: logger.With("component", "mcp"),
	}

	s.registerTools()
	return s, nil
}

type AnalyzeArgs struct {
	ScopeKind       string `json:"scope_kind" jsonschema:"description=Organizational level to analyze: workspace, space, folder or list (default list)"`
	ScopeID         string `json:"scope_id" jsonschema:"description=Identifier of the scope in the configured data source"`
	IncludeArchived bool   `json:"include_archived" jsonschema:"description=Include archived records in the analysis"`
	AnalysisDepth   string `json:"analysis_depth" jsonschema:"description=Lookback window: basic (7 days) or detailed (30 days) or comprehensive (90 days)"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("analyze_project_health").
		Description("Analyze project health for a scope: composite score, classified risks, insights, time-bucketed recommendations and trends").
		Handler(s.handleAnalyzeProjectHealth)
}

func (s *Server) handleAnalyzeProjectHealth(ctx context.Context, args AnalyzeArgs) (any, error) {
	scope, err := tracker.ParseScope(args.ScopeKind, args.ScopeID)
	if err != nil {
		return nil, mcpErr(err.Error())
	}

	result, err := s.health.AnalyzeProjectHealth(ctx, application.AnalysisRequest{
		Scope:           scope,
		IncludeArchived: args.IncludeArchived,
		Depth:           args.AnalysisDepth,
	})
	if err != nil {
		s.logger.Error("analyze_project_health failed", "scope", scope.String(), "error", err)
		return nil, friendlyAnalysisError(err)
	}
	return result, nil
}

func friendlyAnalysisError(err error) error {
	switch {
	case errors.Is(err, tracker.ErrInvalidParam), errors.Is(err, health.ErrUnknownDepth):
		return mcpErr(err.Error())
	case errors.Is(err, tracker.ErrScopeNotFound):
		return mcpErr(application.AnalysisFailedPrefix + ": scope not found. Check scope_kind and scope_id.")
	case errors.Is(err, tracker.ErrUnauthorized):
		return mcpErr(application.AnalysisFailedPrefix + ": the data source rejected the credentials.")
	case errors.Is(err, health.ErrInvalidTimeframe):
		return mcpErr("Invalid analysis timeframe.")
	default:
		return mcpErr(application.AnalysisFailedPrefix + ". Check the data source configuration.")
	}
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
