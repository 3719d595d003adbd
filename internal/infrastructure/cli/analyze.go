package cli

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/vitals/pkg/application"
	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
	"github.com/spf13/cobra"
)

// Flag variables for analyze command
var (
	analyzeSource    string
	analyzeScopeKind string
	analyzeScope     string
	analyzeDepth     string
	analyzeArchived  bool
	analyzeJSON      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the health of a project scope",
	Long: `Analyze the health of a project scope.

Fetches records and the team roster from the configured source and reports
an overall score, classified risks, insights, recommendations and trends.

Flags:
  --source        Override source.type (file, github, jira)
  --scope-kind    workspace, space, folder or list (default list)
  --scope         Scope identifier in the source
  --depth         basic (7d), detailed (30d) or comprehensive (90d)
  --archived      Include archived records
  --json          Output in JSON format

Examples:
  vitals analyze --scope web
  vitals analyze --source github --scope felixgeelhaar/vitals --depth comprehensive
  vitals analyze --source jira --scope-kind space --scope PLAT --json`,
	RunE: runAnalyzeCmd,
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeSource != "" {
		cfg.Source.Type = analyzeSource
		if err := cfg.Validate(); err != nil {
			return newUsageError("invalid --source", "Use --source file, github or jira", err)
		}
	}

	scope, err := tracker.ParseScope(analyzeScopeKind, analyzeScope)
	if err != nil {
		return MapError(err)
	}

	services, err := loadServices(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result, err := services.Health.AnalyzeProjectHealth(cmd.Context(), application.AnalysisRequest{
		Scope:           scope,
		IncludeArchived: analyzeArchived,
		Depth:           analyzeDepth,
	})
	if err != nil {
		return MapError(err)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprint(out, renderReport(scope, result))
	return err
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Record source: file, github or jira (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeScopeKind, "scope-kind", string(tracker.ScopeList), "Scope kind: workspace, space, folder or list")
	analyzeCmd.Flags().StringVarP(&analyzeScope, "scope", "s", "", "Scope identifier")
	analyzeCmd.Flags().StringVarP(&analyzeDepth, "depth", "d", "detailed", "Analysis depth: basic, detailed or comprehensive")
	analyzeCmd.Flags().BoolVar(&analyzeArchived, "archived", false, "Include archived records")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(analyzeCmd)
}
